package internallogger

import (
	"fmt"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
	"github.com/morfien101/splitstream/processlogger/console"
)

// NewFakeLogger will return a logger that can be used for testing in other packages.
// It will just print to the console.
func NewFakeLogger() *InternalLogger {
	conf := configfile.LoggingConfig{
		Engine:     []string{console.LoggerTag},
		SourceName: "FakeInternalLogger",
	}

	lm := processlogger.New(2, configfile.DefaultLoggerDetails{Config: conf})
	if err := lm.StartLoggers(configfile.Sources{}, conf); err != nil {
		fmt.Printf("Error starting fake logger. Error: %s\n", err)
	}
	return New(conf, lm)
}
