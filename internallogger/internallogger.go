// Package internallogger is used to log messages out for splitstream itself.
// Messages travel through the same log manager as the split lines so they
// land in the same engines. There is a normal logger and a debug logger
// which only logs if debug logging is turned on.
package internallogger

import (
	"fmt"
	"strings"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
)

//IntErrLogger is a logger that will log at Error level
type IntErrLogger interface {
	Errorf(format string, args ...interface{})
	Errorln(s interface{})
}

// IntStdLogger is a logger that will minic fmt.Printf or fmt.Println
type IntStdLogger interface {
	Printf(format string, args ...interface{})
	Println(s interface{})
}

// IntDebugLogger is a logger that will log at standard level but only
// if the debug toggle is turned on.
type IntDebugLogger interface {
	Debugf(format string, args ...interface{})
	Debugln(s interface{})
	DebugOn(on bool)
}

// IntLogger is a fully implemented internal logger. It must have Err, Std and Debug logging.
type IntLogger interface {
	IntDebugLogger
	IntStdLogger
	IntErrLogger
}

// InternalLogger is the logger that splitstream uses for its own messages.
type InternalLogger struct {
	debug     bool
	config    configfile.LoggingConfig
	submitter processlogger.Submitter
}

// New requires a copy of the config for logging and somewhere to submit messages.
func New(config configfile.LoggingConfig, submitter processlogger.Submitter) *InternalLogger {
	return &InternalLogger{
		config:    config,
		submitter: submitter,
	}
}

// Printf mimics the functionality of fmt.Printf and sends the result to STDOUT
func (il *InternalLogger) Printf(format string, args ...interface{}) {
	il.submit(fmt.Sprintf(format, args...), processlogger.STDOUT)
}

// Println mimics the functionality of fmt.Println and sends the result to STDOUT
func (il *InternalLogger) Println(s interface{}) {
	il.submit(fmt.Sprint(s), processlogger.STDOUT)
}

// Errorf mimics the functionality of fmt.Printf and sends the result to STDERR
func (il *InternalLogger) Errorf(format string, args ...interface{}) {
	il.submit(fmt.Sprintf(format, args...), processlogger.STDERR)
}

// Errorln mimics the functionality of fmt.Println and sends the result to STDERR
func (il *InternalLogger) Errorln(s interface{}) {
	il.submit(fmt.Sprint(s), processlogger.STDERR)
}

// Debugf is Printf to STDERR when the debug toggle is on.
func (il *InternalLogger) Debugf(format string, args ...interface{}) {
	if il.debug {
		il.submit(fmt.Sprintf(format, args...), processlogger.STDERR)
	}
}

// Debugln is Println to STDERR when the debug toggle is on.
func (il *InternalLogger) Debugln(s interface{}) {
	if il.debug {
		il.submit(fmt.Sprint(s), processlogger.STDERR)
	}
}

// DebugOn is used to turn debug logging on and off.
func (il *InternalLogger) DebugOn(on bool) {
	il.debug = on
}

// submit sends each line of msg as its own message. Our own messages never
// back off, a full queue just means the engines are busy.
func (il *InternalLogger) submit(msg string, pipe processlogger.Pipe) {
	for _, line := range strings.Split(strings.TrimRight(msg, "\n"), "\n") {
		_, err := il.submitter.Submit(processlogger.LogMessage{
			Source:  il.config.SourceName,
			Pipe:    pipe,
			Config:  il.config,
			Message: line,
		})
		if err != nil {
			fmt.Printf("%s: %s\n", il.config.SourceName, line)
		}
	}
}
