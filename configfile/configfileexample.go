package configfile

import (
	"fmt"

	"github.com/c2h5oh/datasize"
	yaml "gopkg.in/yaml.v2"
)

// ExampleConfigFile will return a string with an example yaml file.
// All features should be in here to present to the user.
func ExampleConfigFile() (string, error) {
	exampleSources := Sources{
		{
			Name: "app",
			Type: SourceCommand,
			CMD:  "/example/bin1",
			Args: []string{"--arg1", "two"},
			LoggerConfig: LoggingConfig{
				Engine: []string{"console", "logfile"},
				Logfile: FileLogger{
					Filename:        "/var/log/app.log",
					SizeLimit:       100 * datasize.MB,
					HistoricalFiles: 5,
				},
			},
			TermTimeout: 10,
		},
		{
			Name: "access_log",
			Type: SourceFile,
			Path: "/example/access.log",
		},
		{
			Type: SourceStdin,
		},
	}

	exampleLoggerConfig := DefaultLoggerDetails{
		Config: LoggingConfig{
			Engine: []string{"syslog"},
			Syslog: Syslog{
				ProgramName: "example_service",
				Address:     "logs.papertrail.com:16900",
			},
		},
	}

	exampleSourceManagerConfig := SourceManager{
		LoggerConfig: LoggingConfig{
			Engine: []string{"console"},
		},
	}

	exampleConfig := &Config{
		SourceManager: exampleSourceManagerConfig,
		Splitter: SplitterConfig{
			SeparatorPattern: `\r?\n`,
			Encoding:         "utf-8",
			ReadSize:         defaultReadSize,
		},
		Sources:             exampleSources,
		DefaultLoggerConfig: exampleLoggerConfig,
	}

	out, err := yaml.Marshal(exampleConfig)
	if err != nil {
		return "", fmt.Errorf("Creating example failed. Error: %s", err)
	}

	return string(out), nil
}
