package configfile

import "github.com/c2h5oh/datasize"

var (
	defaultLoggingEngine = LoggingConfig{
		Engine: []string{"console"},
	}

	defaultSourceManager = SourceManager{
		LoggerConfig: LoggingConfig{
			Engine: []string{"console"},
		},
	}

	defaultSourceManagerSyslog = Syslog{
		ProgramName: "Splitstream",
	}

	defaultSourceManagerName = "splitstream"

	defaultReadSize = 32 * datasize.KB

	defaultTermTimeout = 30
)
