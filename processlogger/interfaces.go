package processlogger

import "github.com/morfien101/splitstream/configfile"

// Logger is a logger interface that can start stop and send logs.
// This is the shipper interface.
type Logger interface {
	RegisterConfig(configfile.LoggingConfig, configfile.DefaultLoggerDetails) error
	Start() error
	Shutdown() chan error
	Submit(LogMessage)
}

// Submitter accepts log messages and reports whether more may follow straight away.
type Submitter interface {
	Submit(log LogMessage) (bool, error)
}

// LogsManager is something that can start, stop and submit logs.
type LogsManager interface {
	Submitter
	StartLoggers(configfile.Sources, configfile.LoggingConfig) error
	Shutdown() []error
}
