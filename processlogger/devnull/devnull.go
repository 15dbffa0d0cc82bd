// Package devnull is a black hole logger. Lines routed to it are counted
// and then thrown away.
package devnull

import (
	"sync/atomic"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
)

const (
	// LoggerTag is the tag that should be used in config files to access this logger
	LoggerTag = "devnull"
)

// DevNull is a discard logger. Usefull for sources that only need to be drained.
type DevNull struct {
	discarded uint64
}

func init() {
	processlogger.RegisterLogger(LoggerTag, func() processlogger.Logger {
		return &DevNull{}
	})
}

// Shutdown satisfies the processlogger.Logger interface.
func (d *DevNull) Shutdown() chan error {
	shutdownChan := make(chan error, 1)
	shutdownChan <- nil
	close(shutdownChan)
	return shutdownChan
}

// RegisterConfig does nothing here.
func (d *DevNull) RegisterConfig(_ configfile.LoggingConfig, _ configfile.DefaultLoggerDetails) error {
	return nil
}

// Start satisfies the processlogger.Logger interface.
func (d *DevNull) Start() error {
	return nil
}

// Submit drops the line.
func (d *DevNull) Submit(_ processlogger.LogMessage) {
	atomic.AddUint64(&d.discarded, 1)
}

// Discarded is how many lines have been thrown away.
func (d *DevNull) Discarded() uint64 {
	return atomic.LoadUint64(&d.discarded)
}
