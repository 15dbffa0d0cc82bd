// Package filelogger is use to push lines to a file on disk.
// Given that splitstream is designed to work inside containers
// filelogger also manages the rotation of files.
// Configuration passed in dictates how many files to keep and how large
// they should be.
package filelogger

import (
	"fmt"
	"strings"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
)

const (
	// LoggerTag is used to identify the logger
	LoggerTag = "logfile"
)

// FileLogManager is used to keep track of the current files that are used
// to write lines to. Sources that share a filename share a file.
type FileLogManager struct {
	filetracker map[string]*rotateWriter
}

func init() {
	processlogger.RegisterLogger(LoggerTag, func() processlogger.Logger {
		return New()
	})
}

// New returns a FileLogManager with no files open.
func New() *FileLogManager {
	return &FileLogManager{
		filetracker: make(map[string]*rotateWriter),
	}
}

// RegisterConfig will open a rotating file for each new filename passed in.
func (flm *FileLogManager) RegisterConfig(conf configfile.LoggingConfig, _ configfile.DefaultLoggerDetails) error {
	if conf.Logfile.Filename == "" {
		return fmt.Errorf("logfile engine for %s has no filename", conf.SourceName)
	}
	if _, ok := flm.filetracker[conf.Logfile.Filename]; ok {
		return nil
	}
	wr, err := newRW(conf.Logfile)
	if err != nil {
		return err
	}
	flm.filetracker[conf.Logfile.Filename] = wr
	return nil
}

// Start will create all the internal components that are required to run the logger
func (flm *FileLogManager) Start() error {
	return nil
}

// Shutdown will close all the files and return a chan error to signal completion
// and forward any errors
func (flm *FileLogManager) Shutdown() chan error {
	errChan := make(chan error, 1)

	go func() {
		errors := make([]string, 0)
		for _, tracker := range flm.filetracker {
			if err := tracker.Close(); err != nil {
				errors = append(errors, err.Error())
			}
		}

		if len(errors) > 0 {
			errChan <- fmt.Errorf("%s", strings.Join(errors, " | "))
		} else {
			errChan <- nil
		}
		close(errChan)
	}()

	return errChan
}

// Submit will write a line to the file named in the configuration
// sent with the processlogger.LogMessage
func (flm *FileLogManager) Submit(msg processlogger.LogMessage) {
	wr, ok := flm.filetracker[msg.Config.Logfile.Filename]
	if !ok {
		return
	}
	if _, err := wr.Write([]byte(msg.Message + "\n")); err != nil {
		wr.panic(err)
	}
}
