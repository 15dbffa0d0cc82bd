package filelogger

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/morfien101/splitstream/configfile"
)

// rotatedSuffix keeps renamed files unique and sorted by age.
const rotatedSuffix = "20060102T150405.000000000"

// rotateWriter can write and rotate a log file
type rotateWriter struct {
	lock                sync.Mutex
	fp                  *os.File
	config              configfile.FileLogger
	historicalFilePaths []string
	currentFileSize     uint64
	rotations           int
}

// newRW makes a new rotateWriter with a fresh file open.
func newRW(conf configfile.FileLogger) (*rotateWriter, error) {
	w := &rotateWriter{
		config:              conf,
		historicalFilePaths: make([]string, 0),
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	// rotate gives us the first file
	if err := w.rotate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Loggers should not terminate service.
// The best we can do here is print it to the console
func (w *rotateWriter) panic(err error) {
	fmt.Fprintf(os.Stderr, "logfile %s: %s\n", w.config.Filename, err)
}

// tooLarge will tell us if the number of bytes we have written is more than the
// file size we want to handle. A zero limit never rotates.
// This is infered to avoid millions of os.stat calls
func (w *rotateWriter) tooLarge() bool {
	limit := w.config.SizeLimit.Bytes()
	return limit > 0 && w.currentFileSize >= limit
}

// deleteOldFiles keeps the newest HistoricalFiles rotated files.
func (w *rotateWriter) deleteOldFiles() {
	if len(w.historicalFilePaths) <= w.config.HistoricalFiles {
		return
	}
	for _, filename := range w.historicalFilePaths[w.config.HistoricalFiles:] {
		if err := os.Remove(filename); err != nil {
			w.panic(err)
		}
	}
	w.historicalFilePaths = w.historicalFilePaths[:w.config.HistoricalFiles]
}

// Write satisfies the io.Writer interface. The file is rotated once it
// reaches the size limit.
func (w *rotateWriter) Write(output []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.fp == nil {
		return 0, os.ErrClosed
	}
	n, err := w.fp.Write(output)
	w.currentFileSize = w.currentFileSize + uint64(n)
	if err != nil {
		return n, err
	}
	if w.tooLarge() {
		if err := w.rotate(); err != nil {
			return n, err
		}
		w.deleteOldFiles()
	}
	return n, nil
}

// Close closes out the current file
func (w *rotateWriter) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.fp == nil {
		return nil
	}
	err := w.fp.Close()
	w.fp = nil
	return err
}

// rotate performs the actual act of rotating and reopening file.
// The caller holds the lock.
func (w *rotateWriter) rotate() error {
	// Close existing file if open
	if w.fp != nil {
		err := w.fp.Close()
		w.fp = nil
		if err != nil {
			return err
		}
	}
	// Rename dest file if it already exists
	_, err := os.Stat(w.config.Filename)
	if err == nil {
		w.rotations++
		newFileName := fmt.Sprintf("%s.%s.%d", w.config.Filename, time.Now().Format(rotatedSuffix), w.rotations)
		err = os.Rename(w.config.Filename, newFileName)
		if err != nil {
			return err
		}
		w.updateHistoricalFileNames(newFileName)
	}

	// Create a file.
	w.fp, err = os.Create(w.config.Filename)
	w.currentFileSize = 0
	return err
}

func (w *rotateWriter) updateHistoricalFileNames(newFileName string) {
	w.historicalFilePaths = append([]string{newFileName}, w.historicalFilePaths...)
}
