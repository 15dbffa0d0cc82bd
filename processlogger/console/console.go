// Package console is a logger that prints to the console where splitstream
// is running. Source names are coloured when the pipe is a terminal.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
)

const (
	//LoggerTag will be used to call this package
	LoggerTag = "console"
)

// Indexed by output.color.
var formatstrings = map[processlogger.Pipe][2]string{
	processlogger.STDOUT: {"%s: %s\n", "\033[36m%s\033[0m: %s\n"},
	processlogger.STDERR: {"%s: %s\n", "\033[31m%s\033[0m: %s\n"},
}

type output struct {
	w     io.Writer
	color int
}

func newOutput(f *os.File) output {
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return output{w: colorable.NewColorable(f), color: 1}
	}
	return output{w: f}
}

// Console is a logger that will output to the local stdout and stderr
type Console struct {
	mu     sync.Mutex
	stdout output
	stderr output
}

func init() {
	processlogger.RegisterLogger(LoggerTag, func() processlogger.Logger {
		return New()
	})
}

// New returns a Console writing to the process stdout and stderr.
func New() *Console {
	return &Console{
		stdout: newOutput(os.Stdout),
		stderr: newOutput(os.Stderr),
	}
}

// NewWithWriters is used when the output should go somewhere other than the
// process pipes. Colour is never used.
func NewWithWriters(stdout, stderr io.Writer) *Console {
	return &Console{
		stdout: output{w: stdout},
		stderr: output{w: stderr},
	}
}

// RegisterConfig does nothing here.
func (c *Console) RegisterConfig(_ configfile.LoggingConfig, _ configfile.DefaultLoggerDetails) error {
	return nil
}

// Start will start the logging engine. There is nothing to do in this package
func (c *Console) Start() error {
	return nil
}

// Shutdown does not really need to do anything in this package.
// It returns a chan error preloaded with nil.
func (c *Console) Shutdown() chan error {
	ch := make(chan error, 1)
	ch <- nil
	close(ch)
	return ch
}

// Submit writes one line to the pipe it came from.
func (c *Console) Submit(msg processlogger.LogMessage) {
	out := c.stdout
	if msg.Pipe == processlogger.STDERR {
		out = c.stderr
	}
	format := formatstrings[processlogger.STDOUT][out.color]
	if f, ok := formatstrings[msg.Pipe]; ok {
		format = f[out.color]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(out.w, format, msg.Source, msg.Message)
}
