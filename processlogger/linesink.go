package processlogger

import (
	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/splitter"
)

// LineSink feeds the lines of one source pipe into the log manager.
// It satisfies splitter.Sink.
type LineSink struct {
	submitter Submitter
	config    configfile.LoggingConfig
	pipe      Pipe
	lines     int
}

// NewLineSink returns a sink that tags every line with the source name from
// config and the given pipe.
func NewLineSink(submitter Submitter, config configfile.LoggingConfig, pipe Pipe) *LineSink {
	return &LineSink{
		submitter: submitter,
		config:    config,
		pipe:      pipe,
	}
}

// Push submits the line. The log manager's answer is the backpressure signal.
func (ls *LineSink) Push(line splitter.Chunk) (bool, error) {
	ok, err := ls.submitter.Submit(LogMessage{
		Source:  ls.config.SourceName,
		Pipe:    ls.pipe,
		Config:  ls.config,
		Message: line.String(),
	})
	if err != nil {
		return false, err
	}
	ls.lines++
	return ok, nil
}

// End has nothing to flush. The log manager outlives its sources.
func (ls *LineSink) End() error {
	return nil
}

// Lines is how many lines were accepted.
func (ls *LineSink) Lines() int {
	return ls.lines
}
