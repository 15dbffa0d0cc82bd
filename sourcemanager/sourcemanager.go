// Package sourcemanager is responsible for reading the sources defined in the
// configuration and splitting each of their streams into lines.
package sourcemanager

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/internallogger"
	"github.com/morfien101/splitstream/processlogger"
	"github.com/morfien101/splitstream/splitter"
	"golang.org/x/sync/errgroup"
)

const (
	defaultReadSize = 32 * datasize.KB
	// backoff is how long a reader pauses when the log manager asks it to
	// ease off.
	backoff = 10 * time.Millisecond
)

// SourceManager holds the config and state of the sources being split.
type SourceManager struct {
	splitterConf configfile.SplitterConfig
	sources      configfile.Sources
	submitter    processlogger.Submitter
	smlogger     internallogger.IntLogger
	stdin        io.Reader

	mu      sync.Mutex
	endList []*sourceEnd
}

type sourceEnd struct {
	Name       string `json:"name"`
	SourceType string `json:"type"`
	Lines      int    `json:"lines"`
	ExitCode   int    `json:"exit_code"`
	Error      string `json:"runtime_error,omitempty"`
}

// New will create a SourceManager with the supplied config and return it.
func New(
	splitterConf configfile.SplitterConfig,
	sources configfile.Sources,
	submitter processlogger.Submitter,
	smlogger internallogger.IntLogger,
) *SourceManager {
	return &SourceManager{
		splitterConf: splitterConf,
		sources:      sources,
		submitter:    submitter,
		smlogger:     smlogger,
		stdin:        os.Stdin,
		endList:      make([]*sourceEnd, len(sources)),
	}
}

// SetStdin replaces the reader used by the stdin source.
func (sm *SourceManager) SetStdin(r io.Reader) {
	sm.stdin = r
}

// Run splits every source concurrently and waits for all of them to finish.
// Cancelling ctx stops file and stdin sources between reads and signals
// command sources to terminate. The returned string is a JSON report with
// one entry per source. The error is the first source failure.
func (sm *SourceManager) Run(ctx context.Context) (string, error) {
	var g errgroup.Group
	for i, src := range sm.sources {
		index := i
		source := src
		g.Go(func() error {
			sm.smlogger.Debugf("Starting %s source %s", source.Type, source.Name)
			end := sm.runSource(ctx, source)
			sm.record(index, end)
			if end.Error != "" {
				sm.smlogger.Errorf("Source %s failed. Error: %s", source.Name, end.Error)
				return fmt.Errorf("source %s failed. Error: %s", source.Name, end.Error)
			}
			sm.smlogger.Debugf("Source %s finished after %d lines", source.Name, end.Lines)
			return nil
		})
	}
	err := g.Wait()
	return sm.exitStatusFormatter(), err
}

func (sm *SourceManager) record(index int, end *sourceEnd) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.endList[index] = end
}

func (sm *SourceManager) exitStatusFormatter() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	b, err := json.Marshal(sm.endList)
	if err != nil {
		sm.smlogger.Debugf("Error generating end state. Error: %s", err)
	}
	return string(b)
}

func (sm *SourceManager) runSource(ctx context.Context, src *configfile.Source) *sourceEnd {
	end := &sourceEnd{
		Name:       src.Name,
		SourceType: src.Type,
	}

	var err error
	switch src.Type {
	case configfile.SourceStdin:
		end.Lines, err = sm.runReader(ctx, src, sm.stdin)
	case configfile.SourceFile:
		end.Lines, err = sm.runFile(ctx, src)
	case configfile.SourceCommand:
		end.Lines, end.ExitCode, err = sm.runCommand(ctx, src)
	default:
		err = fmt.Errorf("unknown source type %s", src.Type)
	}
	if err != nil {
		end.Error = err.Error()
	}
	return end
}

func (sm *SourceManager) readSize() int {
	size := sm.splitterConf.ReadSize
	if size == 0 {
		size = defaultReadSize
	}
	return int(size.Bytes())
}

// newSplitter builds a splitter for one stream of src.
func (sm *SourceManager) newSplitter(src *configfile.Source, pipe processlogger.Pipe) (*splitter.Splitter, *processlogger.LineSink, error) {
	opts, err := sm.splitterConf.Options()
	if err != nil {
		return nil, nil, err
	}
	sink := processlogger.NewLineSink(sm.submitter, src.LoggerConfig, pipe)
	s, err := splitter.New(sink, opts)
	if err != nil {
		return nil, nil, err
	}
	s.OnError(func(err error) {
		sm.smlogger.Debugf("Splitter for %s reported an error. Error: %s", src.Name, err)
	})
	return s, sink, nil
}

func (sm *SourceManager) runFile(ctx context.Context, src *configfile.Source) (int, error) {
	f, err := os.Open(src.Path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s. Error: %s", src.Path, err)
	}
	defer f.Close()
	return sm.runReader(ctx, src, f)
}

func (sm *SourceManager) runReader(ctx context.Context, src *configfile.Source, r io.Reader) (int, error) {
	s, sink, err := sm.newSplitter(src, processlogger.STDOUT)
	if err != nil {
		return 0, err
	}
	err = pump(ctx, r, s, sm.readSize())
	return sink.Lines(), err
}

// pump reads r in chunks of readSize and feeds them to s until EOF, an
// error or ctx is done. The unfinished last line is flushed unless reading
// failed. When s asks to ease off pump waits before the next read.
func pump(ctx context.Context, r io.Reader, s *splitter.Splitter, readSize int) error {
	buf := make([]byte, readSize)
	for ctx.Err() == nil {
		n, rerr := r.Read(buf)
		if n > 0 {
			if !s.Write(splitter.Bytes(buf[:n])) {
				if s.Err() != nil {
					s.Destroy(nil)
					return s.Err()
				}
				time.Sleep(backoff)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			s.Destroy(rerr)
			return fmt.Errorf("read failed. Error: %s", rerr)
		}
	}

	var endErr error
	s.End(nil, splitter.WithCallback(func(err error) {
		endErr = err
	}))
	return endErr
}
