package sourcemanager

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/morfien101/splitstream/configfile"
	"github.com/morfien101/splitstream/processlogger"
	"github.com/morfien101/splitstream/signalreplicator"
	"github.com/morfien101/splitstream/splitter"
	"golang.org/x/sync/errgroup"
)

// runCommand starts the command and splits stdout and stderr until both
// pipes close. Signals caught by splitstream are forwarded to the command.
func (sm *SourceManager) runCommand(ctx context.Context, src *configfile.Source) (lines int, exitCode int, err error) {
	cmd := exec.Command(src.CMD, src.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to connect to stdout pipe. Error: %s", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to connect to stderr pipe. Error: %s", err)
	}

	errPipe := processlogger.STDERR
	if src.CombineOutput {
		errPipe = processlogger.STDOUT
	}
	outSplitter, outSink, err := sm.newSplitter(src, processlogger.STDOUT)
	if err != nil {
		return 0, 0, err
	}
	errSplitter, errSink, err := sm.newSplitter(src, errPipe)
	if err != nil {
		return 0, 0, err
	}

	if err := cmd.Start(); err != nil {
		return 0, 0, fmt.Errorf("failed to start %s. Error: %s", src.CMD, err)
	}
	sm.smlogger.Debugf("Started %s with pid %d", src.Name, cmd.Process.Pid)

	sigChan := make(chan os.Signal, 1)
	signalreplicator.Register(sigChan)
	defer signalreplicator.Remove(sigChan)
	done := make(chan bool)
	defer close(done)
	go sm.forwardSignals(ctx, src, cmd, sigChan, done)

	var g errgroup.Group
	readSize := sm.readSize()
	g.Go(func() error {
		return copyLines(outSplitter, stdout, readSize)
	})
	g.Go(func() error {
		return copyLines(errSplitter, stderr, readSize)
	})
	pumpErr := g.Wait()

	// Pipes are fully read so it is safe to wait.
	waitErr := cmd.Wait()
	lines = outSink.Lines() + errSink.Lines()
	exitCode = cmd.ProcessState.ExitCode()

	switch {
	case pumpErr != nil:
		return lines, exitCode, pumpErr
	case waitErr != nil:
		return lines, exitCode, waitErr
	}
	return lines, exitCode, nil
}

// copyLines splits everything read from pipe. If the splitter fails the rest
// of the pipe is discarded so the command never blocks on a full pipe.
func copyLines(s *splitter.Splitter, pipe io.Reader, readSize int) error {
	w := splitter.NewWriter(s)
	_, err := io.CopyBuffer(w, pipe, make([]byte, readSize))
	closeErr := w.Close()
	if err != nil {
		io.Copy(ioutil.Discard, pipe)
		return err
	}
	return closeErr
}

// forwardSignals passes signals on to the command. Once a stop has been
// requested the command gets termination_timeout_seconds before it is killed.
func (sm *SourceManager) forwardSignals(
	ctx context.Context,
	src *configfile.Source,
	cmd *exec.Cmd,
	sigChan chan os.Signal,
	done chan bool,
) {
	var killTimer <-chan time.Time
	stopping := false
	armKill := func() {
		stopping = true
		if killTimer == nil && src.TermTimeout > 0 {
			killTimer = time.After(time.Duration(src.TermTimeout) * time.Second)
		}
	}
	ctxDone := ctx.Done()

	for {
		select {
		case <-done:
			return
		case sig := <-sigChan:
			sm.smlogger.Debugf("Forwarding %s to %s", sig, src.Name)
			if err := cmd.Process.Signal(sig); err != nil {
				sm.smlogger.Debugf("Failed to signal %s. Error: %s", src.Name, err)
			}
			if sig == syscall.SIGTERM || sig == os.Interrupt {
				armKill()
			}
		case <-ctxDone:
			ctxDone = nil
			if stopping {
				continue
			}
			sm.smlogger.Debugf("Sending %s to %s", syscall.SIGTERM, src.Name)
			cmd.Process.Signal(syscall.SIGTERM)
			armKill()
		case <-killTimer:
			sm.smlogger.Errorf("%s did not stop after %d seconds, killing it", src.Name, src.TermTimeout)
			cmd.Process.Kill()
			return
		}
	}
}
