package console

import (
	"bytes"
	"testing"

	"github.com/morfien101/splitstream/processlogger"
)

func TestSubmit(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	c := NewWithWriters(stdout, stderr)

	c.Submit(processlogger.LogMessage{Source: "app", Pipe: processlogger.STDOUT, Message: "hello"})
	c.Submit(processlogger.LogMessage{Source: "app", Pipe: processlogger.STDERR, Message: "oops"})

	if stdout.String() != "app: hello\n" {
		t.Logf("stdout got %q", stdout.String())
		t.Fail()
	}
	if stderr.String() != "app: oops\n" {
		t.Logf("stderr got %q", stderr.String())
		t.Fail()
	}
}
