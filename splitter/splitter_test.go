package splitter

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func newCollecting(t *testing.T, opts Options) (*Splitter, *Collector) {
	t.Helper()
	c := &Collector{}
	s, err := New(c, opts)
	if err != nil {
		t.Fatalf("Failed to create splitter. Error: %s", err)
	}
	return s, c
}

func sameLines(got, want []string) bool {
	if len(got) == 0 && len(want) == 0 {
		return true
	}
	return reflect.DeepEqual(got, want)
}

func TestSplitScenarios(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		writes []Chunk
		end    Chunk
		want   []string
	}{
		{
			name: "two lines in one chunk",
			end:  Bytes("hello\nworld"),
			want: []string{"hello", "world"},
		},
		{
			name:   "separator at the start of the second write",
			writes: []Chunk{Text("hello"), Text("\nworld")},
			want:   []string{"hello", "world"},
		},
		{
			name:   "four lines on three writes",
			opts:   Options{Encoding: "utf8"},
			writes: []Chunk{Text("hello\nwor"), Text("ld\nbye\nwo"), Text("rld")},
			want:   []string{"hello", "world", "bye", "world"},
		},
		{
			name:   "four lines on three writes and end",
			opts:   Options{Encoding: "utf8"},
			writes: []Chunk{Text("hello\nwor"), Text("ld\nbye\nwo"), Text("rl")},
			end:    Text("d"),
			want:   []string{"hello", "world", "bye", "world"},
		},
		{
			name:   "separator at the end of a chunk",
			writes: []Chunk{Text("hello\n")},
			end:    Text("world"),
			want:   []string{"hello", "world"},
		},
		{
			name:   "writes without a separator accumulate",
			writes: []Chunk{Text("hello"), Text("world")},
			want:   []string{"helloworld"},
		},
		{
			name: "windows line endings",
			end:  Text("hello\r\nworld"),
			want: []string{"hello", "world"},
		},
		{
			name:   "carriage return split from its line feed",
			writes: []Chunk{Text("hello\r"), Text("\nworld")},
			want:   []string{"hello", "world"},
		},
		{
			name: "lone carriage return does not split",
			opts: Options{Encoding: "utf8"},
			end:  Text("hello\rworld"),
			want: []string{"hello\rworld"},
		},
		{
			name: "single character literal",
			opts: Options{Separator: Literal("~")},
			end:  Text("hello~world"),
			want: []string{"hello", "world"},
		},
		{
			name: "multi character literal",
			opts: Options{Separator: Literal("BREAK")},
			end:  Text("helloBREAKworld"),
			want: []string{"hello", "world"},
		},
		{
			name:   "multi character literal across writes",
			opts:   Options{Separator: Literal("BREAK"), Encoding: "utf-8"},
			writes: []Chunk{Text("helloBR"), Text("EA"), Text("Kworld")},
			want:   []string{"hello", "world"},
		},
		{
			name: "single character pattern",
			opts: Options{Separator: MustPattern(`~`)},
			end:  Text("hello~world"),
			want: []string{"hello", "world"},
		},
		{
			name: "multi character pattern",
			opts: Options{Separator: MustPattern(`BREAK`), Encoding: "utf8"},
			end:  Text("helloBREAKworld"),
			want: []string{"hello", "world"},
		},
		{
			name: "empty lines are not pushed",
			end:  Text("a\n\n\nb\n"),
			want: []string{"a", "b"},
		},
		{
			name: "nothing written",
			want: []string{},
		},
		{
			name:   "three byte character one byte at a time",
			opts:   Options{Encoding: "utf8"},
			writes: []Chunk{Bytes{0xe2}, Bytes{0x82}, Bytes{0xac}},
			want:   []string{"€"},
		},
		{
			name:   "latin1 input",
			opts:   Options{Encoding: "ISO-8859-1"},
			writes: []Chunk{Bytes{'c', 'a', 'f', 0xe9, '\n', 'o', 'k'}},
			want:   []string{"café", "ok"},
		},
		{
			name:   "text chunk in a latin1 splitter",
			opts:   Options{Encoding: "ISO-8859-1"},
			writes: []Chunk{Text("café\nthé")},
			want:   []string{"café", "thé"},
		},
	}

	for _, test := range tests {
		s, c := newCollecting(t, test.opts)
		for _, chunk := range test.writes {
			s.Write(chunk)
		}
		s.End(test.end)

		if got := c.Strings(); !sameLines(got, test.want) {
			t.Logf("%s: wrong lines. Want: %s Got: %s", test.name, spew.Sdump(test.want), spew.Sdump(got))
			t.Fail()
		}
		if !c.Ended() {
			t.Logf("%s: sink was not ended", test.name)
			t.Fail()
		}
		if s.Err() != nil {
			t.Logf("%s: unexpected error %s", test.name, s.Err())
			t.Fail()
		}
	}
}

func TestLineTypesFollowMode(t *testing.T) {
	s, c := newCollecting(t, Options{})
	s.End(Text("a\nb"))
	for _, line := range c.Lines() {
		if _, ok := line.(Bytes); !ok {
			t.Logf("Byte mode pushed a %T", line)
			t.Fail()
		}
	}

	s, c = newCollecting(t, Options{Encoding: "utf8"})
	s.End(Bytes("a\nb"))
	for _, line := range c.Lines() {
		if _, ok := line.(Text); !ok {
			t.Logf("Text mode pushed a %T", line)
			t.Fail()
		}
	}
	if !s.TextMode() {
		t.Logf("Splitter with an encoding should be in text mode")
		t.Fail()
	}
}

func chunkEvery(input []byte, size int) []Chunk {
	chunks := []Chunk{}
	for start := 0; start < len(input); start += size {
		end := start + size
		if end > len(input) {
			end = len(input)
		}
		chunks = append(chunks, Bytes(input[start:end]))
	}
	return chunks
}

func TestChunkingDoesNotChangeLines(t *testing.T) {
	input := []byte("première ligne\r\nzweite Zeile\n\n第三行 🙂\r\r\nlast one, no newline")
	for _, opts := range []Options{
		{},
		{Encoding: "utf8"},
		{Separator: Literal("\r\n"), Encoding: "utf8"},
		{Separator: MustPattern(`\s+`)},
	} {
		whole, wholeLines := newCollecting(t, opts)
		whole.End(Bytes(input))

		for size := 1; size <= len(input); size++ {
			s, c := newCollecting(t, opts)
			for _, chunk := range chunkEvery(input, size) {
				s.Write(chunk)
			}
			s.End(nil)

			if !sameLines(c.Strings(), wholeLines.Strings()) {
				t.Logf("Chunks of %d bytes with separator %s changed the lines. Want: %s Got: %s",
					size, opts.Separator, spew.Sdump(wholeLines.Strings()), spew.Sdump(c.Strings()))
				t.Fail()
			}
		}
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		input string
		sep   string
	}{
		{input: "alpha\nbeta\ngamma δ\nend", sep: "\n"},
		{input: "one, two, three", sep: ", "},
		{input: "x||y||z||", sep: "||"},
	}

	for _, test := range tests {
		for size := 1; size <= len(test.input); size++ {
			s, c := newCollecting(t, Options{Separator: Literal(test.sep), Encoding: "utf8"})
			for _, chunk := range chunkEvery([]byte(test.input), size) {
				s.Write(chunk)
			}
			s.End(nil)

			joined := strings.Join(c.Strings(), test.sep)
			if strings.HasSuffix(test.input, test.sep) {
				joined += test.sep
			}
			if joined != test.input {
				t.Logf("Round trip of %q in chunks of %d gave %q", test.input, size, joined)
				t.Fail()
			}
		}
	}
}

func TestSplitCharacterMatchesWholeCharacter(t *testing.T) {
	for _, char := range []string{"é", "€", "𝄞"} {
		s, c := newCollecting(t, Options{Encoding: "utf8"})
		for i := 0; i < len(char); i++ {
			if !s.Write(Bytes{char[i]}) {
				t.Logf("Write of byte %d of %q asked for a pause", i, char)
				t.Fail()
			}
		}
		s.End(Text("\n"))

		got := c.Strings()
		if len(got) != 1 || got[0] != char {
			t.Logf("Want: [%q] Got: %s", char, spew.Sdump(got))
			t.Fail()
		}
	}
}

func TestTrailingPartialCharacterIsReplaced(t *testing.T) {
	s, c := newCollecting(t, Options{Encoding: "utf8"})
	s.Write(Text("ok\n"))
	s.Write(Bytes{'x', 0xe2, 0x82})
	s.End(nil)

	got := c.Strings()
	if len(got) != 2 {
		t.Fatalf("Want 2 lines. Got: %s", spew.Sdump(got))
	}
	last := got[1]
	if !strings.HasPrefix(last, "x") || !strings.Contains(last, "�") || !utf8.ValidString(last) {
		t.Logf("Partial character was not replaced. Got: %q", last)
		t.Fail()
	}
	if s.Err() != nil {
		t.Logf("Flushing a partial character should not fail. Got: %s", s.Err())
		t.Fail()
	}
}

func TestBackpressureFollowsLastPush(t *testing.T) {
	pauseOn := map[string]bool{"b": true, "x": true}
	sink := SinkFunc(func(line Chunk) (bool, error) {
		return !pauseOn[line.String()], nil
	})
	s, err := New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		chunk string
		want  bool
	}{
		{chunk: "a\nb\n", want: false},
		{chunk: "a\nb\nc\n", want: true},
		{chunk: "x\n\n\n", want: false},
		{chunk: "no separator", want: true},
		{chunk: "\n", want: true},
	}
	for _, test := range tests {
		if got := s.Write(Text(test.chunk)); got != test.want {
			t.Logf("Write(%q) Want: %v Got: %v", test.chunk, test.want, got)
			t.Fail()
		}
	}
}

func TestPushFailureLatches(t *testing.T) {
	sinkErr := errors.New("downstream is gone")
	pushed := []string{}
	sink := SinkFunc(func(line Chunk) (bool, error) {
		if line.String() == "boom" {
			return false, sinkErr
		}
		pushed = append(pushed, line.String())
		return true, nil
	})
	s, err := New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	emitted := []error{}
	s.OnError(func(err error) {
		emitted = append(emitted, err)
	})

	var cbErr error
	if s.Write(Text("ok\nboom\nlater\n"), WithCallback(func(err error) { cbErr = err })) {
		t.Logf("A failed write should return false")
		t.Fail()
	}
	if !errors.Is(cbErr, ErrPushFailed) || errors.Cause(cbErr) != sinkErr {
		t.Logf("Callback got the wrong error: %v", cbErr)
		t.Fail()
	}
	if !reflect.DeepEqual(pushed, []string{"ok"}) {
		t.Logf("Lines after the failure were pushed: %s", spew.Sdump(pushed))
		t.Fail()
	}

	cbErr = nil
	if s.Write(Text("more\n"), WithCallback(func(err error) { cbErr = err })) {
		t.Logf("Write after a failure should return false")
		t.Fail()
	}
	if cbErr != ErrPreviouslyFailed {
		t.Logf("Want ErrPreviouslyFailed. Got: %v", cbErr)
		t.Fail()
	}
	if len(pushed) != 1 {
		t.Logf("Write after a failure pushed lines: %s", spew.Sdump(pushed))
		t.Fail()
	}
	if len(emitted) != 2 {
		t.Logf("Want 2 error events. Got: %d", len(emitted))
		t.Fail()
	}
	if !errors.Is(s.Err(), ErrPushFailed) {
		t.Logf("Latched error should be the first failure. Got: %v", s.Err())
		t.Fail()
	}
}

func TestUnconvertibleChunks(t *testing.T) {
	tests := []struct {
		name  string
		chunk Chunk
		opts  []WriteOption
	}{
		{name: "nil chunk", chunk: nil},
		{name: "bad hex", chunk: Text("zz"), opts: []WriteOption{WithEncoding("hex")}},
		{name: "bad base64", chunk: Text("!!!"), opts: []WriteOption{WithEncoding("base64")}},
		{name: "unknown encoding", chunk: Text("hello"), opts: []WriteOption{WithEncoding("klingon")}},
		{name: "unrepresentable character", chunk: Text("日本"), opts: []WriteOption{WithEncoding("ISO-8859-1")}},
	}

	for _, test := range tests {
		s, c := newCollecting(t, Options{})
		var cbErr error
		opts := append(test.opts, WithCallback(func(err error) { cbErr = err }))
		if s.Write(test.chunk, opts...) {
			t.Logf("%s: write should have failed", test.name)
			t.Fail()
		}
		if !errors.Is(cbErr, ErrUnconvertible) {
			t.Logf("%s: want ErrUnconvertible. Got: %v", test.name, cbErr)
			t.Fail()
		}
		if s.Err() == nil {
			t.Logf("%s: error was not latched", test.name)
			t.Fail()
		}
		if len(c.Lines()) != 0 {
			t.Logf("%s: lines were pushed", test.name)
			t.Fail()
		}
	}
}

func TestTextChunkEncodings(t *testing.T) {
	s, c := newCollecting(t, Options{Encoding: "utf8"})
	s.Write(Text("68656c6c6f0a"), WithEncoding("hex"))
	s.Write(Text("d29ybGQK"), WithEncoding("base64"))
	s.End(Text("café"), WithEncoding("ISO-8859-1"))

	want := []string{"hello", "world", "caf�"}
	if got := c.Strings(); !reflect.DeepEqual(got, want) {
		t.Logf("Want: %s Got: %s", spew.Sdump(want), spew.Sdump(got))
		t.Fail()
	}
}

func TestCloseFiresOnce(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Splitter)
	}{
		{name: "end", run: func(s *Splitter) { s.End(nil) }},
		{name: "end twice", run: func(s *Splitter) { s.End(nil); s.End(nil) }},
		{name: "destroy", run: func(s *Splitter) { s.Destroy(nil) }},
		{name: "destroy twice", run: func(s *Splitter) { s.Destroy(nil); s.Destroy(errors.New("again")) }},
		{name: "end then destroy", run: func(s *Splitter) { s.End(Text("x")); s.Destroy(nil) }},
		{name: "destroy then end", run: func(s *Splitter) { s.Destroy(nil); s.End(Text("x")) }},
		{name: "destroy with error", run: func(s *Splitter) { s.Destroy(errors.New("upstream failed")) }},
	}

	for _, test := range tests {
		s, _ := newCollecting(t, Options{})
		closes := 0
		s.OnClose(func() { closes++ })
		s.OnError(func(error) {})
		test.run(s)
		if closes != 1 {
			t.Logf("%s: want 1 close. Got: %d", test.name, closes)
			t.Fail()
		}
		if !s.Closed() {
			t.Logf("%s: splitter does not report closed", test.name)
			t.Fail()
		}
	}
}

func TestDestroyDropsPending(t *testing.T) {
	s, c := newCollecting(t, Options{})
	s.Write(Text("complete\npartial"))
	s.Destroy(nil)

	var endErr error
	s.End(nil, WithCallback(func(err error) { endErr = err }))
	if endErr != ErrWriteAfterEnd {
		t.Logf("End after Destroy should report ErrWriteAfterEnd. Got: %v", endErr)
		t.Fail()
	}
	if got := c.Strings(); !reflect.DeepEqual(got, []string{"complete"}) {
		t.Logf("Destroy flushed pending data: %s", spew.Sdump(got))
		t.Fail()
	}
	if s.Write(Text("more\n")) {
		t.Logf("Write after Destroy should fail")
		t.Fail()
	}
}

func TestEndAfterFailureStillTerminates(t *testing.T) {
	failing := errors.New("nope")
	ended := false
	var sink Sink = &endTracker{
		SinkFunc: func(line Chunk) (bool, error) { return false, failing },
		ended:    &ended,
	}
	s, err := New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	closed := false
	s.OnClose(func() { closed = true })
	s.OnError(func(error) {})

	var endErr error
	s.End(Text("tail"), WithCallback(func(err error) { endErr = err }))

	if !errors.Is(endErr, ErrPushFailed) {
		t.Logf("End callback should get the push failure. Got: %v", endErr)
		t.Fail()
	}
	if !ended || !closed {
		t.Logf("A failed final push must still end the sink and close. ended=%v closed=%v", ended, closed)
		t.Fail()
	}
}

type endTracker struct {
	SinkFunc
	ended *bool
}

func (e *endTracker) End() error {
	*e.ended = true
	return nil
}

func TestLatchedSplitterDoesNotFlushOnEnd(t *testing.T) {
	s, c := newCollecting(t, Options{})
	s.OnError(func(error) {})
	s.Write(Text("pending"))
	s.Write(nil)
	s.End(nil)

	if len(c.Lines()) != 0 {
		t.Logf("A failed splitter flushed its remainder: %s", spew.Sdump(c.Strings()))
		t.Fail()
	}
	if !c.Ended() {
		t.Logf("Sink should still be ended")
		t.Fail()
	}
}

func TestWriteAfterEnd(t *testing.T) {
	s, _ := newCollecting(t, Options{})
	s.End(nil)

	var cbErr error
	if s.Write(Text("late\n"), WithCallback(func(err error) { cbErr = err })) {
		t.Logf("Write after End should return false")
		t.Fail()
	}
	if cbErr != ErrWriteAfterEnd {
		t.Logf("Want ErrWriteAfterEnd. Got: %v", cbErr)
		t.Fail()
	}
}

func TestSinkMayReenter(t *testing.T) {
	var s *Splitter
	pushed := []string{}
	sink := SinkFunc(func(line Chunk) (bool, error) {
		pushed = append(pushed, line.String())
		if line.String() == "a" {
			// The remainder "part" must already be stored.
			s.Write(Text("ial\n"))
		}
		return true, nil
	})
	var err error
	s, err = New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	s.Write(Text("a\nb\npart"))
	s.End(nil)

	want := []string{"a", "partial", "b"}
	if !reflect.DeepEqual(pushed, want) {
		t.Logf("Want: %s Got: %s", spew.Sdump(want), spew.Sdump(pushed))
		t.Fail()
	}
}

// endingSink ends the splitter from inside Push when it sees trigger.
type endingSink struct {
	s       *Splitter
	trigger string
	events  []string
}

func (e *endingSink) Push(line Chunk) (bool, error) {
	e.events = append(e.events, "push:"+line.String())
	if line.String() == e.trigger {
		e.s.End(nil)
	}
	return true, nil
}

func (e *endingSink) End() error {
	e.events = append(e.events, "END")
	return nil
}

func TestSinkMayEndFromPush(t *testing.T) {
	sink := &endingSink{trigger: "a"}
	s, err := New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	sink.s = s
	s.OnClose(func() {
		sink.events = append(sink.events, "CLOSE")
	})

	var cbErr error
	ok := s.Write(Text("a\nb\nc"), WithCallback(func(err error) { cbErr = err }))

	want := []string{"push:a", "push:c", "END", "CLOSE"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Logf("Nothing may be pushed after End. Want: %s Got: %s", spew.Sdump(want), spew.Sdump(sink.events))
		t.Fail()
	}
	if ok {
		t.Logf("Write should report false once the sink has ended")
		t.Fail()
	}
	if cbErr != ErrWriteAfterEnd || s.Err() != ErrWriteAfterEnd {
		t.Logf("Undelivered lines should latch ErrWriteAfterEnd. Callback: %v Latched: %v", cbErr, s.Err())
		t.Fail()
	}
}

func TestSinkMayEndOnLastLine(t *testing.T) {
	sink := &endingSink{trigger: "b"}
	s, err := New(sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	sink.s = s

	if s.Write(Text("a\nb\n")) {
		t.Logf("Write should report false once the sink has ended")
		t.Fail()
	}
	if s.Err() != nil {
		t.Logf("No line was lost so nothing should latch. Got: %v", s.Err())
		t.Fail()
	}
	want := []string{"push:a", "push:b", "END"}
	if !reflect.DeepEqual(sink.events, want) {
		t.Logf("Want: %s Got: %s", spew.Sdump(want), spew.Sdump(sink.events))
		t.Fail()
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(&Collector{}, Options{Separator: MustPattern(`x*`)}); !errors.Is(err, ErrInvalidSeparator) {
		t.Logf("A pattern matching nothing should be rejected. Got: %v", err)
		t.Fail()
	}
	if _, err := New(&Collector{}, Options{Encoding: "not-a-charset"}); !errors.Is(err, ErrUnknownEncoding) {
		t.Logf("An unknown encoding should be rejected. Got: %v", err)
		t.Fail()
	}
	if _, err := New(&Collector{}, Options{Separator: Literal("")}); !errors.Is(err, ErrInvalidSeparator) {
		t.Logf("An empty literal should be rejected. Got: %v", err)
		t.Fail()
	}
	if _, err := New(nil, Options{}); err == nil {
		t.Logf("A nil sink should be rejected")
		t.Fail()
	}
}

func TestNewLeavesOptionsAlone(t *testing.T) {
	opts := Options{Encoding: "utf8"}
	s, c := newCollecting(t, opts)
	s.End(nil)

	if len(c.Lines()) != 0 {
		t.Logf("No lines expected. Got: %s", spew.Sdump(c.Strings()))
		t.Fail()
	}
	if !reflect.DeepEqual(opts, Options{Encoding: "utf8"}) {
		t.Logf("Options changed: %+v", opts)
		t.Fail()
	}
}
