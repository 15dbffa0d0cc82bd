// Package splitter re-cuts a stream of arbitrary chunks into lines.
//
// Chunk boundaries have nothing to do with line boundaries. A Splitter keeps
// the unfinished tail of the stream between writes, decodes multi-byte
// characters that straddle writes when it runs in text mode and hands every
// complete line to a Sink. The answer of the last Push is handed back to the
// writer so backpressure travels upstream.
//
// Once anything fails the splitter latches the error and refuses all further
// data. A Splitter is meant to be driven from a single goroutine. It holds no
// locks so a Sink may call back into it while a line is being pushed.
package splitter

import (
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// Options configures a Splitter. New takes a copy and never changes it.
type Options struct {
	// Separator marks line boundaries. The zero value splits on "\n" or "\r\n".
	Separator Separator
	// Encoding names the charset incoming bytes are decoded from.
	// Empty keeps the splitter in byte mode and lines are emitted as Bytes.
	// Anything else switches to text mode and lines are emitted as Text.
	Encoding string
}

// Splitter turns written chunks into lines pushed to a Sink.
type Splitter struct {
	sink Sink
	sep  Separator

	// enc and dec are nil in byte mode.
	enc encoding.Encoding
	dec *decoder

	pendingText  string
	pendingBytes []byte

	// err is the latch. It never goes back to nil.
	err       error
	ended     bool
	destroyed bool
	closed    bool

	errorListeners []func(error)
	closeListeners []func()
}

// New returns a Splitter that pushes its lines into sink.
func New(sink Sink, opts Options) (*Splitter, error) {
	if sink == nil {
		return nil, errors.New("a sink is required")
	}
	sep := opts.Separator.orDefault()
	if err := sep.validate(); err != nil {
		return nil, err
	}

	s := &Splitter{
		sink: sink,
		sep:  sep,
	}
	if opts.Encoding != "" {
		enc, err := lookupEncoding(opts.Encoding)
		if err != nil {
			return nil, err
		}
		s.enc = enc
		s.dec = newDecoder(enc)
	}
	return s, nil
}

// WriteOption adjusts a single Write or End call.
type WriteOption func(*writeOptions)

type writeOptions struct {
	encoding string
	callback func(error)
}

// WithEncoding says how a Text chunk is turned into bytes. Besides IANA
// charset names "hex" and "base64" are understood. Bytes chunks ignore it.
func WithEncoding(name string) WriteOption {
	return func(wo *writeOptions) {
		wo.encoding = name
	}
}

// WithCallback is called once the call has finished, with nil on success.
func WithCallback(cb func(error)) WriteOption {
	return func(wo *writeOptions) {
		wo.callback = cb
	}
}

func collectOptions(opts []WriteOption) writeOptions {
	wo := writeOptions{}
	for _, opt := range opts {
		opt(&wo)
	}
	return wo
}

// OnError registers a listener that is told about every failure.
func (s *Splitter) OnError(listener func(error)) {
	s.errorListeners = append(s.errorListeners, listener)
}

// OnClose registers a listener for the close signal. Close fires exactly
// once, after End or Destroy.
func (s *Splitter) OnClose(listener func()) {
	s.closeListeners = append(s.closeListeners, listener)
}

// Err returns the latched error, if any.
func (s *Splitter) Err() error {
	return s.err
}

// Closed reports whether the close signal has fired.
func (s *Splitter) Closed() bool {
	return s.closed
}

// TextMode reports whether lines are emitted as Text.
func (s *Splitter) TextMode() bool {
	return s.dec != nil
}

// Write feeds a chunk through the splitter and pushes every line it
// completes. The result is the answer of the last line pushed, or true when
// no line was completed. It is false whenever the write failed.
func (s *Splitter) Write(c Chunk, opts ...WriteOption) bool {
	wo := collectOptions(opts)

	if s.err != nil {
		return s.fail(ErrPreviouslyFailed, wo.callback)
	}
	if s.ended || s.destroyed {
		return s.fail(ErrWriteAfterEnd, wo.callback)
	}

	data, err := normalize(c, wo.encoding, s.enc)
	if err != nil {
		return s.fail(err, wo.callback)
	}

	// The remainder is stored before anything is pushed.
	lines := s.ingest(data)

	keepWriting := true
	for i, line := range lines {
		if line.Len() == 0 {
			continue
		}
		ok, err := s.sink.Push(line)
		if err != nil {
			return s.fail(&pushError{cause: err}, wo.callback)
		}
		keepWriting = ok
		if s.err != nil || s.destroyed {
			// The sink called back into us and brought the splitter down.
			if wo.callback != nil {
				wo.callback(s.err)
			}
			return false
		}
		if s.ended {
			// The sink ended us while lines of this batch were still waiting.
			// The sink has seen End so they can not be delivered.
			if hasLines(lines[i+1:]) {
				return s.fail(ErrWriteAfterEnd, wo.callback)
			}
			if wo.callback != nil {
				wo.callback(nil)
			}
			return false
		}
	}

	if wo.callback != nil {
		wo.callback(nil)
	}
	return keepWriting
}

// End writes c when it is not nil, pushes the unfinished last line, ends
// the sink and fires close. A failure on the way still ends the sink and
// still fires close. The callback receives the latched error, if any.
func (s *Splitter) End(c Chunk, opts ...WriteOption) {
	wo := collectOptions(opts)

	if s.ended || s.destroyed {
		if wo.callback != nil {
			wo.callback(ErrWriteAfterEnd)
		}
		return
	}
	if c != nil {
		s.Write(c, WithEncoding(wo.encoding))
	}
	s.ended = true

	last := s.drain()
	if last.Len() > 0 && s.err == nil {
		if _, err := s.sink.Push(last); err != nil {
			s.fail(&pushError{cause: err}, nil)
		}
	}

	if err := s.sink.End(); err != nil {
		s.fail(errors.Wrap(err, "failed to end sink"), nil)
	}
	if wo.callback != nil {
		wo.callback(s.err)
	}
	s.close()
}

// Destroy tears the splitter down without flushing anything still pending.
// A non-nil err is latched and reported. Close fires if it has not yet.
func (s *Splitter) Destroy(err error) {
	if s.closed {
		return
	}
	s.destroyed = true
	if err != nil {
		s.fail(err, nil)
	}
	s.pendingText = ""
	s.pendingBytes = nil
	s.close()
}

// ingest joins data onto the pending remainder and cuts out the complete lines.
func (s *Splitter) ingest(data []byte) []Chunk {
	if s.dec == nil {
		buf := make([]byte, 0, len(s.pendingBytes)+len(data))
		buf = append(append(buf, s.pendingBytes...), data...)
		pieces := s.sep.splitBytes(buf)
		last := len(pieces) - 1
		s.pendingBytes = pieces[last]
		lines := make([]Chunk, last)
		for i, piece := range pieces[:last] {
			lines[i] = Bytes(piece)
		}
		return lines
	}

	pieces := s.sep.splitString(s.pendingText + s.dec.decode(data))
	last := len(pieces) - 1
	s.pendingText = pieces[last]
	lines := make([]Chunk, last)
	for i, piece := range pieces[:last] {
		lines[i] = Text(piece)
	}
	return lines
}

func hasLines(lines []Chunk) bool {
	for _, line := range lines {
		if line.Len() > 0 {
			return true
		}
	}
	return false
}

// drain empties the decoder and the remainder and returns them as one line.
func (s *Splitter) drain() Chunk {
	if s.dec == nil {
		last := s.pendingBytes
		s.pendingBytes = nil
		return Bytes(last)
	}
	last := s.pendingText + s.dec.flush()
	s.pendingText = ""
	return Text(last)
}

// fail latches the first error, reports err and always returns false.
func (s *Splitter) fail(err error, callback func(error)) bool {
	if s.err == nil {
		s.err = err
	}
	for _, listener := range s.errorListeners {
		listener(err)
	}
	if callback != nil {
		callback(err)
	}
	return false
}

func (s *Splitter) close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, listener := range s.closeListeners {
		listener()
	}
}
