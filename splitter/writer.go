package splitter

// Writer exposes a Splitter as an io.WriteCloser so it can sit behind
// io.Copy or an exec.Cmd pipe. Close ends the splitter.
type Writer struct {
	s *Splitter
}

// NewWriter wraps s.
func NewWriter(s *Splitter) *Writer {
	return &Writer{s: s}
}

// Write splits p. The backpressure answer is dropped since io.Writer has no
// way to carry it. p is not retained.
func (w *Writer) Write(p []byte) (int, error) {
	var werr error
	w.s.Write(Bytes(p), WithCallback(func(err error) {
		werr = err
	}))
	if werr != nil {
		return 0, werr
	}
	return len(p), nil
}

// Close ends the splitter and returns the latched error, if any.
func (w *Writer) Close() error {
	var cerr error
	w.s.End(nil, WithCallback(func(err error) {
		cerr = err
	}))
	return cerr
}

// Splitter returns the wrapped splitter.
func (w *Writer) Splitter() *Splitter {
	return w.s
}
