package splitter

// Sink receives the lines a Splitter produces.
type Sink interface {
	// Push hands over one line. The bool reports whether more lines may
	// be pushed straight away. An error fails the splitter for good.
	Push(line Chunk) (bool, error)
	// End is called once when no more lines will follow.
	End() error
}

// SinkFunc lets a plain function act as a Sink. End does nothing.
type SinkFunc func(line Chunk) (bool, error)

// Push calls f.
func (f SinkFunc) Push(line Chunk) (bool, error) {
	return f(line)
}

// End satisfies Sink.
func (f SinkFunc) End() error {
	return nil
}

// Collector keeps every line pushed to it.
type Collector struct {
	lines []Chunk
	ended bool
}

// Push records the line and never asks for a pause.
func (c *Collector) Push(line Chunk) (bool, error) {
	c.lines = append(c.lines, line)
	return true, nil
}

// End marks the collector as finished.
func (c *Collector) End() error {
	c.ended = true
	return nil
}

// Lines returns the lines in the order they arrived.
func (c *Collector) Lines() []Chunk {
	return c.lines
}

// Strings returns the lines as strings.
func (c *Collector) Strings() []string {
	out := make([]string, len(c.lines))
	for i, line := range c.lines {
		out[i] = line.String()
	}
	return out
}

// Ended reports whether End has been called.
func (c *Collector) Ended() bool {
	return c.ended
}
