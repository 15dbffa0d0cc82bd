package configfile

import (
	"fmt"
	"regexp"

	"github.com/c2h5oh/datasize"
	"github.com/morfien101/splitstream/splitter"
)

// SplitterConfig holds how sources are cut into lines.
type SplitterConfig struct {
	// Separator is a literal separator. It wins over SeparatorPattern.
	Separator        string `yaml:"separator,omitempty" toml:"separator"`
	SeparatorPattern string `yaml:"separator_pattern,omitempty" toml:"separator_pattern"`
	// Encoding empty keeps lines as raw bytes.
	Encoding string            `yaml:"encoding,omitempty" toml:"encoding"`
	ReadSize datasize.ByteSize `yaml:"read_size,omitempty" toml:"read_size"`
}

// Options turns the configuration into splitter options.
func (sc SplitterConfig) Options() (splitter.Options, error) {
	opts := splitter.Options{Encoding: sc.Encoding}
	switch {
	case sc.Separator != "":
		opts.Separator = splitter.Literal(sc.Separator)
	case sc.SeparatorPattern != "":
		re, err := regexp.Compile(sc.SeparatorPattern)
		if err != nil {
			return opts, fmt.Errorf("separator_pattern %q is not a valid expression. Error: %s", sc.SeparatorPattern, err)
		}
		opts.Separator = splitter.Pattern(re)
	}
	return opts, nil
}

// validate builds a throw away splitter so bad separators and encodings are
// caught before any source is opened.
func (sc SplitterConfig) validate() error {
	opts, err := sc.Options()
	if err != nil {
		return err
	}
	if _, err := splitter.New(&splitter.Collector{}, opts); err != nil {
		return fmt.Errorf("invalid splitter configuration. Error: %s", err)
	}
	return nil
}
