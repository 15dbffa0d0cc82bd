package configfile

import "fmt"

// Source types that can be split into lines.
const (
	SourceStdin   = "stdin"
	SourceFile    = "file"
	SourceCommand = "command"
)

// Sources holds every stream that needs to be split.
type Sources []*Source

// Source is a struct that consumes a yaml configuration and describes one
// stream that needs to be split into lines.
type Source struct {
	Name          string        `yaml:"name" toml:"name"`
	Type          string        `yaml:"type" toml:"type"`
	Path          string        `yaml:"path,omitempty" toml:"path"`
	CMD           string        `yaml:"command,omitempty" toml:"command"`
	Args          []string      `yaml:"arguments,omitempty" toml:"arguments"`
	LoggerConfig  LoggingConfig `yaml:"logging_config,omitempty" toml:"logging_config"`
	CombineOutput bool          `yaml:"combine_output,omitempty" toml:"combine_output"`
	TermTimeout   int           `yaml:"termination_timeout_seconds,omitempty" toml:"termination_timeout_seconds"`
}

func (s *Source) validate() error {
	switch s.Type {
	case SourceStdin:
	case SourceFile:
		if s.Path == "" {
			return fmt.Errorf("source %s is a file but has no path", s.Name)
		}
	case SourceCommand:
		if s.CMD == "" {
			return fmt.Errorf("source %s is a command but has no command", s.Name)
		}
	default:
		return fmt.Errorf("source %s has unknown type %q. Valid types are %s, %s and %s",
			s.Name, s.Type, SourceStdin, SourceFile, SourceCommand)
	}
	return nil
}

func (srcs Sources) validate() error {
	stdinCount := 0
	names := make(map[string]bool)
	for _, src := range srcs {
		if err := src.validate(); err != nil {
			return err
		}
		if names[src.Name] {
			return fmt.Errorf("source name %s is used more than once", src.Name)
		}
		names[src.Name] = true
		if src.Type == SourceStdin {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return fmt.Errorf("stdin can only be read by one source, found %d", stdinCount)
	}
	return nil
}
