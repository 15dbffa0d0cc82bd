package splitter

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// defaultPattern matches "\n" and "\r\n" but never a lone "\r".
var defaultPattern = regexp.MustCompile(`\r?\n`)

// Separator marks the boundary between two lines. It is either a literal
// string or a regular expression and can not change once built.
// The zero value is the default separator.
type Separator struct {
	literal string
	pattern *regexp.Regexp
	// isLiteral tells Literal("") apart from the zero value.
	isLiteral bool
}

// DefaultSeparator splits on "\n" or "\r\n".
func DefaultSeparator() Separator {
	return Separator{pattern: defaultPattern}
}

// Literal splits on every non-overlapping occurrence of s, leftmost first.
// An empty s is refused by New.
func Literal(s string) Separator {
	return Separator{literal: s, isLiteral: true}
}

// Pattern splits on every match of re, leftmost first.
func Pattern(re *regexp.Regexp) Separator {
	return Separator{pattern: re}
}

// MustPattern compiles expr and panics if it is not a valid expression.
func MustPattern(expr string) Separator {
	return Pattern(regexp.MustCompile(expr))
}

// IsZero reports whether no separator was configured.
func (s Separator) IsZero() bool {
	return !s.isLiteral && s.pattern == nil
}

func (s Separator) String() string {
	if s.pattern != nil {
		return "/" + s.pattern.String() + "/"
	}
	return s.literal
}

func (s Separator) orDefault() Separator {
	if s.IsZero() {
		return DefaultSeparator()
	}
	return s
}

func (s Separator) validate() error {
	if s.pattern == nil && s.literal == "" {
		return errors.Wrap(ErrInvalidSeparator, "literal separator is empty")
	}
	if s.pattern != nil && s.pattern.MatchString("") {
		return errors.Wrapf(ErrInvalidSeparator, "pattern %s matches the empty string", s)
	}
	return nil
}

// splitString cuts text at every separator. The last piece is whatever
// follows the final separator and may be empty.
func (s Separator) splitString(text string) []string {
	if s.pattern == nil {
		return strings.Split(text, s.literal)
	}
	matches := s.pattern.FindAllStringIndex(text, -1)
	pieces := make([]string, 0, len(matches)+1)
	start := 0
	for _, m := range matches {
		if m[0] == m[1] {
			continue
		}
		pieces = append(pieces, text[start:m[0]])
		start = m[1]
	}
	return append(pieces, text[start:])
}

// splitBytes is splitString for byte mode. Every piece is capped so that
// appending to one can never overwrite the next.
func (s Separator) splitBytes(b []byte) [][]byte {
	var matches [][]int
	if s.pattern != nil {
		matches = s.pattern.FindAllIndex(b, -1)
	} else {
		sep := []byte(s.literal)
		for offset := 0; ; {
			i := bytes.Index(b[offset:], sep)
			if i < 0 {
				break
			}
			matches = append(matches, []int{offset + i, offset + i + len(sep)})
			offset += i + len(sep)
		}
	}

	pieces := make([][]byte, 0, len(matches)+1)
	start := 0
	for _, m := range matches {
		if m[0] == m[1] {
			continue
		}
		pieces = append(pieces, b[start:m[0]:m[0]])
		start = m[1]
	}
	return append(pieces, b[start:len(b):len(b)])
}
