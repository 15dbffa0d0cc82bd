package splitter

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Chunk is a unit of data written into a Splitter or pushed out of it.
// The only implementations are Bytes and Text.
type Chunk interface {
	Len() int
	String() string
	isChunk()
}

// Bytes is raw binary data. Byte mode splitters emit their lines as Bytes.
type Bytes []byte

// Text is a string of characters. Text mode splitters emit their lines as Text.
type Text string

func (Bytes) isChunk() {}
func (Text) isChunk()  {}

// Len is the size of the chunk in bytes.
func (b Bytes) Len() int { return len(b) }

// Len is the size of the chunk in bytes.
func (t Text) Len() int { return len(t) }

func (b Bytes) String() string { return string(b) }
func (t Text) String() string  { return string(t) }

// Names accepted by WithEncoding on top of the IANA charsets.
const (
	encodingHex    = "hex"
	encodingBase64 = "base64"
)

// lookupEncoding resolves a charset name through the IANA and MIME indexes.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "utf8", "utf-8":
		return unicode.UTF8, nil
	}
	for _, index := range []*ianaindex.Index{ianaindex.IANA, ianaindex.MIME} {
		enc, err := index.Encoding(name)
		if err == nil && enc != nil {
			return enc, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownEncoding, "%q", name)
}

// normalize turns a chunk into the bytes a splitter works on.
// encodingName only applies to Text chunks; an empty name falls back to fallback.
func normalize(c Chunk, encodingName string, fallback encoding.Encoding) ([]byte, error) {
	switch v := c.(type) {
	case Bytes:
		return v, nil
	case Text:
		return encodeText(string(v), encodingName, fallback)
	case nil:
		return nil, errors.Wrap(ErrUnconvertible, "nil chunk")
	}
	return nil, errors.Wrapf(ErrUnconvertible, "unsupported chunk type %T", c)
}

func encodeText(s, encodingName string, fallback encoding.Encoding) ([]byte, error) {
	switch strings.ToLower(encodingName) {
	case "":
		if fallback == nil || fallback == unicode.UTF8 {
			return []byte(s), nil
		}
		return encodeWith(fallback, s)
	case encodingHex:
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, errors.Wrapf(ErrUnconvertible, "hex: %s", err)
		}
		return b, nil
	case encodingBase64:
		b, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, errors.Wrapf(ErrUnconvertible, "base64: %s", err)
		}
		return b, nil
	}
	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return nil, errors.Wrap(ErrUnconvertible, err.Error())
	}
	return encodeWith(enc, s)
}

func encodeWith(enc encoding.Encoding, s string) ([]byte, error) {
	if enc == unicode.UTF8 {
		return []byte(s), nil
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrapf(ErrUnconvertible, "encode: %s", err)
	}
	return b, nil
}
