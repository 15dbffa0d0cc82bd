package splitter

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const replacementChar = "\uFFFD"

// decoder turns bytes into UTF-8 text across many calls.
// An incomplete multi-byte sequence at the end of one call is held back
// and decoded together with the next call.
type decoder struct {
	t       transform.Transformer
	partial []byte
}

func newDecoder(enc encoding.Encoding) *decoder {
	return &decoder{t: enc.NewDecoder()}
}

// decode returns the text for every complete character seen so far.
func (d *decoder) decode(p []byte) string {
	return d.run(p, false)
}

// flush decodes whatever is still held back, replacing bytes that never
// formed a character, and resets the decoder.
func (d *decoder) flush() string {
	out := d.run(nil, true)
	d.t.Reset()
	return out
}

func (d *decoder) run(p []byte, atEOF bool) string {
	src := p
	if len(d.partial) > 0 {
		src = append(d.partial, p...)
		d.partial = nil
	}
	if len(src) == 0 {
		return ""
	}

	dst := make([]byte, len(src)*3+utf8.UTFMax)
	out := make([]byte, 0, len(dst))
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]

		switch err {
		case nil:
			return string(out)
		case transform.ErrShortDst:
			if nDst == 0 && nSrc == 0 {
				dst = make([]byte, len(dst)*2)
			}
		case transform.ErrShortSrc:
			if !atEOF {
				d.partial = append([]byte(nil), src...)
				return string(out)
			}
			// Nothing more is coming for these bytes.
			return string(out) + replacementChar
		default:
			// The transformer refused the input outright. Replace a byte and move on.
			if len(src) == 0 {
				return string(out)
			}
			out = append(out, replacementChar...)
			src = src[1:]
		}
		if len(src) == 0 && err != transform.ErrShortDst {
			return string(out)
		}
	}
}
