package feed

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const byteOrderMark = "\uFEFF"

// Decoder turns a sequence of UTF-8 byte slices into text. It is stateful:
// a character whose bytes straddle two slices is held back until the rest
// of it arrives, so the concatenation of every Decode result equals the
// decoding of the concatenated input. Invalid bytes become U+FFFD.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	started bool
}

// NewDecoder returns a Decoder with no buffered input.
func NewDecoder() *Decoder {
	return &Decoder{t: unicode.UTF8.NewDecoder()}
}

// Decode decodes p in streaming mode and returns the text that is complete
// so far. Trailing bytes of an unfinished character are kept for the next
// call.
func (d *Decoder) Decode(p []byte) string {
	src := p
	if len(d.pending) > 0 {
		src = append(d.pending, p...)
		d.pending = nil
	}
	return d.transform(src, false)
}

// Flush decodes any held-back bytes as end of input. An incomplete trailing
// character decodes to U+FFFD.
func (d *Decoder) Flush() string {
	src := d.pending
	d.pending = nil
	if len(src) == 0 {
		return ""
	}
	return d.transform(src, true)
}

func (d *Decoder) transform(src []byte, atEOF bool) string {
	var out strings.Builder
	// Every invalid byte expands to a 3-byte replacement rune at most.
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	for len(src) > 0 {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out.Write(dst[:nDst])
		src = src[nSrc:]
		if errors.Is(err, transform.ErrShortSrc) {
			d.pending = append([]byte(nil), src...)
			break
		}
		if err != nil && !errors.Is(err, transform.ErrShortDst) {
			break
		}
		if nSrc == 0 && nDst == 0 {
			break
		}
	}

	text := out.String()
	if !d.started && text != "" {
		d.started = true
		text = strings.TrimPrefix(text, byteOrderMark)
	}
	return text
}
