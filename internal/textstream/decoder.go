// Package textstream decodes a UTF-8 byte stream into text incrementally.
package textstream

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const bufSize = 4096

// Decoder is a stateful UTF-8 decoder. A multi-byte sequence split across
// chunks is held back until the rest of it arrives. Invalid bytes decode
// to U+FFFD. A Decoder is not safe for concurrent use.
type Decoder struct {
	t       transform.Transformer
	pending []byte
	buf     []byte
}

// NewDecoder creates a Decoder ready for a new stream.
func NewDecoder() *Decoder {
	return &Decoder{
		t:   unicode.UTF8.NewDecoder(),
		buf: make([]byte, bufSize),
	}
}

// Decode returns the text decodable from chunk plus any bytes held back
// by the previous call.
func (d *Decoder) Decode(chunk []byte) string {
	return d.transform(chunk, false)
}

// Flush ends the stream. Held-back bytes of an incomplete sequence are
// emitted as U+FFFD. The Decoder can be reused afterwards.
func (d *Decoder) Flush() string {
	s := d.transform(nil, true)
	d.t.Reset()
	return s
}

// Pending reports how many bytes are held back waiting for more input.
func (d *Decoder) Pending() int { return len(d.pending) }

func (d *Decoder) transform(chunk []byte, atEOF bool) string {
	src := chunk
	if len(d.pending) > 0 {
		src = append(d.pending, chunk...)
		d.pending = nil
	}

	var out strings.Builder
	for {
		nDst, nSrc, err := d.t.Transform(d.buf, src, atEOF)
		out.Write(d.buf[:nDst])
		src = src[nSrc:]

		switch {
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			d.pending = append([]byte(nil), src...)
		}
		return out.String()
	}
}

// Stream reads r until EOF, decoding each chunk as it arrives and handing
// the non-empty text to emit in receive order. It returns the number of
// raw bytes read. The decoder is flushed at EOF and on read errors.
func Stream(r io.Reader, emit func(string)) (int64, error) {
	dec := NewDecoder()
	buf := make([]byte, bufSize)

	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if s := dec.Decode(buf[:n]); s != "" {
				emit(s)
			}
		}
		if err != nil {
			if s := dec.Flush(); s != "" {
				emit(s)
			}
			if errors.Is(err, io.EOF) {
				return total, nil
			}
			return total, err
		}
	}
}
