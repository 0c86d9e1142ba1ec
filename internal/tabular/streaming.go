package tabular

// streaming.go provides the io.Reader wrappers applied to CSV uploads before
// parsing:
//
//   - bomSkipper drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) written by Excel
//   - UTF8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - CountingReader tracks bytes read for logging and metrics
//
// Use WrapForStreaming to apply all three in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper strips a UTF-8 BOM from the start of the stream.
type bomSkipper struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader returns a reader that omits a leading UTF-8 BOM.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	return &bomSkipper{br: bufio.NewReader(r)}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly, keeping a
// multi-byte sequence split across reads intact.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte // incomplete trailing sequence from the previous read
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	if isASCII(p[:n]) {
		return n, err
	}
	return s.sanitize(p[:n], err == io.EOF), err
}

func isASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize rewrites data in place and returns the number of bytes to hand
// to the caller. Unless atEOF, an incomplete sequence at the end is held
// back in s.pending.
func (s *UTF8Sanitizer) sanitize(data []byte, atEOF bool) int {
	write := 0
	for read := 0; read < len(data); {
		if !atEOF && !utf8.FullRune(data[read:]) {
			s.pending = append(s.pending, data[read:]...)
			return write
		}

		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// CountingReader counts the bytes read through it.
type CountingReader struct {
	r         io.Reader
	BytesRead int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.BytesRead += int64(n)
	return n, err
}

// WrapForStreaming strips the BOM, then sanitizes UTF-8, then counts.
func WrapForStreaming(r io.Reader) *CountingReader {
	return NewCountingReader(NewUTF8Sanitizer(NewBOMSkippingReader(r)))
}
