package source

// streaming.go prepares CSV input as it is read:
//
//   - the UTF-8 BOM (0xEF 0xBB 0xBF) that Windows tools prepend is dropped
//   - bytes read are counted for logging
//
// Every other byte passes through untouched; invalid UTF-8 is rejected by
// row validation, not repaired here.

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomReader strips a leading BOM.
type bomReader struct {
	br         *bufio.Reader
	bomChecked bool
}

// NewBOMReader wraps r so a leading UTF-8 BOM is skipped.
func NewBOMReader(r io.Reader) io.Reader {
	return &bomReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader.
func (b *bomReader) Read(p []byte) (int, error) {
	if !b.bomChecked {
		b.bomChecked = true
		if head, _ := b.br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			_, _ = b.br.Discard(len(utf8BOM))
		}
	}
	return b.br.Read(p)
}

// countingReader tracks bytes read from the underlying file.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}
