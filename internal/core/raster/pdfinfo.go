package raster

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageCount parses data as a PDF and returns its page count. The parser panics
// on some malformed inputs; those come back as errors.
func PageCount(data []byte) (n int, err error) {
	if len(data) == 0 {
		return 0, errors.New("empty buffer")
	}
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n = reader.NumPage()
	if n < 0 {
		return 0, fmt.Errorf("invalid page count %d", n)
	}
	return n, nil
}
