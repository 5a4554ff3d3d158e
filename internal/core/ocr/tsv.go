package ocr

import (
	"strconv"
	"strings"
)

// Tesseract TSV columns.
const (
	colLevel = iota
	colPage
	colBlock
	colPar
	colLine
	colWord
	colLeft
	colTop
	colWidth
	colHeight
	colConf
	colText
	tsvColumns
)

const wordLevel = "5"

// ParseTSV rebuilds page text from tesseract TSV output and averages the word
// confidences. Words in a line are joined by a space, lines by a newline,
// and paragraphs or blocks by a blank line.
func ParseTSV(out []byte) Result {
	var (
		sb      strings.Builder
		sum     float64
		n       int
		words   int
		lastKey [3]string
		started bool
	)
	for i, ln := range strings.Split(string(out), "\n") {
		ln = strings.TrimRight(ln, "\r")
		if i == 0 && strings.HasPrefix(ln, "level") {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < tsvColumns || cols[colLevel] != wordLevel {
			continue
		}
		text := strings.TrimSpace(cols[colText])
		if text == "" {
			continue
		}

		key := [3]string{cols[colBlock], cols[colPar], cols[colLine]}
		switch {
		case !started:
			started = true
		case key[0] != lastKey[0] || key[1] != lastKey[1]:
			sb.WriteString("\n\n")
		case key[2] != lastKey[2]:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
		lastKey = key
		sb.WriteString(text)
		words++

		if v, err := strconv.ParseFloat(cols[colConf], 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}

	res := Result{Text: sb.String(), Words: words}
	if n > 0 {
		res.MeanConfidence = clamp01(sum / float64(n) / 100)
	}
	return res
}
