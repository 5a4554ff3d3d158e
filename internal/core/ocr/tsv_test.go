package ocr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t1240\t1754\t-1\t\n" +
	"2\t1\t1\t0\t0\t0\t100\t100\t600\t80\t-1\t\n" +
	"3\t1\t1\t1\t0\t0\t100\t100\t600\t80\t-1\t\n" +
	"4\t1\t1\t1\t1\t0\t100\t100\t600\t30\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t100\t100\t120\t30\t96.5\tInvoice\n" +
	"5\t1\t1\t1\t1\t2\t230\t100\t80\t30\t91.5\tno.\n" +
	"4\t1\t1\t1\t2\t0\t100\t140\t600\t30\t-1\t\n" +
	"5\t1\t1\t1\t2\t1\t100\t140\t90\t30\t88\tTotal\n" +
	"5\t1\t1\t1\t2\t2\t200\t140\t30\t30\t-1\t \n" +
	"3\t1\t1\t2\t0\t0\t100\t200\t600\t30\t-1\t\n" +
	"5\t1\t1\t2\t1\t1\t100\t200\t90\t30\t84\tThanks\n" +
	"2\t1\t2\t0\t0\t0\t100\t400\t600\t30\t-1\t\n" +
	"5\t1\t2\t1\t1\t1\t100\t400\t90\t30\t80\tEnd\n"

func TestParseTSV(t *testing.T) {
	res := ParseTSV([]byte(sampleTSV))

	assert.Equal(t, "Invoice no.\nTotal\n\nThanks\n\nEnd", res.Text)
	assert.Equal(t, 5, res.Words)
	assert.InDelta(t, (96.5+91.5+88+84+80)/500, res.MeanConfidence, 1e-9)
}

func TestParseTSVEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantText string
		wantConf float64
	}{
		{"empty output", "", "", 0},
		{"header only", "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n", "", 0},
		{"crlf and short rows", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t50\tok\r\n5\t1\t1\n", "ok", 0.5},
		{"unparseable conf is skipped", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\tx\tword\n", "word", 0},
		{"conf above 100 is clamped", "5\t1\t1\t1\t1\t1\t0\t0\t1\t1\t150\tloud\n", "loud", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseTSV([]byte(tt.in))
			assert.Equal(t, tt.wantText, res.Text)
			assert.InDelta(t, tt.wantConf, res.MeanConfidence, 1e-9)
		})
	}
}
