package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

func TestReporterLines(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	doc := pipeline.Document{Name: "scan"}

	r.DocumentStarted(doc)
	r.PageFinished(doc, pipeline.PageResult{Page: 1, Total: 3, Status: constants.PageWritten, Tier: constants.QualityVeryGood, Confidence: 0.8312})
	r.PageFinished(doc, pipeline.PageResult{
		Page: 2, Total: 3, Status: constants.PageWritten, Tier: constants.QualityLow, Confidence: 0.1,
		PreprocessErr: common.PreprocessError("decode", errors.New("bad png")),
	})
	r.PageFinished(doc, pipeline.PageResult{Page: 3, Total: 3, Status: constants.PageEngineFailed, Err: common.EngineError("recognize", context.DeadlineExceeded)})
	r.DocumentFinished(pipeline.DocumentResult{Name: "scan", Status: constants.DocumentDone})
	r.DocumentFinished(pipeline.DocumentResult{Name: "bad", Status: constants.DocumentFailed, Err: common.DecodeError("page count", errors.New("xref"))})

	want := []string{
		"Document: scan",
		"Page 1/3 - Quality: Very good (0.83)",
		"Page 2/3 - preprocessing skipped: PREPROCESS_ERROR: decode: bad png",
		"Page 2/3 - Quality: Low (0.10)",
		"Page 3/3 - FAILED [ENGINE_ERROR]: ENGINE_ERROR: recognize: context deadline exceeded",
		"Document bad FAILED [DECODE_ERROR]: DECODE_ERROR: page count: xref",
	}
	assert.Equal(t, strings.Join(want, "\n")+"\n", buf.String())
}

func TestReporterPrefixAndFallbackCode(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	r.PrefixDocument = true

	r.PageFinished(pipeline.Document{Name: "a"}, pipeline.PageResult{Page: 1, Total: 1, Status: constants.PageCanceled, Err: errors.New("stop")})
	assert.Equal(t, "a: Page 1/1 - FAILED [CANCELED]: stop\n", buf.String())
}

func TestReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)
	s := pipeline.Summarize([]pipeline.DocumentResult{
		{Status: constants.DocumentDone, Pages: []pipeline.PageResult{
			{Status: constants.PageWritten, Tier: constants.QualityExcellent},
			{Status: constants.PagePersistFailed, PreprocessErr: errors.New("x")},
		}},
		{Status: constants.DocumentFailed},
	})
	r.Summary("run-42", s)

	out := buf.String()
	assert.Contains(t, out, "Run run-42")
	assert.Contains(t, out, "Documents: 2 (1 failed)")
	assert.Contains(t, out, "1 written, 0 engine failures, 1 write failures, 0 canceled")
	assert.Contains(t, out, "Preprocessing skipped on 1 page(s)")
	assert.Contains(t, out, "Excellent=1")
	assert.Contains(t, out, "Very good=0")
}

func TestReporterConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := pipeline.Document{Name: fmt.Sprintf("d%d", i)}
			for p := 1; p <= 20; p++ {
				r.PageFinished(doc, pipeline.PageResult{Page: p, Total: 20, Status: constants.PageWritten, Tier: constants.QualityGood, Confidence: 0.7})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 160)
	for _, ln := range lines {
		assert.True(t, strings.HasPrefix(ln, "Page "), ln)
		assert.True(t, strings.HasSuffix(ln, "Quality: Good (0.70)"), ln)
	}
}
