// Package console prints human-readable progress for a run.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

// Reporter writes status lines. Writes are serialized, so one Reporter can be
// shared by concurrent workers.
type Reporter struct {
	mu sync.Mutex
	w  io.Writer
	// PrefixDocument tags every page line with the document name, which keeps
	// interleaved output from parallel workers readable.
	PrefixDocument bool
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, format, args...)
}

func (r *Reporter) DocumentStarted(doc pipeline.Document) {
	r.printf("Document: %s\n", doc.Name)
}

func (r *Reporter) PageFinished(doc pipeline.Document, res pipeline.PageResult) {
	prefix := ""
	if r.PrefixDocument {
		prefix = doc.Name + ": "
	}
	if res.PreprocessErr != nil {
		r.printf("%sPage %d/%d - preprocessing skipped: %v\n", prefix, res.Page, res.Total, res.PreprocessErr)
	}
	if res.Status == constants.PageWritten {
		r.printf("%sPage %d/%d - Quality: %s (%.2f)\n", prefix, res.Page, res.Total, res.Tier.Label(), res.Confidence)
		return
	}
	r.printf("%sPage %d/%d - FAILED [%s]: %v\n", prefix, res.Page, res.Total, code(res.Err, res.Status), res.Err)
}

func (r *Reporter) DocumentFinished(res pipeline.DocumentResult) {
	if res.Status == constants.DocumentDone {
		return
	}
	r.printf("Document %s FAILED [%s]: %v\n", res.Name, code(res.Err, ""), res.Err)
}

// Summary prints the end-of-run block.
func (r *Reporter) Summary(runID string, s pipeline.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.w, "\nRun %s\n", runID)
	_, _ = fmt.Fprintf(r.w, "  Documents: %d (%d failed)\n", s.Documents, s.FailedDocuments)
	_, _ = fmt.Fprintf(r.w, "  Pages:     %d written, %d engine failures, %d write failures, %d canceled\n",
		s.ByStatus[constants.PageWritten],
		s.ByStatus[constants.PageEngineFailed],
		s.ByStatus[constants.PagePersistFailed],
		s.ByStatus[constants.PageCanceled],
	)
	if s.Fallbacks > 0 {
		_, _ = fmt.Fprintf(r.w, "  Preprocessing skipped on %d page(s)\n", s.Fallbacks)
	}
	_, _ = fmt.Fprint(r.w, "  Quality:  ")
	for _, tier := range constants.Tiers() {
		_, _ = fmt.Fprintf(r.w, " %s=%d", tier.Label(), s.ByTier[tier])
	}
	_, _ = fmt.Fprintln(r.w)
}

func code(err error, status constants.PageStatus) string {
	if c := common.CodeOf(err); c != "" {
		return c
	}
	if status != "" {
		return string(status)
	}
	return "ERROR"
}
