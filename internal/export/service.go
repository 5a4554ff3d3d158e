// Package export writes the XLSX run report.
package export

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

const (
	pagesSheet   = "Pages"
	summarySheet = "Summary"
)

var pageHeaders = []string{
	"Document",
	"Page",
	"Pages",
	"Status",
	"Quality",
	"Confidence",
	"Preprocessed",
	"Output",
	"Error",
	"Duration ms",
}

// Service produces XLSX bytes for run reports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// RunReportXLSX returns a workbook with one row per page attempt (a failed
// document gets a single row) and a summary sheet.
func (s *Service) RunReportXLSX(runID string, results []pipeline.DocumentResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("xlsx close failed", "error", err)
		}
	}()
	if err := f.SetSheetName("Sheet1", pagesSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(pagesSheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range pageHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(pagesSheet, cell, h)
	}

	row := 2
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(pagesSheet, cell, v)
	}
	for _, doc := range results {
		if doc.Status != constants.DocumentDone {
			write(1, doc.Name)
			write(4, string(doc.Status))
			write(9, errString(doc.Err))
			write(10, doc.Duration.Milliseconds())
			row++
			continue
		}
		for _, p := range doc.Pages {
			write(1, doc.Name)
			write(2, p.Page)
			write(3, p.Total)
			write(4, string(p.Status))
			if p.Tier != "" {
				write(5, p.Tier.Label())
				write(6, math.Round(p.Confidence*100)/100)
			}
			write(7, yesNo(p.Enhanced))
			write(8, p.OutputPath)
			write(9, errString(p.Err))
			write(10, p.Duration.Milliseconds())
			row++
		}
	}

	_ = f.SetColWidth(pagesSheet, "A", "A", 28) // document
	_ = f.SetColWidth(pagesSheet, "B", "G", 12)
	_ = f.SetColWidth(pagesSheet, "H", "H", 60) // output path
	_ = f.SetColWidth(pagesSheet, "I", "I", 60) // error

	s.writeSummary(f, runID, pipeline.Summarize(results))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"run_id", runID,
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummary(f *excelize.File, runID string, sum pipeline.Summary) {
	rows := [][]any{
		{"Run", runID},
		{"Documents", sum.Documents},
		{"Failed documents", sum.FailedDocuments},
		{"Pages", sum.Pages},
	}
	for _, st := range []constants.PageStatus{
		constants.PageWritten,
		constants.PageEngineFailed,
		constants.PagePersistFailed,
		constants.PageCanceled,
	} {
		rows = append(rows, []any{string(st), sum.ByStatus[st]})
	}
	rows = append(rows, []any{"Preprocessing skipped", sum.Fallbacks})
	for _, tier := range constants.Tiers() {
		rows = append(rows, []any{"Quality " + tier.Label(), sum.ByTier[tier]})
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(summarySheet, cell, &r)
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 24)
	_ = f.SetColWidth(summarySheet, "B", "B", 40)
}

// WriteFile stores report bytes at path, creating the parent directory.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return truncate(err.Error(), 500)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
