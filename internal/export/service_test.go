package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

func sampleResults() []pipeline.DocumentResult {
	return []pipeline.DocumentResult{
		{
			Name:   "scan",
			Status: constants.DocumentDone,
			Pages: []pipeline.PageResult{
				{Page: 1, Total: 2, Status: constants.PageWritten, Tier: constants.QualityVeryGood, Confidence: 0.8349, Enhanced: true, OutputPath: "/out/scan-Page1.txt", Duration: 1500 * time.Millisecond},
				{Page: 2, Total: 2, Status: constants.PageEngineFailed, Err: common.EngineError("recognize", errors.New("boom"))},
			},
		},
		{Name: "broken", Status: constants.DocumentFailed, Err: common.DecodeError("page count", errors.New("xref"))},
	}
}

func TestRunReportXLSX(t *testing.T) {
	data, err := NewService(nil).RunReportXLSX("run-7", sampleResults())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Pages", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Pages")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, pageHeaders, rows[0])
	assert.Equal(t, []string{"scan", "1", "2", "WRITTEN", "Very good", "0.83", "yes", "/out/scan-Page1.txt", "", "1500"}, rows[1])
	assert.Equal(t, "ENGINE_FAILED", rows[2][3])
	assert.Equal(t, "", rows[2][4])
	assert.True(t, strings.HasPrefix(rows[2][8], "ENGINE_ERROR"))
	assert.Equal(t, "broken", rows[3][0])
	assert.Equal(t, "DOCUMENT_FAILED", rows[3][3])
	assert.Contains(t, rows[3][8], "DECODE_ERROR")

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	got := map[string]string{}
	for _, r := range summary {
		if len(r) >= 2 {
			got[r[0]] = r[1]
		}
	}
	assert.Equal(t, "run-7", got["Run"])
	assert.Equal(t, "2", got["Documents"])
	assert.Equal(t, "1", got["Failed documents"])
	assert.Equal(t, "1", got["WRITTEN"])
	assert.Equal(t, "1", got["ENGINE_FAILED"])
	assert.Equal(t, "1", got["Quality Very good"])
}

func TestRunReportEmpty(t *testing.T) {
	data, err := NewService(nil).RunReportXLSX("empty", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Pages")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.xlsx")
	require.NoError(t, WriteFile(path, []byte("data")))
	assert.FileExists(t, path)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab…", truncate("abcdef", 3))
}
