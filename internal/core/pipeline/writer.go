package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
)

// FileWriter writes <dir>/<doc>-Page<N>.txt, overwriting existing files.
// With an empty Dir the file lands next to the source PDF.
type FileWriter struct {
	Dir    string
	logger *slog.Logger
}

func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{Dir: dir, logger: logger}
}

// WritePage stores text as <doc>-Page<n>.txt. It does not look at ctx:
// text that was already recognized is kept even if the run is canceled.
func (w *FileWriter) WritePage(_ context.Context, doc Document, page int, text string) (string, error) {
	dir := w.Dir
	if dir == "" {
		dir = filepath.Dir(doc.Path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", common.PersistError("create output dir "+dir, err)
	}

	path := filepath.Join(dir, constants.PageFileName(doc.Name, page))
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", common.PersistError("write "+path, err)
	}
	w.logger.Debug("page written", "doc", doc.Name, "page", page, "path", path, "bytes", len(text))
	return path, nil
}
