//go:build !ocr

package tesseract

import (
	"log/slog"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
)

// Enabled reports whether the backend was compiled in.
const Enabled = false

// Factory is the placeholder used when cgo OCR is not compiled in.
type Factory struct{}

// NewFactory always fails with ErrNotEnabled in this build.
func NewFactory(*slog.Logger) (*Factory, error) {
	return nil, ErrNotEnabled
}

func (*Factory) Name() string { return "gosseract" }

func (*Factory) Open(ocr.EngineConfig) (ocr.Engine, error) {
	return nil, common.EngineError("open gosseract engine", ErrNotEnabled)
}
