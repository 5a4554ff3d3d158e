// Package ocr adapts Tesseract to the pipeline. Every page gets its own engine
// instance, opened before recognition and closed right after.
package ocr

import (
	"context"
	"errors"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
)

type EngineConfig struct {
	Language    string // default "eng"
	Mode        constants.EngineMode
	PageSegMode int // --psm, default 3
	TessdataDir string
}

// Result is the recognizer output for one page.
type Result struct {
	Text string
	// MeanConfidence is the mean word confidence in [0,1].
	MeanConfidence float64
	Words          int
}

// Engine is a single, stateful recognizer instance.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (Result, error)
	Close() error
}

// EngineFactory opens engine instances.
type EngineFactory interface {
	Name() string
	Open(cfg EngineConfig) (Engine, error)
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.Language == "" {
		c.Language = "eng"
	}
	if c.Mode == "" {
		c.Mode = constants.EngineModeDefault
	}
	if c.PageSegMode <= 0 {
		c.PageSegMode = 3
	}
	return c
}

// Recognize opens an engine from f, runs it over png and closes it before
// returning. Failures come back as EngineError.
func Recognize(ctx context.Context, f EngineFactory, cfg EngineConfig, png []byte) (Result, error) {
	eng, err := f.Open(cfg.withDefaults())
	if err != nil {
		return Result{}, asEngineError("open "+f.Name()+" engine", err)
	}
	// close errors are logged by the engine; the result is still good
	defer func() { _ = eng.Close() }()

	if len(png) == 0 {
		return Result{}, common.EngineError("recognize", errors.New("empty image"))
	}
	res, err := eng.Recognize(ctx, png)
	if err != nil {
		return Result{}, asEngineError("recognize", err)
	}
	res.MeanConfidence = clamp01(res.MeanConfidence)
	return res, nil
}

func asEngineError(msg string, err error) error {
	if errors.Is(err, common.ErrEngine) {
		return err
	}
	return common.EngineError(msg, err)
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
