//go:build ocr

// Package tesseract is the in-process OCR backend built on gosseract. It links
// libtesseract through cgo and is only compiled with the "ocr" build tag.
package tesseract

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
)

// Enabled reports whether the backend was compiled in.
const Enabled = true

type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) (*Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}, nil
}

func (f *Factory) Name() string { return "gosseract" }

// Open creates one gosseract client configured for cfg.
func (f *Factory) Open(cfg ocr.EngineConfig) (ocr.Engine, error) {
	c := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = c.Close()
			return nil, common.EngineError("set tessdata prefix", err)
		}
	}
	if err := c.SetLanguage(cfg.Language); err != nil {
		_ = c.Close()
		return nil, common.EngineError("set language", err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
		_ = c.Close()
		return nil, common.EngineError("set page segmentation mode", err)
	}
	// --oem is an init-time setting that gosseract does not expose
	f.logger.Debug("gosseract engine opened", "lang", cfg.Language, "psm", cfg.PageSegMode, "mode", cfg.Mode)
	return &engine{client: c, logger: f.logger}, nil
}

type engine struct {
	client *gosseract.Client
	logger *slog.Logger

	mu       sync.Mutex
	inFlight bool
	closed   bool
	closeErr error
}

type outcome struct {
	res ocr.Result
	err error
}

// Recognize runs the cgo call in a goroutine so ctx can cut the wait short.
// The client stays alive until that call returns.
func (e *engine) Recognize(ctx context.Context, png []byte) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, common.EngineError("recognize", err)
	}
	e.mu.Lock()
	if e.closed || e.inFlight {
		e.mu.Unlock()
		return ocr.Result{}, common.EngineError("recognize", errBusy)
	}
	e.inFlight = true
	e.mu.Unlock()

	ch := make(chan outcome, 1)
	go func() {
		defer e.finish()
		res, err := e.recognize(png)
		ch <- outcome{res, err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		return ocr.Result{}, common.EngineError("recognize", ctx.Err())
	}
}

func (e *engine) recognize(png []byte) (ocr.Result, error) {
	if err := e.client.SetImageFromBytes(png); err != nil {
		return ocr.Result{}, common.EngineError("set image", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return ocr.Result{}, common.EngineError("recognize text", err)
	}

	res := ocr.Result{Text: strings.TrimSpace(text)}
	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		e.logger.Debug("word boxes unavailable", "error", err)
		return res, nil
	}
	var sum float64
	for _, b := range boxes {
		if strings.TrimSpace(b.Word) == "" || b.Confidence < 0 {
			continue
		}
		sum += b.Confidence
		res.Words++
	}
	if res.Words > 0 {
		res.MeanConfidence = sum / float64(res.Words) / 100
	}
	return res, nil
}

func (e *engine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inFlight = false
	if e.closed {
		e.release()
	}
}

// Close frees the client now, or as soon as an in-flight call returns.
func (e *engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.closeErr
	}
	e.closed = true
	if !e.inFlight {
		e.release()
	}
	return e.closeErr
}

// release must be called with mu held.
func (e *engine) release() {
	if err := e.client.Close(); err != nil {
		e.closeErr = err
		e.logger.Warn("failed to close gosseract client", "error", err)
	}
}
