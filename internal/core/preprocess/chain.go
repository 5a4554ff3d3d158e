// Package preprocess implements the optional image-enhancement chain that runs
// before OCR: upscale, grayscale, Bradley local threshold, contrast stretch.
package preprocess

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/raster"
)

type Config struct {
	Factor    int     // upscale factor, default 2
	Window    int     // Bradley window in pixels, default 41
	Limit     float64 // Bradley brightness difference limit, default 0.15
	MaxPixels int     // cap on pixels after upscaling, default 100M
}

// Kind tags an Outcome.
type Kind int

const (
	// Enhanced means Data is the output of the full chain.
	Enhanced Kind = iota
	// Fallback means the chain failed and Data is the original image.
	Fallback
)

func (k Kind) String() string {
	if k == Enhanced {
		return "enhanced"
	}
	return "fallback"
}

// Outcome is either Enhanced(Data) or Fallback(Data, Reason).
type Outcome struct {
	Kind   Kind
	Data   []byte
	Reason error
}

type Chain struct {
	cfg    Config
	logger *slog.Logger
}

func NewChain(cfg Config, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Factor <= 0 {
		cfg.Factor = 2
	}
	if cfg.Window <= 0 {
		cfg.Window = 41
	}
	if cfg.Limit <= 0 || cfg.Limit >= 1 {
		cfg.Limit = 0.15
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = 100_000_000
	}
	return &Chain{cfg: cfg, logger: logger}
}

// Enhance runs the chain over img without modifying it. On failure the
// original bytes are returned tagged as Fallback with a PreprocessError.
func (c *Chain) Enhance(img *raster.Image) Outcome {
	orig := img.Bytes()
	start := time.Now()
	out, err := c.Apply(orig)
	if err != nil {
		c.logger.Debug("preprocess fallback", "page", img.Page, "error", err)
		return Outcome{Kind: Fallback, Data: orig, Reason: err}
	}
	c.logger.Debug("preprocess ok",
		"page", img.Page,
		"in_bytes", len(orig),
		"out_bytes", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Outcome{Kind: Enhanced, Data: out}
}

// Apply is the pure byte-level chain: PNG in, PNG out.
func (c *Chain) Apply(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, common.PreprocessError("decode", errEmptyImage)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, common.PreprocessError("decode header", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, common.PreprocessError("decode header", errEmptyImage)
	}
	if w, h := cfg.Width*c.cfg.Factor, cfg.Height*c.cfg.Factor; w*h > c.cfg.MaxPixels {
		return nil, common.PreprocessError(fmt.Sprintf("upscaled image %dx%d exceeds %d pixels", w, h, c.cfg.MaxPixels), nil)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, common.PreprocessError("decode", err)
	}

	up, err := Upscale(src, c.cfg.Factor)
	if err != nil {
		return nil, common.PreprocessError("upscale", err)
	}
	gray := Grayscale(up)
	bin := BradleyThreshold(gray, c.cfg.Window, c.cfg.Limit)
	stretched := ContrastStretch(bin)

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, stretched); err != nil {
		return nil, common.PreprocessError("encode", err)
	}
	return buf.Bytes(), nil
}
