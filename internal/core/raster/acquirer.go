package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/command"
)

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // rasterization DPI, default 300
	MaxPages int    // 0 = no limit
}

// Acquirer renders PDF buffers into ordered page images.
type Acquirer struct {
	cfg       Config
	runner    command.Runner
	logger    *slog.Logger
	onRelease func(page int)
}

type Option func(*Acquirer)

// WithRunner replaces the exec runner (tests stub pdftoppm with it).
func WithRunner(r command.Runner) Option {
	return func(a *Acquirer) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithReleaseHook is attached to every produced image.
func WithReleaseHook(fn func(page int)) Option {
	return func(a *Acquirer) { a.onRelease = fn }
}

func NewAcquirer(cfg Config, logger *slog.Logger, opts ...Option) *Acquirer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	a := &Acquirer{cfg: cfg, runner: command.Exec(), logger: logger}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Decode renders every page of the PDF in data, ordered by page number from 1.
// A zero-page PDF yields an empty slice and no error. Any parse or render
// failure is a DecodeError and no images are returned.
func (a *Acquirer) Decode(ctx context.Context, data []byte) ([]*Image, error) {
	start := time.Now()

	pages, err := PageCount(data)
	if err != nil {
		return nil, common.DecodeError("not a readable pdf", err)
	}
	if pages == 0 {
		a.logger.Debug("pdf has no pages", "bytes", len(data))
		return []*Image{}, nil
	}
	expected := pages
	if a.cfg.MaxPages > 0 && expected > a.cfg.MaxPages {
		expected = a.cfg.MaxPages
	}

	tmpDir, err := os.MkdirTemp("", "scanocr-pp-*")
	if err != nil {
		return nil, common.DecodeError("create temp dir", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			a.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	in := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		return nil, common.DecodeError("stage pdf", err)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(a.cfg.DPI), "-png"}
	if expected < pages {
		args = append(args, "-f", "1", "-l", strconv.Itoa(expected))
	}
	args = append(args, in, prefix)
	if _, errb, err := a.runner.Run(ctx, a.cfg.Pdftoppm, a.logger, args...); err != nil {
		return nil, common.DecodeError("pdftoppm: "+strings.TrimSpace(command.Truncate(string(errb), 512)), err)
	}

	files, err := renderedPages(prefix)
	if err != nil {
		return nil, common.DecodeError("collect rendered pages", err)
	}
	if len(files) != expected {
		return nil, common.DecodeError(fmt.Sprintf("rendered %d pages, expected %d", len(files), expected), nil)
	}

	images := make([]*Image, 0, len(files))
	for i, f := range files {
		if f.page != i+1 {
			ReleaseAll(images)
			return nil, common.DecodeError(fmt.Sprintf("missing rendered page %d", i+1), nil)
		}
		b, err := os.ReadFile(f.path)
		if err != nil {
			ReleaseAll(images)
			return nil, common.DecodeError(fmt.Sprintf("read rendered page %d", f.page), err)
		}
		images = append(images, NewImage(f.page, b, a.onRelease))
	}

	a.logger.Debug("pdf rasterized",
		"pages", len(images),
		"dpi", a.cfg.DPI,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return images, nil
}

type renderedPage struct {
	page int
	path string
}

// renderedPages collects prefix-<n>.png files sorted by n. pdftoppm zero-pads n
// to the width of the last page number, so a lexical sort is not enough.
func renderedPages(prefix string) ([]renderedPage, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	base := filepath.Base(prefix) + "-"
	out := make([]renderedPage, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), base), ".png")
		n, err := strconv.Atoi(num)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("unexpected rendered file %q", filepath.Base(m))
		}
		out = append(out, renderedPage{page: n, path: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].page < out[j].page })
	return out, nil
}
