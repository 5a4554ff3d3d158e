package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/command"
)

// CLIFactory runs the tesseract binary through a command.Runner.
type CLIFactory struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Runner    command.Runner
	Logger    *slog.Logger
}

func NewCLIFactory(tesseract string, runner command.Runner, logger *slog.Logger) *CLIFactory {
	if tesseract == "" {
		tesseract = "tesseract"
	}
	if runner == nil {
		runner = command.Exec()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIFactory{Tesseract: tesseract, Runner: runner, Logger: logger}
}

func (f *CLIFactory) Name() string { return "cli" }

// Open creates a private scratch directory for the instance.
func (f *CLIFactory) Open(cfg EngineConfig) (Engine, error) {
	cfg = cfg.withDefaults()
	if cfg.TessdataDir != "" {
		if st, err := os.Stat(cfg.TessdataDir); err != nil || !st.IsDir() {
			return nil, common.EngineError("tessdata dir "+cfg.TessdataDir, fmt.Errorf("not a directory: %v", err))
		}
	}
	dir, err := os.MkdirTemp("", "scanocr-tess-*")
	if err != nil {
		return nil, common.EngineError("create scratch dir", err)
	}
	return &cliEngine{factory: f, cfg: cfg, dir: dir}, nil
}

type cliEngine struct {
	factory *CLIFactory
	cfg     EngineConfig
	dir     string
	seq     int
	closed  bool
}

func (e *cliEngine) Recognize(ctx context.Context, png []byte) (Result, error) {
	if e.closed {
		return Result{}, common.EngineError("recognize", os.ErrClosed)
	}
	e.seq++
	in := filepath.Join(e.dir, fmt.Sprintf("page-%d.png", e.seq))
	if err := os.WriteFile(in, png, 0o600); err != nil {
		return Result{}, common.EngineError("write page image", err)
	}

	// tesseract <file> stdout -l <lang> --oem <n> --psm <n> [--tessdata-dir <dir>] tsv
	args := []string{in, "stdout",
		"-l", e.cfg.Language,
		"--oem", strconv.Itoa(e.cfg.Mode.OEM()),
		"--psm", strconv.Itoa(e.cfg.PageSegMode),
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	logger := e.factory.Logger
	if doc := common.DocumentFromContext(ctx); doc != "" {
		logger = logger.With("doc", doc, "page_seq", e.seq)
	}
	out, errb, err := e.factory.Runner.Run(ctx, e.factory.Tesseract, logger, args...)
	if err != nil {
		return Result{}, common.EngineError(
			fmt.Sprintf("tesseract: %s", command.Truncate(string(errb), 512)), err)
	}
	return ParseTSV(out), nil
}

// Close removes the scratch directory. Repeated calls are no-ops.
func (e *cliEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := os.RemoveAll(e.dir); err != nil {
		e.factory.Logger.Warn("failed to remove tesseract scratch dir", "dir", e.dir, "error", err)
		return err
	}
	return nil
}
