package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/scanocr/internal/app"
	"github.com/joseph-ayodele/scanocr/internal/common"
)

var runBindings = map[string]string{
	"pathtofiles":      "dir",
	"addpreprocessing": "preprocess",
	"output_dir":       "output",
	"workers":          "workers",
	"recursive":        "recursive",
	"document_timeout": "document-timeout",
	"ocr.backend":      "backend",
	"ocr.language":     "lang",
	"ocr.page_timeout": "page-timeout",
	"report.xlsx_path": "report",
	"metrics.addr":     "metrics-addr",
}

func addRunFlags(cmd *cobra.Command, withDir bool) {
	f := cmd.Flags()
	if withDir {
		f.String("dir", "", "directory containing the PDFs (PathToFiles)")
		f.Bool("recursive", false, "descend into subdirectories")
	}
	f.Bool("preprocess", false, "upscale, binarize and stretch pages before OCR (AddPreProcessing)")
	f.String("output", "", "directory for page text files (default: next to each PDF)")
	f.Int("workers", 1, "documents processed in parallel")
	f.String("backend", "", "ocr backend: cli or gosseract")
	f.String("lang", "", "tesseract language, e.g. eng or eng+deu")
	f.Duration("page-timeout", 0, "per-page OCR timeout, 0 disables it")
	f.Duration("document-timeout", 0, "per-document timeout (default 30m from config)")
	f.String("report", "", "write an XLSX run report to this path")
	f.String("metrics-addr", "", "serve Prometheus metrics on this address")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every PDF in the configured directory",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig(cmd, runBindings, nil)
		if err != nil {
			return err
		}
		a, err := app.New(cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return execute(ctx, a, a.RunDirectory)
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <pdf>...",
	Short: "Process the given PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := make([]string, 0, len(args))
		for _, arg := range args {
			p, err := filepath.Abs(arg)
			if err != nil {
				return err
			}
			if !strings.EqualFold(filepath.Ext(p), ".pdf") {
				return common.NewAppError(common.CodeConfig, fmt.Sprintf("%s is not a .pdf file", arg), common.ErrInvalidInput)
			}
			if _, err := os.Stat(p); err != nil {
				return common.NewAppError(common.CodeConfig, "cannot open "+arg, err)
			}
			paths = append(paths, p)
		}
		// PathToFiles is required; point it at the first file's directory so
		// page files still land next to their PDF by default.
		cfg, logger, err := loadConfig(cmd, runBindings, map[string]any{
			"pathtofiles": filepath.Dir(paths[0]),
		})
		if err != nil {
			return err
		}
		a, err := app.New(cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return execute(ctx, a, func(ctx context.Context) (app.Run, error) {
			return a.RunFiles(ctx, paths)
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process PDFs as they appear in the configured directory until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		debounce, err := cmd.Flags().GetDuration("debounce")
		if err != nil {
			return err
		}
		cfg, logger, err := loadConfig(cmd, runBindings, nil)
		if err != nil {
			return err
		}
		a, err := app.New(cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()
		return execute(ctx, a, func(ctx context.Context) (app.Run, error) {
			return a.Watch(ctx, debounce)
		})
	},
}

func init() {
	addRunFlags(runCmd, true)
	addRunFlags(fileCmd, false)
	addRunFlags(watchCmd, true)
	watchCmd.Flags().Duration("debounce", 2*time.Second, "wait this long after the last write before processing a file")
}
