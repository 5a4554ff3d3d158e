// Package ingest enumerates the PDFs a run should process.
package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
)

type Options struct {
	Recursive  bool
	SkipHidden bool
	Logger     *slog.Logger
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Failed  uint32
}

// ListPDFs returns the *.pdf files under root (extension matched without
// regard to case), sorted lexically. Only root itself is read unless
// Recursive is set. Unreadable entries are counted and skipped.
func ListPDFs(root string, opts Options) ([]string, DirStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, common.ConfigError("input directory is required")
	}
	st, err := os.Stat(root)
	if err != nil {
		return nil, stats, fmt.Errorf("stat %s: %w", root, err)
	}
	if !st.IsDir() {
		return nil, stats, fmt.Errorf("%s: %w", root, errNotDir)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if path == root {
			return walkErr
		}
		stats.Scanned++
		if walkErr != nil {
			logger.Warn("skipping unreadable entry", "path", path, "error", walkErr)
			stats.Failed++
			return nil // continue walking
		}
		if opts.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if !opts.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !constants.IsPDFExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, stats, fmt.Errorf("walk: %w", err)
	}

	sort.Strings(paths)
	logger.Debug("input listed", "root", root, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	return paths, stats, nil
}

var errNotDir = errors.New("not a directory")
