package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/joseph-ayodele/scanocr/constants"
)

type WatchConfig struct {
	Root        string
	Recursive   bool
	SkipHidden  bool
	InitialScan bool          // emit PDFs already present at start
	Debounce    time.Duration // coalesce rapid create/write bursts
	Logger      *slog.Logger
}

// Watch emits the path of every PDF created or rewritten under cfg.Root until
// ctx is done. Both channels are closed when the watcher stops.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Root == "" {
		return nil, nil, errors.New("watch root is required")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	var initial []string
	err = filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path != cfg.Root && cfg.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != cfg.Root && !cfg.Recursive {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		if cfg.InitialScan && constants.IsPDFExt(filepath.Ext(path)) {
			initial = append(initial, path)
		}
		return nil
	})
	if err != nil {
		logger.Error("failed to add watch directory", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		defer close(evCh)
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("failed to close watcher", "error", err)
			}
		}()

		for _, p := range initial {
			select {
			case evCh <- p:
			case <-ctx.Done():
				return
			}
		}

		d := newDebouncer(cfg.Debounce)
		defer d.stop()

		for {
			select {
			case <-ctx.Done():
				return
			case p := <-d.ready:
				select {
				case evCh <- p:
				case <-ctx.Done():
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create && cfg.Recursive {
					if st, err := os.Stat(e.Name); err == nil && st.IsDir() && !(cfg.SkipHidden && IsHidden(e.Name)) {
						if err := w.Add(e.Name); err != nil {
							logger.Warn("failed to watch new directory", "path", e.Name, "error", err)
						}
					}
				}
				if cfg.SkipHidden && IsHidden(e.Name) {
					continue
				}
				if constants.IsPDFExt(filepath.Ext(e.Name)) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					d.add(e.Name)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

// debouncer releases a path once it has been quiet for the delay.
type debouncer struct {
	delay time.Duration
	ready chan string

	mu     sync.Mutex
	timers map[string]*time.Timer
	done   chan struct{}
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan string, 256),
		timers: map[string]*time.Timer{},
		done:   make(chan struct{}),
	}
}

func (d *debouncer) add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		d.mu.Unlock()
		select {
		case d.ready <- path:
		case <-d.done:
		}
	})
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.done)
}
