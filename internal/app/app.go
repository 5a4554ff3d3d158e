// Package app wires configuration into a runnable pipeline: ingest, queue,
// processor, console, report and metrics.
package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/console"
	"github.com/joseph-ayodele/scanocr/internal/core/async"
	"github.com/joseph-ayodele/scanocr/internal/core/command"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr/tesseract"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
	"github.com/joseph-ayodele/scanocr/internal/core/preprocess"
	"github.com/joseph-ayodele/scanocr/internal/core/raster"
	"github.com/joseph-ayodele/scanocr/internal/export"
	"github.com/joseph-ayodele/scanocr/internal/ingest"
	"github.com/joseph-ayodele/scanocr/internal/observability/metrics"
)

// Run is the outcome of one batch.
type Run struct {
	ID      string
	Results []pipeline.DocumentResult
	Summary pipeline.Summary
}

type App struct {
	cfg       *common.Config
	logger    *slog.Logger
	runner    command.Runner
	engines   ocr.EngineFactory
	reporter  *console.Reporter
	metrics   *metrics.PipelineMetrics
	exporter  *export.Service
	processor *pipeline.Processor
}

type Option func(*App)

// WithRunner replaces os/exec for pdftoppm and tesseract.
func WithRunner(r command.Runner) Option {
	return func(a *App) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithEngineFactory bypasses backend selection.
func WithEngineFactory(f ocr.EngineFactory) Option {
	return func(a *App) {
		a.engines = f
	}
}

// New builds the pipeline from cfg. Console output goes to out.
func New(cfg *common.Config, logger *slog.Logger, out io.Writer, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		cfg:      cfg,
		logger:   logger,
		runner:   command.Exec(),
		reporter: console.NewReporter(out),
		metrics:  metrics.NewPipelineMetrics(),
		exporter: export.NewService(logger),
	}
	for _, o := range opts {
		o(a)
	}
	a.reporter.PrefixDocument = cfg.Workers > 1

	if a.engines == nil {
		engines, err := newEngineFactory(cfg, a.runner, logger)
		if err != nil {
			return nil, err
		}
		a.engines = engines
	}

	source := raster.NewAcquirer(raster.Config{
		Pdftoppm: cfg.OCR.Pdftoppm,
		DPI:      cfg.OCR.DPI,
		MaxPages: cfg.OCR.MaxPages,
	}, logger, raster.WithRunner(a.runner))

	var enhancer pipeline.Enhancer
	if cfg.AddPreProcessing {
		enhancer = preprocess.NewChain(preprocess.Config{}, logger)
	}

	// With the output dir left at the input dir, pages land next to their
	// PDF, which also keeps recursive runs tidy.
	outDir := cfg.OutputDir
	if outDir == cfg.PathToFiles {
		outDir = ""
	}

	a.processor = pipeline.NewProcessor(logger, source, enhancer, a.engines,
		pipeline.NewFileWriter(outDir, logger),
		pipeline.Options{
			Preprocess: cfg.AddPreProcessing,
			Engine: ocr.EngineConfig{
				Language:    cfg.OCR.Language,
				Mode:        cfg.OCR.Mode(),
				PageSegMode: cfg.OCR.PageSegMode,
				TessdataDir: cfg.OCR.TessdataDir,
			},
			PageTimeout:   cfg.OCR.PageTimeout,
			NormalizeText: cfg.OCR.NormalizeText,
		},
		pipeline.WithReporter(a.reporter),
		pipeline.WithRecorder(a.metrics),
	)
	return a, nil
}

func newEngineFactory(cfg *common.Config, runner command.Runner, logger *slog.Logger) (ocr.EngineFactory, error) {
	switch cfg.OCR.Backend {
	case common.BackendGosseract:
		f, err := tesseract.NewFactory(logger)
		if err != nil {
			return nil, common.EngineError("gosseract backend", err)
		}
		return f, nil
	default:
		return ocr.NewCLIFactory(cfg.OCR.Tesseract, runner, logger), nil
	}
}

// StartMetrics serves /metrics when metrics.addr is set.
func (a *App) StartMetrics(ctx context.Context) (net.Addr, error) {
	if a.cfg.Metrics.Addr == "" {
		return nil, nil
	}
	addr, _, err := metrics.Serve(ctx, a.cfg.Metrics.Addr, a.metrics.Handler(), a.logger)
	return addr, err
}

// RunDirectory processes every PDF under PathToFiles.
func (a *App) RunDirectory(ctx context.Context) (Run, error) {
	paths, stats, err := ingest.ListPDFs(a.cfg.PathToFiles, ingest.Options{
		Recursive:  a.cfg.Recursive,
		SkipHidden: true,
		Logger:     a.logger,
	})
	if err != nil {
		return Run{}, err
	}
	a.logger.Info("input listed", "dir", a.cfg.PathToFiles, "pdfs", len(paths), "scanned", stats.Scanned, "failed", stats.Failed)
	return a.RunFiles(ctx, paths)
}

// RunFiles processes paths on the worker pool, then prints the summary and
// writes the report. The returned error covers the report only; document
// and page failures are in the Run.
func (a *App) RunFiles(ctx context.Context, paths []string) (Run, error) {
	run := Run{ID: uuid.NewString()}
	ctx = common.WithRunID(ctx, run.ID)
	start := time.Now()
	a.logger.Info("run started", "run_id", run.ID, "documents", len(paths), "workers", a.cfg.Workers)

	var mu sync.Mutex
	q := a.newQueue(ctx, func(_ async.Job, res pipeline.DocumentResult) {
		mu.Lock()
		defer mu.Unlock()
		run.Results = append(run.Results, res)
	})
	for _, p := range paths {
		if err := q.Enqueue(ctx, async.NewJob(p)); err != nil {
			a.logger.Warn("stopped enqueueing", "error", err)
			break
		}
	}
	// workers see ctx canceled and mark the remaining pages, so wait for all of them
	_ = q.Shutdown(context.Background())

	sort.Slice(run.Results, func(i, j int) bool { return run.Results[i].Path < run.Results[j].Path })
	run.Summary = pipeline.Summarize(run.Results)

	a.logger.Info("run finished",
		"run_id", run.ID,
		"documents", run.Summary.Documents,
		"pages", run.Summary.Pages,
		"failed", run.Summary.Failed(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return run, a.finish(run)
}

// Watch processes PDFs as they appear under PathToFiles until ctx is done.
func (a *App) Watch(ctx context.Context, debounce time.Duration) (Run, error) {
	run := Run{ID: uuid.NewString()}
	ctx = common.WithRunID(ctx, run.ID)

	events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
		Root:        a.cfg.PathToFiles,
		Recursive:   a.cfg.Recursive,
		SkipHidden:  true,
		InitialScan: true,
		Debounce:    debounce,
		Logger:      a.logger,
	})
	if err != nil {
		return run, err
	}
	a.logger.Info("watching", "run_id", run.ID, "dir", a.cfg.PathToFiles)

	var mu sync.Mutex
	q := a.newQueue(ctx, func(_ async.Job, res pipeline.DocumentResult) {
		mu.Lock()
		defer mu.Unlock()
		run.Results = append(run.Results, res)
	})

loop:
	for {
		select {
		case p, ok := <-events:
			if !ok {
				break loop
			}
			if err := q.Enqueue(ctx, async.NewJob(p)); err != nil {
				break loop
			}
		case err, ok := <-errs:
			if ok {
				a.logger.Warn("watch error", "error", err)
			}
		case <-ctx.Done():
			break loop
		}
	}
	_ = q.Shutdown(context.Background())

	run.Summary = pipeline.Summarize(run.Results)
	return run, a.finish(run)
}

func (a *App) newQueue(ctx context.Context, onResult async.ResultFunc) *async.DocumentQueue {
	return async.NewDocumentQueue(ctx, a.processor, a.logger,
		async.WithWorkers(a.cfg.Workers),
		async.WithQueueSize(a.cfg.Workers*2),
		async.WithDocumentTimeout(a.cfg.DocumentTimeout),
		async.WithResultFunc(onResult),
	)
}

func (a *App) finish(run Run) error {
	a.reporter.Summary(run.ID, run.Summary)
	if a.cfg.Report.XLSXPath == "" {
		return nil
	}
	data, err := a.exporter.RunReportXLSX(run.ID, run.Results)
	if err != nil {
		return err
	}
	if err := export.WriteFile(a.cfg.Report.XLSXPath, data); err != nil {
		return err
	}
	a.logger.Info("report written", "path", a.cfg.Report.XLSXPath)
	return nil
}
