package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/scanocr/constants"
	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/ocr"
	"github.com/joseph-ayodele/scanocr/internal/core/preprocess"
	"github.com/joseph-ayodele/scanocr/internal/core/quality"
	"github.com/joseph-ayodele/scanocr/internal/core/raster"
)

// Processor coordinates decode, enhance, recognize, classify and persist.
// It is safe for concurrent use as long as its collaborators are.
type Processor struct {
	logger   *slog.Logger
	source   ImageSource
	enhancer Enhancer
	engines  ocr.EngineFactory
	writer   PageWriter
	reporter Reporter
	recorder Recorder
	opts     Options
}

type Option func(*Processor)

func WithReporter(r Reporter) Option {
	return func(p *Processor) {
		if r != nil {
			p.reporter = r
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(p *Processor) {
		if r != nil {
			p.recorder = r
		}
	}
}

// NewProcessor wires the stages. enhancer may be nil when Preprocess is off.
func NewProcessor(
	logger *slog.Logger,
	source ImageSource,
	enhancer Enhancer,
	engines ocr.EngineFactory,
	writer PageWriter,
	opts Options,
	options ...Option,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		logger:   logger,
		source:   source,
		enhancer: enhancer,
		engines:  engines,
		writer:   writer,
		reporter: nopReporter{},
		recorder: nopRecorder{},
		opts:     opts,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// ProcessDocument runs every page of doc in page order. Page failures are
// recorded and never stop the document; a decode failure fails the document
// with no pages. Every raster and engine instance is released before it returns.
func (p *Processor) ProcessDocument(ctx context.Context, doc Document) (res DocumentResult) {
	start := time.Now()
	ctx = common.WithDocument(ctx, doc.Name)
	logger := p.logger.With("doc", doc.Name, "run_id", common.RunIDFromContext(ctx))

	res = DocumentResult{Name: doc.Name, Path: doc.Path, Status: constants.DocumentDone}
	p.recorder.DocumentStarted()
	p.reporter.DocumentStarted(doc)
	defer func() {
		res.Duration = time.Since(start)
		p.recorder.DocumentFinished(res)
		p.reporter.DocumentFinished(res)
	}()

	decodeStart := time.Now()
	images, err := p.source.Decode(ctx, doc.Data)
	p.recorder.StageObserved(StageDecode, time.Since(decodeStart))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = common.NewAppError(common.CodeCanceled, "document canceled", ctxErr)
		}
		logger.Error("processor.decode.failed", "error", err)
		res.Status = constants.DocumentFailed
		res.Err = err
		return res
	}
	defer raster.ReleaseAll(images)

	total := len(images)
	logger.Debug("document decoded", "pages", total, "duration_ms", time.Since(decodeStart).Milliseconds())

	res.Pages = make([]PageResult, 0, total)
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			for _, rest := range images[i:] {
				pr := p.canceledPage(rest, total, err)
				res.Pages = append(res.Pages, pr)
				p.pageFinished(doc, pr)
			}
			logger.Warn("document canceled", "remaining_pages", total-i, "error", err)
			break
		}

		pr := p.processPage(ctx, logger, doc, img, total)
		res.Pages = append(res.Pages, pr)
		p.pageFinished(doc, pr)
	}

	logger.Debug("document done", "pages", total, "duration_ms", time.Since(start).Milliseconds())
	return res
}

// FailDocument records a document that never reached decode, such as a file
// that could not be read. Reporter and recorder see it like any other
// failed document.
func (p *Processor) FailDocument(doc Document, err error) DocumentResult {
	p.recorder.DocumentStarted()
	p.reporter.DocumentStarted(doc)
	res := DocumentResult{Name: doc.Name, Path: doc.Path, Status: constants.DocumentFailed, Err: err}
	p.logger.Error("processor.load.failed", "doc", doc.Name, "path", doc.Path, "error", err)
	p.recorder.DocumentFinished(res)
	p.reporter.DocumentFinished(res)
	return res
}

func (p *Processor) processPage(ctx context.Context, logger *slog.Logger, doc Document, img *raster.Image, total int) (pr PageResult) {
	start := time.Now()
	pr = PageResult{Page: img.Page, Total: total}
	logger = logger.With("page", img.Page)
	defer func() {
		img.Release()
		pr.Duration = time.Since(start)
	}()

	data := img.Bytes()
	if p.opts.Preprocess && p.enhancer != nil {
		t := time.Now()
		out := p.enhancer.Enhance(img)
		p.recorder.StageObserved(StagePreprocess, time.Since(t))
		if out.Kind == preprocess.Fallback {
			pr.PreprocessErr = out.Reason
			logger.Warn("preprocessing skipped, using original image", "error", out.Reason)
		} else {
			pr.Enhanced = true
		}
		data = out.Data
	}

	ocrCtx := ctx
	if p.opts.PageTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, p.opts.PageTimeout)
		defer cancel()
	}

	t := time.Now()
	rec, err := ocr.Recognize(ocrCtx, p.engines, p.opts.Engine, data)
	p.recorder.StageObserved(StageRecognize, time.Since(t))
	if err != nil {
		if ctx.Err() != nil {
			pr.Status = constants.PageCanceled
			pr.Err = common.NewAppError(common.CodeCanceled, "page canceled", ctx.Err())
			return pr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("processor.recognize.timeout", "timeout", p.opts.PageTimeout)
		} else {
			logger.Error("processor.recognize.failed", "error", err)
		}
		pr.Status = constants.PageEngineFailed
		pr.Err = err
		return pr
	}

	text := rec.Text
	if p.opts.NormalizeText {
		text = ocr.NormalizeText(text)
	}
	pr.Confidence = rec.MeanConfidence
	pr.Tier = quality.Classify(rec.MeanConfidence)

	t = time.Now()
	path, err := p.writer.WritePage(ctx, doc, img.Page, text)
	p.recorder.StageObserved(StagePersist, time.Since(t))
	if err != nil {
		logger.Error("processor.persist.failed", "error", err)
		pr.Status = constants.PagePersistFailed
		pr.Err = err
		return pr
	}

	pr.Status = constants.PageWritten
	pr.OutputPath = path
	logger.Debug("page done",
		"confidence", rec.MeanConfidence,
		"tier", pr.Tier,
		"words", rec.Words,
		"enhanced", pr.Enhanced,
	)
	return pr
}

func (p *Processor) canceledPage(img *raster.Image, total int, cause error) PageResult {
	img.Release()
	return PageResult{
		Page:   img.Page,
		Total:  total,
		Status: constants.PageCanceled,
		Err:    common.NewAppError(common.CodeCanceled, "document canceled before page", cause),
	}
}

func (p *Processor) pageFinished(doc Document, pr PageResult) {
	p.recorder.PageFinished(pr)
	p.reporter.PageFinished(doc, pr)
}
