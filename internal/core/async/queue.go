// Package async runs documents through the pipeline on a fixed pool of workers.
package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/scanocr/internal/common"
	"github.com/joseph-ayodele/scanocr/internal/core/pipeline"
)

// Job is one PDF waiting to be processed.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
}

// NewJob stamps a job for path.
func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now()}
}

// DocumentProcessor is satisfied by *pipeline.Processor.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, doc pipeline.Document) pipeline.DocumentResult
	FailDocument(doc pipeline.Document, err error) pipeline.DocumentResult
}

// ResultFunc receives each finished document. It may be called from several
// workers at once.
type ResultFunc func(job Job, res pipeline.DocumentResult)

type DocumentQueue struct {
	proc     DocumentProcessor
	logger   *slog.Logger
	onResult ResultFunc
	workers  int
	timeout  time.Duration
	load     func(path string) (pipeline.Document, error)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*DocumentQueue)

func WithWorkers(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithDocumentTimeout(d time.Duration) Option {
	return func(q *DocumentQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func WithResultFunc(fn ResultFunc) Option {
	return func(q *DocumentQueue) {
		q.onResult = fn
	}
}

// WithLoader replaces pipeline.LoadDocument.
func WithLoader(fn func(path string) (pipeline.Document, error)) Option {
	return func(q *DocumentQueue) {
		if fn != nil {
			q.load = fn
		}
	}
}

// NewDocumentQueue starts the workers. Job contexts derive from ctx, so
// canceling it cancels in-flight documents.
func NewDocumentQueue(ctx context.Context, proc DocumentProcessor, logger *slog.Logger, opts ...Option) *DocumentQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &DocumentQueue{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 30 * time.Minute,
		load:    pipeline.LoadDocument,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start(ctx)
	return q
}

func (q *DocumentQueue) start(ctx context.Context) {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					res := q.run(ctx, workerID, job)
					if q.onResult != nil {
						q.onResult(job, res)
					}
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *DocumentQueue) run(ctx context.Context, workerID int, job Job) pipeline.DocumentResult {
	logger := q.logger.With("worker_id", workerID, "job_id", job.ID, "path", job.Path)

	doc, err := q.load(job.Path)
	if err != nil {
		logger.Warn("load failed", "error", err)
		doc.Path = job.Path
		return q.proc.FailDocument(doc, err)
	}

	jctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()
	res := q.proc.ProcessDocument(jctx, doc)

	if res.Failed() {
		logger.Warn("document finished with failures", "status", res.Status, "error", res.Err, "duration_ms", res.Duration.Milliseconds())
	} else {
		logger.Info("document processed", "pages", len(res.Pages), "duration_ms", res.Duration.Milliseconds())
	}
	return res
}

// Enqueue blocks while the queue is full. It fails once Shutdown has begun.
func (q *DocumentQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "path", job.Path)
		return common.NewAppError(common.CodeCanceled, "queue is shutting down", common.ErrCanceled)
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued document", "job_id", job.ID, "path", job.Path)
		return nil
	default:
	}

	q.logger.Debug("queue full, applying backpressure", "path", job.Path)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return common.NewAppError(common.CodeCanceled, "enqueue "+job.Path, ctx.Err())
	}
}

// Shutdown stops accepting jobs and waits for the queue to drain or ctx to end.
func (q *DocumentQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
		return ctx.Err()
	case <-done:
		q.logger.Debug("queue drained, shutdown complete")
		return nil
	}
}
