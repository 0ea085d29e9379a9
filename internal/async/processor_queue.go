package async

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/joseph-ayodele/rfp-extractor/internal/common"
)

// ProcessorQueue runs jobs on a fixed pool of workers. Every job gets its own
// timeout derived from the queue's base context; one job failing or timing out
// never affects the others.
type ProcessorQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration
	base    context.Context

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithWorkers(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan Result, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// NewProcessorQueue starts the workers. Cancelling ctx cancels in-flight jobs.
func NewProcessorQueue(ctx context.Context, proc Processor, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		base:    ctx,
		ch:      make(chan Job, 256),
		results: make(chan Result, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.results <- q.process(workerID, job)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
		go func() {
			q.wg.Wait()
			close(q.results)
		}()
	})
}

func (q *ProcessorQueue) process(workerID int, job Job) Result {
	ctx, cancel := context.WithTimeout(q.base, q.timeout)
	defer cancel()
	if job.TraceID != "" {
		ctx = common.WithRequestID(ctx, job.TraceID)
	}

	start := time.Now()
	rec, err := q.proc.Run(ctx, job.Document)
	res := Result{Job: job, Record: rec, Err: err, Elapsed: time.Since(start)}
	if err != nil {
		res.Record = nil
		q.logger.Error("processing failed", "worker_id", workerID, "document", job.Name, "error", err)
	} else {
		q.logger.Info("processed document successfully", "worker_id", workerID, "document", job.Name,
			"elapsed_ms", res.Elapsed.Milliseconds())
	}
	return res
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document", job.Name)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case q.ch <- job:
		q.logger.Debug("queued document for processing", "document", job.Name)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "document", job.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results is closed once Shutdown has been called and every queued job finished.
func (q *ProcessorQueue) Results() <-chan Result {
	return q.results
}

func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}

// RunBatch processes jobs with a fresh queue and returns results ordered by Job.Index.
func RunBatch(ctx context.Context, proc Processor, jobs []Job, logger *slog.Logger, opts ...Option) []Result {
	q := NewProcessorQueue(ctx, proc, logger, opts...)

	go func() {
		defer q.Shutdown(context.Background())
		for i, job := range jobs {
			if err := q.Enqueue(ctx, job); err != nil {
				// Report the jobs that never reached a worker.
				for _, skipped := range jobs[i:] {
					q.results <- Result{Job: skipped, Err: err}
				}
				return
			}
		}
	}()

	out := make([]Result, 0, len(jobs))
	for r := range q.Results() {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Job.Index < out[j].Job.Index })
	return out
}
