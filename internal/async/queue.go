package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document handed to the pipeline.
type Job struct {
	Index       int    // position in the submitted batch
	Name        string // source path or caller label
	Document    entity.ParsedDocument
	SubmittedAt time.Time
	TraceID     string // becomes the run's req_id when set
}

// Result is the outcome of one Job. Exactly one of Record and Err is set.
type Result struct {
	Job     Job
	Record  *entity.ExtractionRecord
	Err     error
	Elapsed time.Duration
}

// Processor is the pipeline as seen by the queue.
type Processor interface {
	Run(ctx context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error)
}

type ProcessorFunc func(ctx context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error)

func (f ProcessorFunc) Run(ctx context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
	return f(ctx, doc)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Results() <-chan Result
	Shutdown(ctx context.Context)
}

var _ Queue = (*ProcessorQueue)(nil)
