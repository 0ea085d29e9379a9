package async

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

func jobsFor(texts ...string) []Job {
	jobs := make([]Job, len(texts))
	for i, txt := range texts {
		jobs[i] = Job{Index: i, Name: fmt.Sprintf("doc-%d", i), Document: entity.ParsedDocument{RawText: txt}}
	}
	return jobs
}

func TestRunBatch_OrderedResults(t *testing.T) {
	proc := ProcessorFunc(func(_ context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		// Later documents finish first.
		time.Sleep(time.Duration(10-len(doc.RawText)) * time.Millisecond)
		return &entity.ExtractionRecord{ClientName: doc.RawText}, nil
	})

	res := RunBatch(context.Background(), proc, jobsFor("a", "bb", "ccc", "dddd"), nil, WithWorkers(4))
	require.Len(t, res, 4)
	for i, r := range res {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Job.Index)
		assert.Equal(t, r.Job.Document.RawText, r.Record.ClientName)
	}
}

func TestRunBatch_FailuresAreIsolated(t *testing.T) {
	boom := errors.New("boom")
	proc := ProcessorFunc(func(_ context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		if doc.RawText == "bad" {
			return &entity.ExtractionRecord{}, boom
		}
		return &entity.ExtractionRecord{ClientName: doc.RawText}, nil
	})

	res := RunBatch(context.Background(), proc, jobsFor("ok", "bad", "fine"), nil, WithWorkers(2))
	require.Len(t, res, 3)
	assert.NoError(t, res[0].Err)
	assert.ErrorIs(t, res[1].Err, boom)
	assert.Nil(t, res[1].Record)
	assert.NoError(t, res[2].Err)
}

func TestRunBatch_PerDocumentTimeout(t *testing.T) {
	proc := ProcessorFunc(func(ctx context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		if doc.RawText == "slow" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return &entity.ExtractionRecord{}, nil
	})

	res := RunBatch(context.Background(), proc, jobsFor("slow", "fast"), nil,
		WithWorkers(2), WithProcessTimeout(20*time.Millisecond))
	require.Len(t, res, 2)
	assert.ErrorIs(t, res[0].Err, context.DeadlineExceeded)
	assert.NoError(t, res[1].Err)
}

func TestRunBatch_BoundedWorkers(t *testing.T) {
	var inFlight, peak int32
	proc := ProcessorFunc(func(context.Context, entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &entity.ExtractionRecord{}, nil
	})

	res := RunBatch(context.Background(), proc, jobsFor("a", "b", "c", "d", "e", "f", "g", "h"), nil, WithWorkers(2))
	assert.Len(t, res, 8)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestProcessorQueue_TraceIDBecomesRequestID(t *testing.T) {
	seen := make(chan string, 1)
	proc := ProcessorFunc(func(ctx context.Context, _ entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		seen <- common.RequestIDFromContext(ctx)
		return &entity.ExtractionRecord{}, nil
	})

	q := NewProcessorQueue(context.Background(), proc, nil, WithWorkers(1))
	require.NoError(t, q.Enqueue(context.Background(), Job{Name: "x", TraceID: "trace-42"}))
	q.Shutdown(context.Background())

	assert.Equal(t, "trace-42", <-seen)
	r, ok := <-q.Results()
	require.True(t, ok)
	assert.NoError(t, r.Err)
	assert.False(t, r.Job.SubmittedAt.IsZero())
	_, ok = <-q.Results()
	assert.False(t, ok)
}

func TestProcessorQueue_EnqueueAfterShutdown(t *testing.T) {
	var q Queue = NewProcessorQueue(context.Background(), ProcessorFunc(func(context.Context, entity.ParsedDocument) (*entity.ExtractionRecord, error) {
		return &entity.ExtractionRecord{}, nil
	}), nil)
	q.Shutdown(context.Background())
	assert.ErrorIs(t, q.Enqueue(context.Background(), Job{Name: "late"}), ErrQueueClosed)
}
