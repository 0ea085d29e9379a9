package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// RunRecorder journals pipeline invocations. The pipeline calls it but does not
// own it; recorder errors are logged and never fail a run.
type RunRecorder interface {
	Start(ctx context.Context, run *entity.ExtractionRun) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, rec *entity.ExtractionRecord) error
	FinishFailure(ctx context.Context, id uuid.UUID, code, message string) error
}
