// Package extract turns a parsed RFP into the raw extraction shape, either via
// the external language model or via deterministic patterns.
package extract

import (
	"context"
	"fmt"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// FieldExtractor is the model-assisted path the orchestrator tries first.
// A non-nil error is either the caller's context error or a *Failure.
type FieldExtractor interface {
	Extract(ctx context.Context, doc entity.ParsedDocument) (Output, error)
}

// Output is the shape both extractors produce.
type Output struct {
	ClientName          string
	ClientNameOriginal  string
	ProjectName         string
	ProjectNameOriginal string
	ProjectDescription  string
	ScopeOfWork         string
	EvaluationCriteria  string
	Deliverables        []entity.Deliverable
	Dates               []entity.ImportantDate
	Submission          entity.SubmissionRequirements
	// Confidence is keyed by entity field name.
	Confidence map[string]float64
	Method     constants.ExtractionMethod
	Evidence   []EvidenceSpan
	Warnings   []entity.Warning
}

// EvidenceSpan points a field at a byte offset of the raw text; Offset is -1 when unknown.
type EvidenceSpan struct {
	Field   string
	Offset  int
	Excerpt string
}

// FailureKind classifies why the model path produced nothing usable.
type FailureKind string

const (
	FailTransport FailureKind = "transport"
	FailTimeout   FailureKind = "timeout"
	FailStatus    FailureKind = "status"
	FailDecode    FailureKind = "decode"
	FailSchema    FailureKind = "schema"
	FailEmpty     FailureKind = "empty"
)

// Failure is a definitive model-path failure. It never carries partial data.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("model extraction failed (%s): %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func fail(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}
