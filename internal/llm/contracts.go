package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrEmptyReply is returned when the model answers without any content.
var ErrEmptyReply = errors.New("model returned no content")

// Model is the external language model seen as an opaque function:
// extraction instructions and source text in, JSON-shaped text out.
type Model interface {
	Complete(ctx context.Context, instructions, sourceText string) (string, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, instructions, sourceText string) (string, error)

func (f ModelFunc) Complete(ctx context.Context, instructions, sourceText string) (string, error) {
	return f(ctx, instructions, sourceText)
}

// StatusError is a non-2xx reply from a model endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status: %d", e.StatusCode)
}

// Retryable reports whether the status is worth another attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// ReplyDeliverable is one deliverable as the model reports it.
type ReplyDeliverable struct {
	Item   string `json:"item"`
	Source string `json:"source"`
}

// ReplyDate is one date as the model reports it; Date is re-parsed downstream.
type ReplyDate struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Type  string `json:"type,omitempty"`
}

// ReplySubmission mirrors SubmissionRequirements on the model side.
type ReplySubmission struct {
	Method            string   `json:"method"`
	Email             string   `json:"email,omitempty"`
	PhysicalAddress   string   `json:"physicalAddress,omitempty"`
	Format            string   `json:"format"`
	Copies            *int     `json:"copies,omitempty"`
	OtherRequirements []string `json:"otherRequirements"`
}

// Reply is the defaulted, schema-valid shape we decode model output into.
type Reply struct {
	ClientName             string             `json:"clientName"`
	ClientNameOriginal     string             `json:"clientNameOriginal"`
	ProjectName            string             `json:"projectName"`
	ProjectNameOriginal    string             `json:"projectNameOriginal"`
	ProjectDescription     string             `json:"projectDescription"`
	ScopeOfWork            string             `json:"scopeOfWork"`
	EvaluationCriteria     string             `json:"evaluationCriteria"`
	RequiredDeliverables   []ReplyDeliverable `json:"requiredDeliverables"`
	ImportantDates         []ReplyDate        `json:"importantDates"`
	SubmissionRequirements ReplySubmission    `json:"submissionRequirements"`
	Confidence             map[string]float64 `json:"confidence"`
}
