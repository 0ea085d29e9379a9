package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionRun is one journaled pipeline invocation.
type ExtractionRun struct {
	ID           uuid.UUID       `json:"id"`
	RequestID    string          `json:"request_id"`
	DocumentHash string          `json:"document_hash"`
	Language     string          `json:"language"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	Status       string          `json:"status"`
	Method       *string         `json:"method,omitempty"`
	ErrorCode    *string         `json:"error_code,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	Confidence   *float64        `json:"confidence,omitempty"`
	WarningCount int             `json:"warning_count"`
	RecordJSON   json.RawMessage `json:"record_json,omitempty"`
}
