package constants

// RunStatus is the canonical status for rows in extraction_run.
type RunStatus string

// Stable values (store these exact strings in DB).
const (
	RunStatusRunning   RunStatus = "RUNNING"   // in progress
	RunStatusSucceeded RunStatus = "SUCCEEDED" // record produced
	RunStatusFailed    RunStatus = "FAILED"    // terminal failure
)

// ExtractionMethod names the extractor that produced the fields of a record.
type ExtractionMethod string

const (
	MethodModel         ExtractionMethod = "model"
	MethodDeterministic ExtractionMethod = "deterministic"
)
