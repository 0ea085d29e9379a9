package constants

// RedFlagType groups risk patterns.
type RedFlagType string

const (
	RiskContractual RedFlagType = "contractual"
	RiskFeasibility RedFlagType = "feasibility"
	RiskProcess     RedFlagType = "process"
)

// Severity of a red flag.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)
