package constants

// DateType classifies an important date.
type DateType string

const (
	DateQADeadline         DateType = "qa_deadline"
	DateSubmissionDeadline DateType = "submission_deadline"
	DatePresentation       DateType = "presentation"
	DateOther              DateType = "other"
)

// IsCritical reports whether dates of this type are flagged critical.
func (t DateType) IsCritical() bool {
	return t == DateSubmissionDeadline || t == DatePresentation
}

// ParseDateType defaults unknown values to DateOther.
func ParseDateType(s string) DateType {
	switch DateType(s) {
	case DateQADeadline, DateSubmissionDeadline, DatePresentation:
		return DateType(s)
	}
	return DateOther
}

// Sentinel date used when nothing could be extracted; importantDates is never empty.
const (
	SentinelDateTitle = "Date not explicitly extracted"
	SentinelDate      = "2099-12-31"
)
