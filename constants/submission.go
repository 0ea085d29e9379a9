package constants

// Known submission methods.
const (
	SubmissionEmail    = "email"
	SubmissionPortal   = "portal"
	SubmissionPhysical = "physical"
)

// IsKnownSubmissionMethod reports whether m is one of the canonical methods.
func IsKnownSubmissionMethod(m string) bool {
	switch m {
	case SubmissionEmail, SubmissionPortal, SubmissionPhysical:
		return true
	}
	return false
}
