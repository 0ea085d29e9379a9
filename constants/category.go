package constants

import (
	"strings"
)

// DeliverableCategory is the grouping used for DeliverableRequirements.
type DeliverableCategory string

const (
	Technical         DeliverableCategory = "technical"
	Commercial        DeliverableCategory = "commercial"
	StrategicCreative DeliverableCategory = "strategicCreative"
)

var allCategories = []DeliverableCategory{
	Technical,
	Commercial,
	StrategicCreative,
}

// AllCategories returns the categories in their canonical order.
func AllCategories() []DeliverableCategory {
	out := make([]DeliverableCategory, len(allCategories))
	copy(out, allCategories)
	return out
}

// DeliverableSource records whether a deliverable was stated in the document or derived.
type DeliverableSource string

const (
	Verbatim DeliverableSource = "verbatim"
	Inferred DeliverableSource = "inferred"
)

// ParseSource defaults unknown discriminators to Verbatim.
func ParseSource(s string) DeliverableSource {
	if strings.EqualFold(strings.TrimSpace(s), string(Inferred)) {
		return Inferred
	}
	return Verbatim
}
