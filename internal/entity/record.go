package entity

import (
	"encoding/json"
	"maps"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

// SchemaVersion tags serialized records so consumers can detect shape changes.
const SchemaVersion = "rfp-extraction/1.0"

// Deliverable is a flat deliverable entry.
type Deliverable struct {
	Item   string                      `json:"item"`
	Source constants.DeliverableSource `json:"source"`
}

// DeliverableItem is a grouped deliverable entry.
type DeliverableItem struct {
	Title       string                      `json:"title"`
	Description string                      `json:"description"`
	Source      constants.DeliverableSource `json:"source"`
}

// DeliverableRequirements groups deliverables by category.
type DeliverableRequirements struct {
	Technical         []DeliverableItem `json:"technical"`
	Commercial        []DeliverableItem `json:"commercial"`
	StrategicCreative []DeliverableItem `json:"strategicCreative"`
}

// Items returns the slice for a category.
func (r DeliverableRequirements) Items(cat constants.DeliverableCategory) []DeliverableItem {
	switch cat {
	case constants.Commercial:
		return r.Commercial
	case constants.StrategicCreative:
		return r.StrategicCreative
	default:
		return r.Technical
	}
}

type ImportantDate struct {
	Title      string             `json:"title"`
	Date       string             `json:"date"` // YYYY-MM-DD
	Type       constants.DateType `json:"type"`
	IsCritical bool               `json:"isCritical"`
}

// IsSentinel reports whether d is the placeholder used when no date was found.
func (d ImportantDate) IsSentinel() bool {
	return d.Date == constants.SentinelDate && d.Title == constants.SentinelDateTitle
}

// SentinelDate returns the documented placeholder entry.
func SentinelDate() ImportantDate {
	return ImportantDate{
		Title:      constants.SentinelDateTitle,
		Date:       constants.SentinelDate,
		Type:       constants.DateOther,
		IsCritical: false,
	}
}

type SubmissionRequirements struct {
	Method            string   `json:"method"`
	Email             string   `json:"email,omitempty"`
	PhysicalAddress   string   `json:"physicalAddress,omitempty"`
	Format            string   `json:"format"`
	Copies            *int     `json:"copies,omitempty"`
	OtherRequirements []string `json:"otherRequirements"`
}

type RedFlag struct {
	Type           constants.RedFlagType `json:"type"`
	Severity       constants.Severity    `json:"severity"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	SourceText     string                `json:"sourceText"`
	Recommendation string                `json:"recommendation"`
}

type MissingInformation struct {
	Field             string `json:"field"`
	SuggestedQuestion string `json:"suggestedQuestion"`
}

// Warning is a non-fatal finding attached to a record.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Warning codes.
const (
	WarnFallbackUsed         = "fallback_used"
	WarnModelUnavailable     = "model_unavailable"
	WarnLowGrounding         = "low_grounding"
	WarnCriteriaWeightSum    = "criteria_weight_sum"
	WarnDateConflict         = "date_conflict"
	WarnProvenanceDowngraded = "provenance_downgraded"
	WarnExcerptFallback      = "excerpt_fallback"
	WarnScopeUnstructured    = "scope_unstructured"
	WarnInputTruncated       = "input_truncated"
)

type Conflict struct {
	Field      string   `json:"field"`
	Candidates []string `json:"candidates"`
	Resolution string   `json:"resolution"`
}

type Evidence struct {
	Field   string `json:"field"`
	Page    int    `json:"page"`
	Excerpt string `json:"excerpt"`
}

// ConfidenceScores holds per-field scores plus the aggregated overall score.
// It serializes as one flat object: {"clientName": 0.8, ..., "overall": 0.74}.
type ConfidenceScores struct {
	Fields  map[string]float64
	Overall float64
}

func (c ConfidenceScores) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(c.Fields)+1)
	maps.Copy(m, c.Fields)
	m["overall"] = c.Overall
	return json.Marshal(m)
}

func (c *ConfidenceScores) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	c.Overall = m["overall"]
	delete(m, "overall")
	c.Fields = m
	return nil
}

// ExtractionRecord is the pipeline's output. It is created once per invocation and
// not mutated after the orchestrator returns it.
type ExtractionRecord struct {
	SchemaVersion           string                     `json:"schemaVersion"`
	ClientName              string                     `json:"clientName"`
	ClientNameOriginal      string                     `json:"clientNameOriginal,omitempty"`
	ProjectName             string                     `json:"projectName"`
	ProjectNameOriginal     string                     `json:"projectNameOriginal,omitempty"`
	ProjectDescription      string                     `json:"projectDescription"`
	ScopeOfWork             string                     `json:"scopeOfWork"`
	EvaluationCriteria      string                     `json:"evaluationCriteria"`
	RequiredDeliverables    []Deliverable              `json:"requiredDeliverables"`
	DeliverableRequirements *DeliverableRequirements   `json:"deliverableRequirements,omitempty"`
	ImportantDates          []ImportantDate            `json:"importantDates"`
	SubmissionRequirements  SubmissionRequirements     `json:"submissionRequirements"`
	RedFlags                []RedFlag                  `json:"redFlags"`
	MissingInformation      []MissingInformation       `json:"missingInformation"`
	ConfidenceScores        ConfidenceScores           `json:"confidenceScores"`
	CompletenessScore       float64                    `json:"completenessScore"`
	Warnings                []Warning                  `json:"warnings"`
	Conflicts               []Conflict                 `json:"conflicts,omitempty"`
	Evidence                []Evidence                 `json:"evidence"`
	ExtractionMethod        constants.ExtractionMethod `json:"extractionMethod"`
}

// HasWarning reports whether a warning with code is present.
func (r *ExtractionRecord) HasWarning(code string) bool {
	for _, w := range r.Warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}
