// Package completeness checks an extraction for the information a bidder needs
// and turns every gap into a clarifying question.
package completeness

import (
	"math"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// DefaultPenalty is subtracted from the score once per gap.
const DefaultPenalty = 0.12

// Input is what the auditor looks at.
type Input struct {
	RawText    string
	Dates      []entity.ImportantDate
	Submission entity.SubmissionRequirements
}

// Check is one independent completeness rule.
type Check struct {
	Field    string
	Question string
	Present  func(in Input) bool
}

// Auditor runs a fixed list of checks.
type Auditor struct {
	checks  []Check
	penalty float64
}

var (
	reBudget = regexp.MustCompile(`(?i)\b(?:budget|cost|price|pricing|fees?|sar|usd|aed|eur)\b|[$€£]\s*\d|\d\s*(?:k|m)\b|الميزانية|التكلفة|ريال`)
	reTerms  = regexp.MustCompile(`(?i)\b(?:contract|agreement|liabilit(?:y|ies)|indemnif\w*|warrant(?:y|ies)|terms\s+and\s+conditions|governing\s+law|termination|penalt(?:y|ies))\b|العقد|الشروط\s+والأحكام|المسؤولية`)
)

// DefaultChecks covers budget, dates, submission method and format, and contract terms.
func DefaultChecks() []Check {
	return []Check{
		{
			Field:    "budget",
			Question: "What is the budget or expected price range for this project?",
			Present:  func(in Input) bool { return reBudget.MatchString(in.RawText) },
		},
		{
			Field:    entity.FieldImportantDates,
			Question: "What is the proposal submission deadline and the project timeline?",
			Present: func(in Input) bool {
				for _, d := range in.Dates {
					if !d.IsSentinel() {
						return true
					}
				}
				return false
			},
		},
		{
			Field:    "submissionRequirements.method",
			Question: "How should proposals be submitted (email, portal or physical delivery)?",
			Present: func(in Input) bool {
				return constants.IsKnownSubmissionMethod(strings.ToLower(in.Submission.Method))
			},
		},
		{
			Field:    "submissionRequirements.format",
			Question: "What file format or document format is required for the proposal?",
			Present:  func(in Input) bool { return strings.TrimSpace(in.Submission.Format) != "" },
		},
		{
			Field:    "contractTerms",
			Question: "What are the contract terms, including liability, payment and termination conditions?",
			Present:  func(in Input) bool { return reTerms.MatchString(in.RawText) },
		},
	}
}

func New(checks []Check, penalty float64) *Auditor {
	if penalty <= 0 {
		penalty = DefaultPenalty
	}
	return &Auditor{checks: checks, penalty: penalty}
}

// Default is New(DefaultChecks(), penalty).
func Default(penalty float64) *Auditor {
	return New(DefaultChecks(), penalty)
}

// Result of an audit; Missing is never nil.
type Result struct {
	Missing []entity.MissingInformation
	Score   float64
}

// Audit runs every check. Score is max(0, 1 - penalty*gaps).
func (a *Auditor) Audit(in Input) Result {
	res := Result{Missing: []entity.MissingInformation{}}
	for _, c := range a.checks {
		if c.Present(in) {
			continue
		}
		res.Missing = append(res.Missing, entity.MissingInformation{Field: c.Field, SuggestedQuestion: c.Question})
	}
	res.Score = math.Max(0, 1-a.penalty*float64(len(res.Missing)))
	return res
}
