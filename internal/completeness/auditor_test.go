package completeness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

func TestAudit_Complete(t *testing.T) {
	in := Input{
		RawText: "The budget is SAR 500,000. The contract includes a liability cap.",
		Dates:   []entity.ImportantDate{{Title: "Submission", Date: "2026-03-15", Type: "submission_deadline"}},
		Submission: entity.SubmissionRequirements{
			Method: "Email",
			Format: "PDF",
		},
	}
	res := Default(0).Audit(in)
	assert.Empty(t, res.Missing)
	assert.Equal(t, 1.0, res.Score)
}

func TestAudit_AllMissing(t *testing.T) {
	in := Input{
		RawText: "We want a new website.",
		Dates:   []entity.ImportantDate{entity.SentinelDate()},
	}
	res := Default(0).Audit(in)

	require.Len(t, res.Missing, 5)
	assert.Equal(t, "budget", res.Missing[0].Field)
	assert.Equal(t, entity.FieldImportantDates, res.Missing[1].Field)
	for _, m := range res.Missing {
		assert.NotEmpty(t, m.SuggestedQuestion)
	}
	assert.InDelta(t, 0.4, res.Score, 1e-9)
}

func TestAudit_UnknownMethodIsAGap(t *testing.T) {
	in := Input{
		RawText:    "Budget and contract details follow.",
		Dates:      []entity.ImportantDate{{Date: "2026-01-01", Type: "other"}},
		Submission: entity.SubmissionRequirements{Method: "carrier pigeon", Format: "Scroll"},
	}
	res := Default(0).Audit(in)
	require.Len(t, res.Missing, 1)
	assert.Equal(t, "submissionRequirements.method", res.Missing[0].Field)
	assert.InDelta(t, 0.88, res.Score, 1e-9)
}

func TestAudit_ScoreNeverNegative(t *testing.T) {
	res := Default(0.5).Audit(Input{RawText: "nothing"})
	assert.Len(t, res.Missing, 5)
	assert.Equal(t, 0.0, res.Score)
}
