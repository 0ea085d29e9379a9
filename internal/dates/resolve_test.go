package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, constants.DateQADeadline, Classify("Deadline for questions"))
	assert.Equal(t, constants.DateSubmissionDeadline, Classify("Proposal submission deadline"))
	assert.Equal(t, constants.DatePresentation, Classify("Shortlisted vendor presentations"))
	assert.Equal(t, constants.DateOther, Classify("Project start date"))
	assert.Equal(t, constants.DateSubmissionDeadline, Classify("آخر موعد لتقديم العروض"))
}

func TestScan_SkipsAddressLines(t *testing.T) {
	got := Scan("123 King Fahd Road, PO Box 5000, 2024-11-03\nSubmission Deadline: March 15, 2026")
	require.Len(t, got, 1)
	assert.Equal(t, "2026-03-15", got[0].Date)
	assert.Equal(t, "Submission Deadline", got[0].Title)
	assert.Equal(t, constants.DateSubmissionDeadline, got[0].Type)
}

func TestScan_LabelOnPreviousLine(t *testing.T) {
	got := Scan("Questions due:\n2026-02-01")
	require.Len(t, got, 1)
	assert.Equal(t, "Questions due", got[0].Title)
	assert.Equal(t, constants.DateQADeadline, got[0].Type)
}

func TestResolve(t *testing.T) {
	raw := `IMPORTANT DATES
Submission Deadline: March 15, 2026
Project Start Date: April 1, 2026
Expected Completion: July 31, 2026`

	res := Resolve(nil, raw)
	assert.Empty(t, res.Conflicts)
	require.Len(t, res.Dates, 3)
	assert.Equal(t, entity.ImportantDate{Title: "Submission Deadline", Date: "2026-03-15", Type: constants.DateSubmissionDeadline, IsCritical: true}, res.Dates[0])
	assert.False(t, res.Dates[1].IsCritical)
}

func TestResolve_SubmissionConflict(t *testing.T) {
	raw := "Submission deadline: 2026-03-15\nAll proposals are due by 20/03/2026"
	res := Resolve(nil, raw)

	require.Len(t, res.Conflicts, 1)
	c := res.Conflicts[0]
	assert.Equal(t, "submission_deadline", c.Field)
	assert.Equal(t, []string{"2026-03-15", "2026-03-20"}, c.Candidates)
	assert.Equal(t, "2026-03-15", c.Resolution)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, entity.WarnDateConflict, res.Warnings[0].Code)

	require.Len(t, res.Dates, 1)
	assert.Equal(t, "2026-03-15", res.Dates[0].Date)
}

func TestResolve_ExtractedEntryWins(t *testing.T) {
	extracted := []entity.ImportantDate{{Title: "Proposal deadline", Date: "2026-03-20", Type: constants.DateSubmissionDeadline}}
	res := Resolve(extracted, "Submission deadline: 2026-03-15")
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "2026-03-20", res.Conflicts[0].Resolution)
}

func TestResolve_DeduplicatesModelAndScan(t *testing.T) {
	extracted := []entity.ImportantDate{{Title: "Deadline for proposals", Date: "2026-03-15", Type: constants.DateSubmissionDeadline}}
	res := Resolve(extracted, "Submission Deadline: March 15, 2026")
	assert.Empty(t, res.Conflicts)
	require.Len(t, res.Dates, 1)
	assert.Equal(t, "Deadline for proposals", res.Dates[0].Title)
}

func TestResolve_DropsExtractedDateOnAddressLine(t *testing.T) {
	raw := "123 King Fahd Road, PO Box 5000, 2024-11-03\nSubmission Deadline: March 15, 2026"
	extracted := []entity.ImportantDate{
		{Title: "Office date", Date: "2024-11-03"},
		{Title: "Kickoff", Date: "2026-04-01"},
	}
	res := Resolve(extracted, raw)

	var got []string
	for _, d := range res.Dates {
		got = append(got, d.Date)
	}
	assert.NotContains(t, got, "2024-11-03")
	assert.Contains(t, got, "2026-04-01", "dates absent from the text are kept")
	assert.Contains(t, got, "2026-03-15")
}

func TestResolve_KeepsExtractedDateAlsoOnPlainLine(t *testing.T) {
	raw := "Building 7, King Fahd Road, opened 2026-02-01\nSite visit: 2026-02-01"
	res := Resolve([]entity.ImportantDate{{Title: "Site visit", Date: "2026-02-01"}}, raw)
	require.NotEmpty(t, res.Dates)
	assert.Equal(t, "2026-02-01", res.Dates[0].Date)
	assert.Equal(t, "Site visit", res.Dates[0].Title)
}

func TestResolve_Sentinel(t *testing.T) {
	res := Resolve([]entity.ImportantDate{{Title: "TBD", Date: "soon"}}, "123 King Fahd Road, PO Box 5000, 2024-11-03")
	require.Len(t, res.Dates, 1)
	assert.True(t, res.Dates[0].IsSentinel())
	assert.Equal(t, entity.SentinelDate(), res.Dates[0])
}
