package extract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/deliverables"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

func newDeterministic() *DeterministicExtractor {
	return NewDeterministicExtractor(DefaultRules(), deliverables.MustDefault(8, 3))
}

func TestDeterministic_SampleRFP(t *testing.T) {
	out := newDeterministic().Extract(sampleRFP, nil)

	assert.Equal(t, constants.MethodDeterministic, out.Method)
	assert.Equal(t, "Test Corporation Inc.", out.ClientName)
	assert.Equal(t, "Website Redesign Project", out.ProjectName)
	assert.True(t, strings.HasPrefix(out.ProjectDescription, "We are seeking proposals"))
	assert.Contains(t, out.ScopeOfWork, "• Brand strategy and positioning")
	assert.Contains(t, out.ScopeOfWork, "• Training for content editors")
	assert.NotContains(t, out.ScopeOfWork, "EVALUATION")
	assert.Contains(t, out.EvaluationCriteria, "1. Technical approach and methodology (40%)")
	assert.Contains(t, out.EvaluationCriteria, "4. Proposed timeline and milestones (10%)")
	assert.NotContains(t, out.EvaluationCriteria, "Submission Deadline")

	require.Len(t, out.Dates, 3)
	assert.Equal(t, "2026-03-15", out.Dates[0].Date)
	assert.Equal(t, constants.DateSubmissionDeadline, out.Dates[0].Type)
	assert.True(t, out.Dates[0].IsCritical)

	assert.Equal(t, 0.7, out.Confidence[entity.FieldClientName])
	assert.Equal(t, 0.65, out.Confidence[entity.FieldScopeOfWork])
	assert.Empty(t, out.Warnings)
	assert.NotNil(t, out.Deliverables)
	assert.NotNil(t, out.Submission.OtherRequirements)

	for _, ev := range out.Evidence {
		if ev.Field == entity.FieldClientName {
			assert.Equal(t, "Client: Test Corporation Inc.", ev.Excerpt)
			assert.Equal(t, strings.Index(sampleRFP, "Client:"), ev.Offset)
		}
	}
}

func TestDeterministic_IsDeterministic(t *testing.T) {
	e := newDeterministic()
	a, err := json.Marshal(e.Extract(sampleRFP, nil))
	require.NoError(t, err)
	b, err := json.Marshal(e.Extract(sampleRFP, nil))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestDeterministic_PrefersSections(t *testing.T) {
	text := "Overview\nA portal for citizens.\nScope\nBuild the portal and train staff."
	scopeStart := strings.Index(text, "Scope")
	sections := []entity.Section{
		{Name: "Overview", StartOffset: 0, EndOffset: scopeStart},
		{Name: "Scope", StartOffset: scopeStart, EndOffset: len(text)},
	}
	out := newDeterministic().Extract(text, sections)

	assert.Equal(t, "A portal for citizens.", out.ProjectDescription)
	assert.Equal(t, "Build the portal and train staff.", out.ScopeOfWork)
	assert.Equal(t, 0.75, out.Confidence[entity.FieldScopeOfWork])
}

func TestDeterministic_ExcerptFallback(t *testing.T) {
	text := "We need a vendor to build a booking platform for our clinics and support it for two years."
	out := newDeterministic().Extract(text, nil)

	assert.Equal(t, text, out.ScopeOfWork)
	assert.Equal(t, confExcerpt, out.Confidence[entity.FieldScopeOfWork])

	fields := map[string]bool{}
	for _, w := range out.Warnings {
		assert.Equal(t, entity.WarnExcerptFallback, w.Code)
		fields[w.Field] = true
	}
	assert.True(t, fields[entity.FieldProjectDescription])
	assert.True(t, fields[entity.FieldScopeOfWork])
	assert.True(t, fields[entity.FieldEvaluationCriteria])

	assert.Empty(t, out.ClientName)
	assert.Zero(t, out.Confidence[entity.FieldClientName])
	assert.Equal(t, confNotFound, out.Confidence[entity.FieldImportantDates])
}

func TestDeterministic_InlineHeading(t *testing.T) {
	text := "Issued by: Riyadh Municipality\nScope of Work: Maintain the public parks network\nBudget: TBD"
	out := newDeterministic().Extract(text, nil)

	assert.Equal(t, "Riyadh Municipality", out.ClientName)
	assert.Equal(t, 0.5, out.Confidence[entity.FieldClientName])
	assert.Equal(t, "Maintain the public parks network", out.ScopeOfWork)
}

func TestDeterministic_BilingualClient(t *testing.T) {
	text := "Client: Ministry of Culture / وزارة الثقافة\nاسم المشروع: تطوير الموقع"
	out := newDeterministic().Extract(text, nil)

	assert.Equal(t, "Ministry of Culture", out.ClientName)
	assert.Equal(t, "وزارة الثقافة", out.ClientNameOriginal)
	assert.Equal(t, "تطوير الموقع", out.ProjectName)
	assert.Equal(t, "تطوير الموقع", out.ProjectNameOriginal)
}

func TestDeterministic_ExplicitDeliverablesAreVerbatim(t *testing.T) {
	text := "PROPOSAL CONTENTS\nProposals must include the following:\n- Detailed methodology and work plan\n- CVs of the proposed team"
	out := newDeterministic().Extract(text, nil)

	require.Len(t, out.Deliverables, 2)
	for _, d := range out.Deliverables {
		assert.Equal(t, constants.Verbatim, d.Source)
	}
	assert.Equal(t, confFound, out.Confidence[entity.FieldRequiredDeliverables])
}

func TestSplitBilingual(t *testing.T) {
	tests := []struct {
		in, name, original string
	}{
		{"Test Corporation Inc.", "Test Corporation Inc.", ""},
		{"Ministry of Health (وزارة الصحة)", "Ministry of Health", "وزارة الصحة"},
		{"وزارة الصحة", "وزارة الصحة", "وزارة الصحة"},
	}
	for _, tt := range tests {
		name, original := splitBilingual(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.original, original, tt.in)
	}
}
