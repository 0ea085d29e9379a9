package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateInput(t *testing.T) {
	got, cut := TruncateInput("abcdef", 4)
	assert.True(t, cut)
	assert.Equal(t, "abcd", got)

	got, cut = TruncateInput("مرحبا", 2)
	assert.True(t, cut)
	assert.Equal(t, "مر", got)

	got, cut = TruncateInput("short", 100)
	assert.False(t, cut)
	assert.Equal(t, "short", got)
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("  body  ", true)
	assert.True(t, strings.HasPrefix(p, "RFP text:\nbody\n…(truncated)"))
	assert.NotContains(t, BuildUserPrompt("body", false), "truncated")
}

func TestSchemaPrompt_IsValidSchema(t *testing.T) {
	assert.Contains(t, SchemaPrompt(), `"requiredDeliverables"`)
	assert.NoError(t, ValidateJSONAgainstSchema(BuildRFPJSONSchema(), []byte(`{
		"clientName":"A","clientNameOriginal":"","projectName":"B","projectNameOriginal":"",
		"projectDescription":"C","scopeOfWork":"D","evaluationCriteria":"E",
		"requiredDeliverables":[],"importantDates":[{"title":"Deadline","date":"2026-03-15"}],
		"submissionRequirements":{"method":"email","format":"PDF","copies":2,"otherRequirements":[]},
		"confidence":{"clientName":0.9}
	}`)))
	assert.Error(t, ValidateJSONAgainstSchema(BuildRFPJSONSchema(), []byte(`{"clientName":"A"}`)))
}
