package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructureCriteria(t *testing.T) {
	in := `Proposals will be evaluated on the following:
1. Technical approach and methodology (40%)
Clear understanding of requirements. Innovative solutions.
2. Team experience (30%)
- Relevant portfolio 15%
3. Price (20%)
3. Price (20%)`

	got := StructureCriteria(in)
	want := strings.Join([]string{
		"Proposals will be evaluated on the following:",
		"1. Technical approach and methodology (40%)",
		"• Clear understanding of requirements.",
		"• Innovative solutions.",
		"2. Team experience (30%)",
		"• Relevant portfolio 15%",
		"3. Price (20%)",
	}, "\n")
	assert.Equal(t, want, got)
	assert.Equal(t, got, StructureCriteria(got))
}

func TestCriteriaWeights(t *testing.T) {
	assert.Equal(t, []float64{40, 65}, CriteriaWeights("Technical 40%\nFinancial 65 %"))
	assert.Empty(t, CriteriaWeights("no weights"))
}
