package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Deadline: 2026-03-15", "2026-03-15", true},
		{"Due 15/03/2026", "2026-03-15", true},
		{"Due 5.4.2026", "2026-04-05", true},
		{"Submission Deadline: March 15, 2026", "2026-03-15", true},
		{"Kick-off on 1st April 2026", "2026-04-01", true},
		{"Sept. 9 2026", "2026-09-09", true},
		{"آخر موعد ١٥ مارس ٢٠٢٦", "2026-03-15", true},
		{"2026-02-30 is not a day", "", false},
		{"CR 1010-12-1234", "", false},
		{"no date here", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFind_PrefersEarliestMonthName(t *testing.T) {
	m, ok := Find("From 3 March 2026 until April 9, 2026")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-03", m.ISO)
	assert.Equal(t, "3 March 2026", m.Raw)
}
