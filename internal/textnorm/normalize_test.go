package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

func TestCleanSource(t *testing.T) {
	in := "Line one\r\n\tindented\t\ttabs\r\n\r\n\r\n\r\nafter   gap  \n-----\nend"
	got := CleanSource(in)
	assert.Equal(t, "Line one\n indented tabs\n\nafter gap\n\nend", got)
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Fish & Chips <3", "Fish & Chips <3"},
		{"tags removed", "<p>Client: <b>Acme</b></p>", "Client: Acme\n"},
		{"entities unescaped", "<span>R&amp;D</span>", "R&D"},
		{"line breaks kept", "one<br/>two", "one\ntwo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("Website Redesign!"), Key("  website   REDESIGN "))
	assert.Equal(t, "team composition cvs", Key("Team Composition & CVs"))
	assert.Empty(t, Key("—!!—"))
}

func TestNormalizeLines_DropsDuplicatesAndMarkers(t *testing.T) {
	in := "## Overview\n- **Build** the portal\n* build the portal.\n\n1. Train staff"
	assert.Equal(t, []string{"Overview", "Build the portal", "Train staff"}, NormalizeLines(in))
}

func TestLayoutLines(t *testing.T) {
	got := LayoutLines("Proposals must include:\n- Work plan\n2. Team CVs\n\nEvaluation Criteria")
	require.Len(t, got, 4)
	assert.Equal(t, Line{Text: "Proposals must include:"}, got[0])
	assert.Equal(t, Line{Text: "Work plan", Listed: true}, got[1])
	assert.Equal(t, Line{Text: "Team CVs", Listed: true}, got[2])
	assert.Equal(t, Line{Text: "Evaluation Criteria", Gap: true}, got[3])

	plain := Lines("a\n\n- b", false)
	var texts []string
	for _, l := range LayoutLines("a\n\n- b") {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, plain, texts)
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Clear plan. Strong team! Is it feasible? yes")
	assert.Equal(t, []string{"Clear plan.", "Strong team!", "Is it feasible?", "yes"}, got)
}

func TestSplitClauses(t *testing.T) {
	got := SplitClauses("Design UI; build backend • deploy to cloud | train users")
	assert.Equal(t, []string{"Design UI", "build backend", "deploy to cloud", "train users"}, got)
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, constants.English, DetectLanguage("Request for proposal"))
	assert.Equal(t, constants.Arabic, DetectLanguage("طلب تقديم عروض لتطوير الموقع"))
	assert.Equal(t, constants.Mixed, DetectLanguage("Client العميل وزارة Ministry"))
	assert.Equal(t, constants.English, DetectLanguage("2026-03-15 100%"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
	require.True(t, HasArabic("مرحبا hello"))
	require.False(t, HasArabic("hello"))
}
