// Package textnorm canonicalizes raw model or document text: markup stripping,
// whitespace collapsing, line de-duplication, and the scope-of-work and
// evaluation-criteria structuring used by the extraction record.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

// Bullet prefixes every structured list line.
const Bullet = "• "

var (
	strict = bluemonday.StrictPolicy()

	reTag       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)
	reBlockEnd  = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|li|div|tr|h[1-6])\s*>`)
	reMDHeading = regexp.MustCompile(`^#{1,6}\s+`)
	reMDMarks   = regexp.MustCompile("\\*\\*|__|`+")
	reBulletSym = regexp.MustCompile(`^\s*(?:[-*+–—]\s+|[•●▪◦·‣]\s*)`)
	reNumMarker = regexp.MustCompile(`^\s*(?:\d{1,2}(?:\.\d{1,2})*[.)]|[a-z]\))\s+`)
	reSpaces    = regexp.MustCompile(`\s+`)
	reClauseSep = regexp.MustCompile(`\s*[;؛]\s*|\s+[•●▪◦·‣]\s+|\s+\|\s+`)
)

// StripMarkup removes HTML tags (keeping their text) and unescapes entities.
func StripMarkup(s string) string {
	if !reTag.MatchString(s) {
		return s
	}
	s = reBlockEnd.ReplaceAllString(s, "\n")
	return html.UnescapeString(strict.Sanitize(s))
}

// CollapseSpace trims s and folds internal whitespace runs into single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// Clean normalizes a single-value field such as a client or project name.
func Clean(s string) string {
	s = StripMarkup(s)
	s = reMDMarks.ReplaceAllString(s, "")
	s = reMDHeading.ReplaceAllString(strings.TrimSpace(s), "")
	return CollapseSpace(norm.NFC.String(s))
}

// Key is the de-duplication key: NFC, case-folded, punctuation and symbols removed.
func Key(s string) string {
	s = cases.Fold().String(norm.NFC.String(s))
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := true
	for _, r := range s {
		switch {
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			continue
		case unicode.IsSpace(r):
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		default:
			b.WriteRune(r)
			prevSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

// StripListMarkers removes leading bullet symbols and list numbering until none remain.
func StripListMarkers(s string) string {
	for {
		next := reBulletSym.ReplaceAllString(s, "")
		next = reNumMarker.ReplaceAllString(next, "")
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

// stripBulletSymbols removes leading bullet symbols but keeps numbering.
func stripBulletSymbols(s string) string {
	for {
		next := reBulletSym.ReplaceAllString(s, "")
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
}

func cleanLine(line string, keepNumbering bool) string {
	line = reMDMarks.ReplaceAllString(line, "")
	line = reMDHeading.ReplaceAllString(strings.TrimSpace(line), "")
	if keepNumbering {
		line = stripBulletSymbols(line)
	} else {
		line = StripListMarkers(line)
	}
	return CollapseSpace(line)
}

// Lines splits markup-free text into cleaned, non-empty lines without de-duplication.
func Lines(text string, keepNumbering bool) []string {
	text = CleanSource(norm.NFC.String(StripMarkup(text)))
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if c := cleanLine(l, keepNumbering); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Line is a cleaned source line plus the layout cues Lines discards.
type Line struct {
	Text string
	// Listed is set when the raw line opened with a bullet or list number.
	Listed bool
	// Gap is set when a blank line separates it from the previous line.
	Gap bool
}

// LayoutLines is Lines(text, false) with per-line list and blank-line cues.
func LayoutLines(text string) []Line {
	text = CleanSource(norm.NFC.String(StripMarkup(text)))
	var out []Line
	gap := false
	for _, l := range strings.Split(text, "\n") {
		c := cleanLine(l, false)
		if c == "" {
			gap = true
			continue
		}
		raw := reMDMarks.ReplaceAllString(strings.TrimSpace(l), "")
		out = append(out, Line{
			Text:   c,
			Listed: reBulletSym.MatchString(raw) || reNumMarker.MatchString(raw),
			Gap:    gap && len(out) > 0,
		})
		gap = false
	}
	return out
}

// NormalizeLines returns the cleaned lines of text, dropping any line whose Key
// was already seen.
func NormalizeLines(text string) []string {
	lines := Lines(text, false)
	seen := make(map[string]struct{}, len(lines))
	out := lines[:0]
	for _, l := range lines {
		k := Key(l)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

// Normalize is NormalizeLines joined with newlines.
func Normalize(text string) string {
	return strings.Join(NormalizeLines(text), "\n")
}

// SplitClauses splits a line on semicolons and inline bullet delimiters.
func SplitClauses(line string) []string {
	parts := reClauseSep.Split(line, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences splits text after sentence-ending punctuation followed by whitespace.
func SplitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?', '؟':
			if unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// HasArabic reports whether s contains Arabic script.
func HasArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}

// DetectLanguage classifies text by the share of Arabic letters among Arabic and Latin letters.
func DetectLanguage(text string) constants.Language {
	var arabic, latin int
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Arabic, r) && unicode.IsLetter(r):
			arabic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	total := arabic + latin
	if total == 0 {
		return constants.English
	}
	share := float64(arabic) / float64(total)
	switch {
	case share >= 0.8:
		return constants.Arabic
	case share <= 0.2:
		return constants.English
	default:
		return constants.Mixed
	}
}
