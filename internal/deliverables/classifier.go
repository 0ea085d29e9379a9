package deliverables

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

const (
	maxHeadingWords = 6
	minClauseWords  = 2
	maxTitleRunes   = 60
	// share of an item's terms that must appear in an explicit line for it to stay verbatim
	traceOverlap = 0.6
)

var (
	reCriteriaHeading = regexp.MustCompile(`^\d{1,2}\.\s+(.+?)\s*(?:\(\s*\d{1,3}(?:\.\d+)?\s*%\s*\))?$`)
	rePercentSuffix   = regexp.MustCompile(`\s*[-–:]?\s*\d{1,3}(?:\.\d+)?\s*%\s*$`)
	reLeadConj        = regexp.MustCompile(`(?i)^(?:and|or|as\s+well\s+as)\s+`)
)

type signal struct {
	category constants.DeliverableCategory
	re       *regexp.Regexp
}

type titleRule struct {
	re    *regexp.Regexp
	title string
}

// Classifier is safe for concurrent use; it holds only compiled rules.
type Classifier struct {
	start, stop, explicit, strategic *regexp.Regexp
	boilerplate                      []*regexp.Regexp
	signals                          []signal
	titles                           []titleRule
	placeholders                     []Placeholder
	categoryCap, titleRepeatCap      int
}

// NewClassifier compiles rules.
func NewClassifier(rules Rules) (*Classifier, error) {
	c := &Classifier{
		placeholders:   rules.Placeholders,
		categoryCap:    rules.CategoryCap,
		titleRepeatCap: rules.TitleRepeatCap,
	}
	var err error
	compile := func(name, expr string) *regexp.Regexp {
		if err != nil {
			return nil
		}
		re, cErr := regexp.Compile(expr)
		if cErr != nil {
			err = fmt.Errorf("compile %s: %w", name, cErr)
		}
		return re
	}
	c.start = compile("start headings", rules.StartHeadings)
	c.stop = compile("stop headings", rules.StopHeadings)
	c.explicit = compile("explicit requirement", rules.Explicit)
	c.strategic = compile("strategic vocabulary", rules.StrategicVocabulary)
	for i, b := range rules.Boilerplate {
		c.boilerplate = append(c.boilerplate, compile(fmt.Sprintf("boilerplate[%d]", i), b))
	}
	for _, s := range rules.Signals {
		c.signals = append(c.signals, signal{category: s.Category, re: compile("signal "+string(s.Category), s.Regex)})
	}
	for _, t := range rules.Titles {
		c.titles = append(c.titles, titleRule{re: compile("title "+t.Title, t.Regex), title: t.Title})
	}
	if err != nil {
		return nil, err
	}
	if c.categoryCap <= 0 {
		c.categoryCap = 8
	}
	if c.titleRepeatCap <= 0 {
		c.titleRepeatCap = 3
	}
	return c, nil
}

// MustDefault returns a classifier over DefaultRules, panicking on a bad rule table.
func MustDefault(categoryCap, titleRepeatCap int) *Classifier {
	c, err := NewClassifier(DefaultRules(categoryCap, titleRepeatCap))
	if err != nil {
		panic(err)
	}
	return c
}

// Candidate is a requirement clause lifted from source text.
type Candidate struct {
	Text string
	// Explicit is true when the clause's source line matched an explicit-requirement pattern.
	Explicit bool
	Line     int
}

// IsExplicit reports whether line carries explicit requirement phrasing.
func (c *Classifier) IsExplicit(line string) bool {
	return c.explicit.MatchString(line)
}

func (c *Classifier) isBoilerplate(s string) bool {
	for _, re := range c.boilerplate {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func isHeadingShape(line string) bool {
	if textnorm.WordCount(line) > maxHeadingWords || strings.Contains(line, "%") {
		return false
	}
	if strings.HasSuffix(line, ":") {
		return true
	}
	hasUpper := false
	for _, r := range line {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

// isStopHeading reports whether line opens a section that carries no
// deliverables, such as "Evaluation Criteria" or "Payment Terms".
func (c *Classifier) isStopHeading(line string) bool {
	if textnorm.WordCount(line) > maxHeadingWords || strings.HasSuffix(line, ".") {
		return false
	}
	return c.stop.MatchString(line)
}

// Collect scans text for requirement clauses: lines inside deliverable-bearing
// sections, lines with explicit requirement phrasing anywhere, and the list
// items directly under an explicit lead-in such as "Proposals must include:".
// A lead-in covers list lines only and ends at the first blank or unlisted line.
func (c *Classifier) Collect(text string) []Candidate {
	var out []Candidate
	inSection, leadIn := false, false
	for i, l := range textnorm.LayoutLines(text) {
		line := l.Text
		if leadIn && (l.Gap || !l.Listed) {
			leadIn = false
		}
		explicit := c.explicit.MatchString(line)
		// list items under a lead-in are never headings
		if !explicit && !leadIn && textnorm.WordCount(line) <= maxHeadingWords {
			if c.start.MatchString(line) {
				inSection = true
				continue
			}
			if isHeadingShape(line) || c.isStopHeading(line) {
				inSection = false
				continue
			}
		}
		if explicit {
			leadIn = strings.HasSuffix(line, ":")
			if leadIn {
				continue
			}
		}
		if !inSection && !explicit && !leadIn {
			continue
		}
		for _, clause := range textnorm.SplitClauses(line) {
			clause = cleanClause(clause)
			if textnorm.WordCount(clause) < minClauseWords || c.isBoilerplate(clause) {
				continue
			}
			out = append(out, Candidate{Text: clause, Explicit: explicit || leadIn, Line: i + 1})
		}
	}
	return out
}

func cleanClause(s string) string {
	s = textnorm.StripListMarkers(s)
	s = reLeadConj.ReplaceAllString(s, "")
	return strings.TrimRight(s, " ,;.:")
}

// Categorize returns the category with the most signal hits, or false when none match.
// Ties go to the earlier signal in the rule table.
func (c *Classifier) Categorize(text string) (constants.DeliverableCategory, bool) {
	best, bestHits := constants.DeliverableCategory(""), 0
	for _, s := range c.signals {
		if hits := len(s.re.FindAllStringIndex(text, -1)); hits > bestHits {
			best, bestHits = s.category, hits
		}
	}
	return best, bestHits > 0
}

// Title maps text to its canonical title, or a shortened form of the text itself.
func (c *Classifier) Title(text string) string {
	for _, t := range c.titles {
		if t.re.MatchString(text) {
			return t.title
		}
	}
	r := []rune(textnorm.Truncate(text, maxTitleRunes))
	if len(r) > 0 {
		r[0] = unicode.ToUpper(r[0])
	}
	return string(r)
}

// tracesToExplicit reports whether item overlaps an explicit source clause.
func tracesToExplicit(item string, explicit []string) bool {
	key := textnorm.Key(item)
	if key == "" {
		return false
	}
	var terms []string
	for _, t := range strings.Fields(key) {
		if len([]rune(t)) >= 3 {
			terms = append(terms, t)
		}
	}
	for _, e := range explicit {
		if strings.Contains(e, key) || strings.Contains(key, e) {
			return true
		}
		hits := 0
		for _, t := range terms {
			if strings.Contains(e, t) {
				hits++
			}
		}
		if len(terms) > 0 && float64(hits)/float64(len(terms)) >= traceOverlap {
			return true
		}
	}
	return false
}
