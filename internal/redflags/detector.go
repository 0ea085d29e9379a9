// Package redflags scans RFP text for contractual, feasibility and process risks.
package redflags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

const (
	contextRunes = 80
	excerptRunes = 200
)

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Detector is stateless after construction and safe for concurrent use.
type Detector struct {
	rules []compiledRule
}

func NewDetector(rules []Rule) (*Detector, error) {
	d := &Detector{rules: make([]compiledRule, 0, len(rules))}
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile red flag %q: %w", r.Title, err)
		}
		d.rules = append(d.rules, compiledRule{Rule: r, re: re})
	}
	return d, nil
}

// MustDefault returns a detector over DefaultRules.
func MustDefault() *Detector {
	d, err := NewDetector(DefaultRules())
	if err != nil {
		panic(err)
	}
	return d
}

// Detect scans rawText and the extracted scope. Flags come out in catalog order,
// then by position; the same phrase hit by the same rule is reported once.
func (d *Detector) Detect(rawText, scope string) []entity.RedFlag {
	text := textnorm.CleanSource(rawText)
	if s := strings.TrimSpace(scope); s != "" {
		text += "\n\n" + s
	}

	flags := []entity.RedFlag{}
	for _, r := range d.rules {
		seen := map[string]struct{}{}
		for _, loc := range r.re.FindAllStringIndex(text, -1) {
			k := textnorm.Key(text[loc[0]:loc[1]])
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			flags = append(flags, entity.RedFlag{
				Type:           r.Type,
				Severity:       r.Severity,
				Title:          r.Title,
				Description:    r.Description,
				SourceText:     excerpt(text, loc[0], loc[1]),
				Recommendation: r.Recommendation,
			})
		}
	}
	return flags
}

// excerpt widens [start,end) by up to contextRunes on each side without
// leaving the paragraph, then truncates.
func excerpt(text string, start, end int) string {
	pStart, pEnd := 0, len(text)
	if i := strings.LastIndex(text[:start], "\n\n"); i >= 0 {
		pStart = i + 2
	}
	if i := strings.Index(text[end:], "\n\n"); i >= 0 {
		pEnd = end + i
	}
	before := []rune(text[pStart:start])
	if len(before) > contextRunes {
		before = before[len(before)-contextRunes:]
	}
	after := []rune(text[end:pEnd])
	if len(after) > contextRunes {
		after = after[:contextRunes]
	}
	return textnorm.Truncate(textnorm.CollapseSpace(string(before)+text[start:end]+string(after)), excerptRunes)
}
