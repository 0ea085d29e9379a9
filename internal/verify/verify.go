// Package verify grounds extracted text against its source by term overlap and
// checks that declared evaluation-criteria weights add up.
package verify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

const (
	minTermRunes       = 4
	groundingPenalty   = 0.3
	weightSumPenalty   = 0.1
	weightSumTolerance = 0.01
)

var stopwords = toSet(
	"about", "after", "also", "based", "been", "before", "being", "both", "could", "does",
	"each", "from", "have", "into", "more", "must", "only", "other", "over", "same",
	"shall", "should", "such", "than", "that", "their", "them", "then", "there", "these",
	"they", "this", "those", "through", "under", "upon", "were", "what", "when", "where",
	"which", "while", "will", "with", "within", "would", "your",
	"التي", "الذي", "الذين", "وذلك", "حيث", "بحيث", "خلال", "ضمن", "عليها", "فيها",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// Config holds the tuned grounding constants.
type Config struct {
	Threshold float64
	MaxTerms  int
}

func DefaultConfig() Config {
	return Config{Threshold: 0.5, MaxTerms: 20}
}

// Result is the outcome of one verification pass.
type Result struct {
	// Score starts at 1 and loses a fixed amount per failed check.
	Score float64
	// Grounding is the term match rate per checked field.
	Grounding map[string]float64
	// WeightSum is set only when the criteria declare more than one weight.
	WeightSum *float64
	Warnings  []entity.Warning
}

type Verifier struct {
	cfg Config
}

func New(cfg Config) *Verifier {
	d := DefaultConfig()
	if cfg.Threshold <= 0 {
		cfg.Threshold = d.Threshold
	}
	if cfg.MaxTerms <= 0 {
		cfg.MaxTerms = d.MaxTerms
	}
	return &Verifier{cfg: cfg}
}

// Verify checks scope and criteria against rawText.
func (v *Verifier) Verify(rawText, scope, criteria string) Result {
	res := Result{Score: 1, Grounding: map[string]float64{}}
	source := strings.ToLower(rawText)

	for _, f := range []struct{ field, text string }{
		{entity.FieldScopeOfWork, scope},
		{entity.FieldEvaluationCriteria, criteria},
	} {
		terms := Terms(f.text, v.cfg.MaxTerms)
		if len(terms) == 0 {
			continue
		}
		rate := MatchRate(terms, source)
		res.Grounding[f.field] = rate
		if rate < v.cfg.Threshold {
			res.Score -= groundingPenalty
			res.Warnings = append(res.Warnings, entity.Warning{
				Code:    entity.WarnLowGrounding,
				Message: fmt.Sprintf("only %.0f%% of key terms in %s appear in the source", rate*100, f.field),
				Field:   f.field,
			})
		}
	}

	if weights := textnorm.CriteriaWeights(criteria); len(weights) > 1 {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		res.WeightSum = &sum
		if math.Abs(sum-100) > weightSumTolerance {
			res.Score -= weightSumPenalty
			res.Warnings = append(res.Warnings, entity.Warning{
				Code:    entity.WarnCriteriaWeightSum,
				Message: fmt.Sprintf("evaluation criteria weights sum to %s, not 100", strconv.FormatFloat(sum, 'f', -1, 64)),
				Field:   entity.FieldEvaluationCriteria,
			})
		}
	}

	res.Score = math.Max(0, math.Min(1, res.Score))
	return res
}

// Terms returns up to max distinct lower-cased terms of at least four characters,
// most frequent first and ties broken by first appearance.
func Terms(text string, max int) []string {
	type stat struct {
		count, first int
	}
	stats := map[string]*stat{}
	var order []string
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})
	for i, w := range words {
		if utf8.RuneCountInString(w) < minTermRunes || isNumber(w) {
			continue
		}
		if _, skip := stopwords[w]; skip {
			continue
		}
		if s, ok := stats[w]; ok {
			s.count++
			continue
		}
		stats[w] = &stat{count: 1, first: i}
		order = append(order, w)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := stats[order[i]], stats[order[j]]
		if a.count != b.count {
			return a.count > b.count
		}
		return a.first < b.first
	})
	if max > 0 && len(order) > max {
		order = order[:max]
	}
	return order
}

// MatchRate is the share of terms found in source, which must already be lower-cased.
func MatchRate(terms []string, source string) float64 {
	if len(terms) == 0 {
		return 1
	}
	hit := 0
	for _, t := range terms {
		if strings.Contains(source, t) {
			hit++
		}
	}
	return float64(hit) / float64(len(terms))
}

func isNumber(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
