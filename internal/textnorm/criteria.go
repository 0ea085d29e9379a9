package textnorm

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCriterionHeading = regexp.MustCompile(`^(\d{1,2})[.)]\s+(.+)$`)
	rePercent          = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
)

const maxWeightLineWords = 12

// StructureCriteria keeps numbered criterion headings, turns weighted-factor
// lines into bullets and splits prose beneath a heading into one bullet per sentence.
func StructureCriteria(text string) string {
	var out []string
	seen := map[string]struct{}{}
	emit := func(line string) {
		k := Key(line)
		if k == "" {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, line)
	}

	underHeading := false
	for _, line := range Lines(text, true) {
		if m := reCriterionHeading.FindStringSubmatch(line); m != nil {
			underHeading = true
			emit(fmt.Sprintf("%s. %s", m[1], m[2]))
			continue
		}
		line = StripListMarkers(line)
		if line == "" {
			continue
		}
		switch {
		case rePercent.MatchString(line) && WordCount(line) <= maxWeightLineWords:
			emit(Bullet + line)
		case underHeading:
			for _, s := range SplitSentences(line) {
				emit(Bullet + s)
			}
		default:
			emit(line)
		}
	}
	return strings.Join(out, "\n")
}

// CriteriaWeights returns every percentage weight declared in text, in order.
func CriteriaWeights(text string) []float64 {
	var weights []float64
	for _, m := range rePercent.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		weights = append(weights, v)
	}
	return weights
}
