package deliverables

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

const maxCriteriaLineWords = 8

// Result is the classified deliverable set.
type Result struct {
	Deliverables []entity.Deliverable
	Requirements entity.DeliverableRequirements
	Warnings     []entity.Warning
}

type grouper struct {
	c      *Classifier
	items  map[constants.DeliverableCategory][]entity.DeliverableItem
	keys   map[constants.DeliverableCategory][]string
	titles map[constants.DeliverableCategory]map[string]int
}

func newGrouper(c *Classifier) *grouper {
	g := &grouper{
		c:      c,
		items:  map[constants.DeliverableCategory][]entity.DeliverableItem{},
		keys:   map[constants.DeliverableCategory][]string{},
		titles: map[constants.DeliverableCategory]map[string]int{},
	}
	for _, cat := range constants.AllCategories() {
		g.items[cat] = []entity.DeliverableItem{}
		g.titles[cat] = map[string]int{}
	}
	return g
}

// add files text under its category unless it has no category, is a near
// duplicate of a kept item, or a cap is reached.
func (g *grouper) add(text string, src constants.DeliverableSource) {
	cat, ok := g.c.Categorize(text)
	if !ok {
		return
	}
	key := textnorm.Key(text)
	if key == "" || len(g.items[cat]) >= g.c.categoryCap {
		return
	}
	for _, k := range g.keys[cat] {
		if strings.Contains(k, key) || strings.Contains(key, k) {
			return
		}
	}
	title := g.c.Title(text)
	if g.titles[cat][title] >= g.c.titleRepeatCap {
		return
	}
	g.titles[cat][title]++
	g.keys[cat] = append(g.keys[cat], key)
	g.items[cat] = append(g.items[cat], entity.DeliverableItem{Title: title, Description: text, Source: src})
}

// Classify merges extractor-supplied deliverables with clauses collected from
// rawText and criteria headings, groups them by category and adds placeholders
// for empty categories. Extracted items marked verbatim that do not trace back
// to an explicit requirement line are downgraded to inferred.
func (c *Classifier) Classify(extracted []entity.Deliverable, rawText, criteria string) Result {
	cands := c.Collect(rawText)
	var explicitKeys []string
	for _, cd := range cands {
		if cd.Explicit {
			explicitKeys = append(explicitKeys, textnorm.Key(cd.Text))
		}
	}

	var res Result
	g := newGrouper(c)
	downgraded := 0
	for _, d := range extracted {
		for _, clause := range textnorm.SplitClauses(textnorm.Clean(d.Item)) {
			clause = cleanClause(clause)
			if clause == "" || c.isBoilerplate(clause) {
				continue
			}
			src := constants.ParseSource(string(d.Source))
			if src == constants.Verbatim && !tracesToExplicit(clause, explicitKeys) {
				src = constants.Inferred
				downgraded++
			}
			g.add(clause, src)
		}
	}
	for _, cd := range cands {
		src := constants.Inferred
		if cd.Explicit {
			src = constants.Verbatim
		}
		g.add(cd.Text, src)
	}
	for _, name := range criteriaNames(criteria) {
		g.add(name, constants.Inferred)
	}

	for _, p := range c.placeholders {
		if len(g.items[p.Category]) > 0 {
			continue
		}
		if !p.Always && !c.strategic.MatchString(rawText) {
			continue
		}
		g.items[p.Category] = append(g.items[p.Category], entity.DeliverableItem{
			Title:       p.Title,
			Description: p.Description,
			Source:      constants.Inferred,
		})
	}

	res.Requirements = entity.DeliverableRequirements{
		Technical:         g.items[constants.Technical],
		Commercial:        g.items[constants.Commercial],
		StrategicCreative: g.items[constants.StrategicCreative],
	}
	res.Deliverables = []entity.Deliverable{}
	seen := map[string]struct{}{}
	for _, cat := range constants.AllCategories() {
		for _, it := range res.Requirements.Items(cat) {
			k := textnorm.Key(it.Description)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			res.Deliverables = append(res.Deliverables, entity.Deliverable{Item: it.Description, Source: it.Source})
		}
	}

	if downgraded > 0 {
		res.Warnings = append(res.Warnings, entity.Warning{
			Code:    entity.WarnProvenanceDowngraded,
			Message: fmt.Sprintf("%d deliverable(s) marked verbatim have no explicit requirement line in the source; tagged inferred", downgraded),
			Field:   entity.FieldRequiredDeliverables,
		})
	}
	return res
}

// criteriaNames returns criterion names from numbered headings and short weighted lines.
func criteriaNames(criteria string) []string {
	var names []string
	for _, line := range textnorm.Lines(criteria, true) {
		if m := reCriteriaHeading.FindStringSubmatch(line); m != nil {
			names = append(names, strings.TrimSpace(m[1]))
			continue
		}
		line = textnorm.StripListMarkers(line)
		if rePercentSuffix.MatchString(line) && textnorm.WordCount(line) <= maxCriteriaLineWords {
			if name := strings.TrimSpace(rePercentSuffix.ReplaceAllString(line, "")); name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}
