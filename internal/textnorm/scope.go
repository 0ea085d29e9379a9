package textnorm

import (
	"regexp"
	"strings"
)

// ScopeRules drive StructureScope. The zero value is not usable; start from DefaultScopeRules.
type ScopeRules struct {
	// NonWork drops fragments about submission, evaluation, certificates, or legal boilerplate.
	NonWork []*regexp.Regexp
	// Action marks a fragment as work even when it is short.
	Action   *regexp.Regexp
	MaxItems int
	MinWords int
}

var defaultNonWork = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:proposals?|bids?|offers?|responses?|quotations?)\s+(?:must|shall|should|are to|will)\s+be\s+(?:submitted|received|delivered|sent)`),
	regexp.MustCompile(`(?i)\b(?:submission|closing|due)\s+(?:deadline|date)\b|\bdeadline\b`),
	regexp.MustCompile(`(?i)\bevaluation\s+(?:criteria|process|committee|method)|\bwill\s+be\s+(?:evaluated|scored)\b|\bweight(?:ing)?s?\b`),
	regexp.MustCompile(`(?i)\b(?:certificates?|certification|commercial\s+registration|vat\s+(?:certificate|registration)|zakat|gosi|chamber\s+of\s+commerce)\b`),
	regexp.MustCompile(`(?i)\b(?:confidential(?:ity)?|governing\s+law|jurisdiction|indemnif\w*|terms\s+and\s+conditions|force\s+majeure|all\s+rights\s+reserved|copyright)\b`),
	regexp.MustCompile(`(?i)^(?:scope(?:\s+of\s+(?:work|services))?|statement\s+of\s+work|project\s+scope|sow)\s*:?$`),
	regexp.MustCompile(`آخر\s+موعد|الموعد\s+النهائي|معايير\s+التقييم|السجل\s+التجاري|شهادة`),
}

var defaultAction = regexp.MustCompile(`(?i)\b(?:design|develop|deliver|provid|creat|implement|produc|build|conduct|prepar|manag|execut|plan|launch|support|maintain|maintenance|train|migrat|integrat|optimi[sz]|research|analy[sz]|writ|coordinat|review|test|deploy|host|monitor|report|facilitat|organi[sz]|establish|defin|assess|audit|redesign|strateg|position|install|configur|operat|document|translat)\w*|تصميم|تطوير|تقديم|إعداد|تنفيذ|إدارة|إنشاء|تدريب|تشغيل|صيانة`)

// DefaultScopeRules returns the stock filters with the given caps.
func DefaultScopeRules(maxItems, minWords int) ScopeRules {
	if maxItems <= 0 {
		maxItems = 12
	}
	if minWords <= 0 {
		minWords = 3
	}
	return ScopeRules{
		NonWork:  defaultNonWork,
		Action:   defaultAction,
		MaxItems: maxItems,
		MinWords: minWords,
	}
}

func (r ScopeRules) isNonWork(frag string) bool {
	if strings.HasSuffix(frag, ":") && WordCount(frag) <= 6 {
		return true
	}
	for _, re := range r.NonWork {
		if re.MatchString(frag) {
			return true
		}
	}
	return false
}

func (r ScopeRules) isWork(frag string) bool {
	if r.Action != nil && r.Action.MatchString(frag) {
		return true
	}
	return WordCount(frag) > r.MinWords
}

func cleanFragment(frag string) string {
	frag = StripListMarkers(frag)
	frag = strings.TrimRight(frag, " ,;.")
	return CollapseSpace(frag)
}

// ScopeItems returns the cleaned work fragments of text, de-duplicated and capped.
func ScopeItems(text string, rules ScopeRules) []string {
	var items []string
	seen := map[string]struct{}{}
	for _, line := range NormalizeLines(text) {
		for _, frag := range SplitClauses(line) {
			frag = cleanFragment(frag)
			if frag == "" || rules.isNonWork(frag) || !rules.isWork(frag) {
				continue
			}
			k := Key(frag)
			if k == "" {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			items = append(items, frag)
			if len(items) == rules.MaxItems {
				return items
			}
		}
	}
	return items
}

// StructureScope rewrites scope text as a bullet list of work items.
// Applying it to its own output returns the output unchanged.
func StructureScope(text string, rules ScopeRules) string {
	items := ScopeItems(text, rules)
	for i := range items {
		items[i] = Bullet + items[i]
	}
	return strings.Join(items, "\n")
}
