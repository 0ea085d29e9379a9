package extract

import "regexp"

const headingPrefix = `(?i)^(?:#{1,6}\s*)?(?:\d+(?:\.\d+)*[.)]?\s*)?`

// Rules are the pattern tables of the deterministic extractor.
type Rules struct {
	ClientLabel  *regexp.Regexp
	ProjectLabel *regexp.Regexp
	// ClientPhrase and ProjectTitle are tried when no labelled line exists.
	ClientPhrase *regexp.Regexp
	ProjectTitle *regexp.Regexp

	DescriptionHeading *regexp.Regexp
	ScopeHeading       *regexp.Regexp
	CriteriaHeading    *regexp.Regexp
	// OtherHeadings end a heading block without starting one we care about.
	OtherHeadings *regexp.Regexp

	ExcerptChars int
}

// DefaultRules returns the bilingual stock rules.
func DefaultRules() Rules {
	return Rules{
		ClientLabel:  regexp.MustCompile(`(?im)^[ \t]*(?:[-*•][ \t]*)?(?:client(?:[ \t]+name)?|issuing[ \t]+(?:organi[sz]ation|entity|authority)|organi[sz]ation|buyer|purchaser|العميل|الجهة(?:[ \t]+المالكة)?|اسم[ \t]+الجهة)[ \t]*[:：\-–][ \t]*(.+)$`),
		ProjectLabel: regexp.MustCompile(`(?im)^[ \t]*(?:[-*•][ \t]*)?(?:project(?:[ \t]+(?:name|title))?|rfp[ \t]+title|tender[ \t]+(?:name|title)|المشروع|اسم[ \t]+المشروع|عنوان[ \t]+المشروع|اسم[ \t]+المنافسة)[ \t]*[:：\-–][ \t]*(.+)$`),
		ClientPhrase: regexp.MustCompile(`(?i)\b(?:issued[ \t]+by|prepared[ \t]+for|on[ \t]+behalf[ \t]+of)[ \t]*:?[ \t]+([^\n,;]{3,80})`),
		ProjectTitle: regexp.MustCompile(`(?im)^[ \t]*(?:request[ \t]+for[ \t]+(?:proposals?|quotations?)|rfp|tender)[ \t]*(?:for\b|[:–—-])[ \t]*(.+)$`),

		DescriptionHeading: regexp.MustCompile(headingPrefix + `(?:(?:project[ \t]+(?:description|overview|background|summary)|overview|background|introduction|about[ \t]+the[ \t]+project|executive[ \t]+summary|purpose)\b|وصف[ \t]+المشروع|نبذة|مقدمة|خلفية)`),
		ScopeHeading:       regexp.MustCompile(headingPrefix + `(?:(?:scope(?:[ \t]+of[ \t]+(?:work|services))?|statement[ \t]+of[ \t]+work|services[ \t]+required|required[ \t]+services|project[ \t]+scope)\b|نطاق[ \t]+(?:العمل|الأعمال)|الأعمال[ \t]+المطلوبة)`),
		CriteriaHeading:    regexp.MustCompile(headingPrefix + `(?:(?:evaluation(?:[ \t]+criteria)?|selection[ \t]+criteria|award[ \t]+criteria|scoring)\b|معايير[ \t]+(?:التقييم|الاختيار)|التقييم)`),
		OtherHeadings:      regexp.MustCompile(headingPrefix + `(?:(?:important[ \t]+dates|key[ \t]+dates|timeline|schedule|submission|deliverables|proposal[ \t]+(?:contents?|format|requirements)|terms|conditions|budget|contact|client[ \t]+information|appendix|annex)\b|المواعيد|الشروط|التقديم|المخرجات)`),

		ExcerptChars: 600,
	}
}
