// Package deliverables collects requirement statements from an RFP, sorts them
// into technical, commercial and strategic-creative groups, and tracks whether
// each one was stated verbatim or inferred.
package deliverables

import "github.com/joseph-ayodele/rfp-extractor/constants"

// Signal marks text as belonging to a category.
type Signal struct {
	Category constants.DeliverableCategory
	Regex    string
}

// TitleRule maps a clause shape to a canonical title.
type TitleRule struct {
	Regex string
	Title string
}

// Placeholder is added when a category ends up empty.
type Placeholder struct {
	Category    constants.DeliverableCategory
	Title       string
	Description string
	// Always is false for categories that only get a placeholder when their
	// vocabulary appears in the source.
	Always bool
}

// Rules is the immutable rule table handed to NewClassifier.
type Rules struct {
	StartHeadings       string
	StopHeadings        string
	Explicit            string
	Boilerplate         []string
	Signals             []Signal
	StrategicVocabulary string
	Titles              []TitleRule
	Placeholders        []Placeholder
	CategoryCap         int
	TitleRepeatCap      int
}

// DefaultRules returns the stock rule table with the given caps.
func DefaultRules(categoryCap, titleRepeatCap int) Rules {
	if categoryCap <= 0 {
		categoryCap = 8
	}
	if titleRepeatCap <= 0 {
		titleRepeatCap = 3
	}
	return Rules{
		StartHeadings: `(?i)deliverables?|submission\s+requirements|proposal\s+(?:contents?|requirements|format|structure)|required\s+documents|technical\s+proposal|financial\s+proposal|commercial\s+proposal|what\s+to\s+submit|المخرجات|المستندات\s+المطلوبة|العرض\s+الفني|العرض\s+المالي|متطلبات\s+العرض`,
		StopHeadings:  `(?i)evaluation|scoring|terms\s+and\s+conditions|general\s+conditions|legal|contract|timeline|schedule|important\s+dates|key\s+dates|background|introduction|overview|contact|budget|payment\s+terms|معايير\s+التقييم|الشروط|الجدول\s+الزمني`,
		Explicit:      `(?i)\b(?:must|shall|should|(?:is|are)\s+required\s+to|required\s+to)\b[^.]{0,60}?\b(?:include|submit|provide|contain|attach|deliver|present|furnish|demonstrate)\w*|يجب\s+(?:أن\s+)?(?:يتضمن|تتضمن|تقديم|يقدم|يرفق|إرفاق)|يلتزم\s+[^.]{0,40}بتقديم`,
		Boilerplate: []string{
			`(?i)\b(?:confidential|governing\s+law|jurisdiction|indemnif\w*|force\s+majeure|all\s+rights\s+reserved|copyright)\b`,
			`(?i)\b(?:reserves?\s+the\s+right|without\s+(?:prior\s+)?notice|not\s+bound\s+to|disqualif\w*|null\s+and\s+void)\b`,
			`(?i)\bpage\s+\d+\s+of\s+\d+\b`,
		},
		Signals: []Signal{
			{constants.Technical, `(?i)methodolog\w*|approach|work\s*plan|technical|team|\bcvs?\b|curricul\w*|r[ée]sum[ée]s?|credentials?|experience|case\s+stud\w*|portfolio|references?|certificat\w*|qualifications?|timeline|project\s+plan|implementation|architecture|solution|specifications?|المنهجية|الفريق|السير\s+الذاتية|الخبرات|العرض\s+الفني|خطة\s+العمل`},
			{constants.Commercial, `(?i)pric\w*|costs?|\bfees?\b|budget|payment|invoic\w*|\btax\w*|\bvat\b|financial|quotation|\bquotes?\b|commercial|rate\s+card|billing|discount|bank\s+guarantee|bid\s+bond|التكلفة|السعر|الأسعار|العرض\s+المالي|ضريبة|الدفع`},
			{constants.StrategicCreative, `(?i)\bbrand\w*|positioning|creative|concepts?|campaigns?|messaging|storytelling|tone\s+of\s+voice|visual\s+identity|insights?|strateg\w*|الهوية|العلامة\s+التجارية|إبداع\w*|الإبداعي|استراتيج\w*`},
		},
		StrategicVocabulary: `(?i)\bbrand\w*|positioning|creative|campaigns?|storytelling|visual\s+identity|strateg\w*|الهوية|العلامة\s+التجارية|إبداع|استراتيج`,
		Titles: []TitleRule{
			{`(?i)\bteam\b|\bcvs?\b|curricul|r[ée]sum[ée]s?|\bstaff\b|personnel|key\s+experts?|السير\s+الذاتية|الفريق`, "Team Composition and CVs"},
			{`(?i)payment\s+(?:terms|schedule|milestones)|شروط\s+الدفع`, "Payment Terms"},
			{`(?i)pric\w*|cost\s+breakdown|financial\s+proposal|quotation|\bfees?\b|budget|السعر|الأسعار|التكلفة|العرض\s+المالي`, "Pricing Breakdown and Totals"},
			{`(?i)methodolog\w*|approach|work\s*plan|المنهجية|خطة\s+العمل`, "Methodology and Approach"},
			{`(?i)timeline|schedule|project\s+plan|gantt|milestones?|الجدول\s+الزمني`, "Project Timeline and Milestones"},
			{`(?i)case\s+stud\w*|portfolio|previous\s+(?:work|projects)|references?|similar\s+projects|experience|الخبرات`, "Relevant Experience and Case Studies"},
			{`(?i)certificat\w*|licen[cs]es?|registration|accreditation`, "Company Credentials and Certificates"},
			{`(?i)\btax\w*|\bvat\b|zakat|ضريبة`, "Tax Documentation"},
			{`(?i)\bbrand\w*|positioning|messaging|العلامة\s+التجارية|الهوية`, "Brand Strategy and Positioning"},
			{`(?i)creative|concepts?|campaigns?|visual|إبداع`, "Creative Concepts"},
			{`(?i)strateg\w*|استراتيج`, "Strategic Approach"},
		},
		Placeholders: []Placeholder{
			{constants.Technical, "Technical Proposal", "Technical proposal describing the approach, methodology and proposed team.", true},
			{constants.Commercial, "Financial Proposal", "Priced financial proposal with a cost breakdown and totals.", true},
			{constants.StrategicCreative, "Strategic and Creative Approach", "Strategic and creative direction responding to the brief.", false},
		},
		CategoryCap:    categoryCap,
		TitleRepeatCap: titleRepeatCap,
	}
}
