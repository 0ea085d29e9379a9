package redflags

import "github.com/joseph-ayodele/rfp-extractor/constants"

// Rule is one entry of the risk catalog. Pattern is compiled by NewDetector.
type Rule struct {
	Type           constants.RedFlagType
	Severity       constants.Severity
	Title          string
	Description    string
	Pattern        string
	Recommendation string
}

// DefaultRules is the stock catalog. New risks are added here and nowhere else.
func DefaultRules() []Rule {
	return []Rule{
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityHigh,
			Title:          "Unlimited revisions",
			Description:    "The client may request an unbounded number of revisions.",
			Pattern:        `(?i)\b(?:unlimited|unrestricted|as\s+many\s+as\s+(?:needed|required))\s+(?:rounds\s+of\s+)?(?:revisions?|amendments?|changes|iterations)\b|تعديلات\s+غير\s+محدودة`,
			Recommendation: "Cap the number of revision rounds in the proposal and price extra rounds separately.",
		},
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityHigh,
			Title:          "Unlimited liability",
			Description:    "Liability is uncapped or indemnity is one-sided.",
			Pattern:        `(?i)\bunlimited\s+liabilit(?:y|ies)\b|\bliabilit(?:y|ies)\s+(?:shall\s+)?(?:not\s+be\s+(?:capped|limited))\b|\bfully\s+indemnif(?:y|ies)\b`,
			Recommendation: "Request a liability cap tied to the contract value and mutual indemnity terms.",
		},
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityMedium,
			Title:          "Termination without cause",
			Description:    "The client may terminate at will or without compensation.",
			Pattern:        `(?i)\bterminat\w*\s+(?:this\s+(?:contract|agreement)\s+)?(?:at\s+any\s+time\s+)?(?:without|for\s+no)\s+(?:cause|reason|compensation|notice)\b|\bterminat\w*\s+at\s+(?:its|their)\s+(?:sole\s+)?discretion\b`,
			Recommendation: "Negotiate a notice period and payment for work completed up to termination.",
		},
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityMedium,
			Title:          "Heavy penalties",
			Description:    "Delay penalties or liquidated damages apply.",
			Pattern:        `(?i)\b(?:liquidated\s+damages|penalt(?:y|ies)\s+(?:of|for)\s+(?:delay|late)|delay\s+penalt(?:y|ies))\b|غرامات?\s+(?:التأخير|تأخير)`,
			Recommendation: "Confirm the penalty rate and cap, and build schedule buffer into the plan.",
		},
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityMedium,
			Title:          "Full IP transfer",
			Description:    "All intellectual property, including pre-existing tools, transfers to the client.",
			Pattern:        `(?i)\b(?:all|full|exclusive)\s+(?:intellectual\s+property|ip)\s+(?:rights\s+)?(?:shall\s+)?(?:transfer|belong|vest|be\s+owned)\w*|\bwork\s+for\s+hire\b`,
			Recommendation: "Carve out pre-existing tools and frameworks from the IP transfer.",
		},
		{
			Type:           constants.RiskContractual,
			Severity:       constants.SeverityMedium,
			Title:          "Long payment terms",
			Description:    "Payment is due long after delivery or only on final acceptance.",
			Pattern:        `(?i)\b(?:payment|invoices?)\s+(?:will\s+be\s+|shall\s+be\s+)?(?:made|paid|settled|due)\s+(?:within\s+)?(?:9\d|1\d\d)\s+days\b|\bpayment\s+(?:only\s+)?(?:upon|after)\s+final\s+acceptance\b`,
			Recommendation: "Propose milestone-based payments with shorter terms.",
		},
		{
			Type:           constants.RiskFeasibility,
			Severity:       constants.SeverityHigh,
			Title:          "Unrealistic turnaround",
			Description:    "The delivery or response window is very short for the scope.",
			Pattern:        `(?i)\b(?:within|in)\s+(?:24|48|72)\s+hours\b|\b(?:within|in)\s+(?:[1-5]|one|two|three|four|five)\s+(?:business\s+|working\s+)?days?\b|\b(?:immediate|urgent)\s+(?:delivery|start|turnaround)\b|\bASAP\b`,
			Recommendation: "Confirm the timeline with the client and propose a phased delivery plan.",
		},
		{
			Type:           constants.RiskFeasibility,
			Severity:       constants.SeverityMedium,
			Title:          "Undefined budget",
			Description:    "The budget is undisclosed or to be determined.",
			Pattern:        `(?i)\bbudget\s+(?:is\s+)?(?:tbd|to\s+be\s+(?:determined|confirmed)|not\s+(?:disclosed|specified|available))\b|\bno\s+budget\b`,
			Recommendation: "Ask for a budget range before investing in a detailed proposal.",
		},
		{
			Type:           constants.RiskFeasibility,
			Severity:       constants.SeverityLow,
			Title:          "Open-ended scope",
			Description:    "The scope includes catch-all work beyond the listed items.",
			Pattern:        `(?i)\b(?:any\s+other\s+(?:tasks?|services?|work)|other\s+duties\s+as\s+assigned|including\s+but\s+not\s+limited\s+to|and\s+so\s+on)\b`,
			Recommendation: "List the exact deliverables in scope and state that other work is a change request.",
		},
		{
			Type:           constants.RiskProcess,
			Severity:       constants.SeverityMedium,
			Title:          "No Q&A window",
			Description:    "Clarification questions will not be accepted.",
			Pattern:        `(?i)\bno\s+(?:questions|clarifications|inquiries|enquiries)\s+(?:will\s+be\s+)?(?:accepted|answered|entertained)\b|\bno\s+(?:q&a|clarification)\s+(?:period|window|session)\b|لن\s+يتم\s+(?:الرد\s+على|قبول)\s+(?:الاستفسارات|الأسئلة)`,
			Recommendation: "Document every assumption explicitly in the proposal.",
		},
		{
			Type:           constants.RiskProcess,
			Severity:       constants.SeverityLow,
			Title:          "Free spec work",
			Description:    "Unpaid creative or prototype work is expected with the proposal.",
			Pattern:        `(?i)\b(?:spec(?:ulative)?\s+work|free\s+(?:pitch|concepts?|prototype|samples?)|(?:concepts?|designs?|mock-?ups?)\s+(?:must|shall|should)\s+be\s+(?:included|submitted)\s+(?:with|in)\s+the\s+proposal)\b`,
			Recommendation: "Limit pitch work to references and approach, or ask for a pitch fee.",
		},
		{
			Type:           constants.RiskProcess,
			Severity:       constants.SeverityLow,
			Title:          "Lowest price wins",
			Description:    "The award goes to the lowest bid regardless of quality.",
			Pattern:        `(?i)\b(?:lowest\s+(?:price|bid|cost|offer)\s+(?:will\s+)?(?:wins?|be\s+(?:awarded|selected)))\b|\baward\w*\s+(?:to\s+)?the\s+lowest\b|أقل\s+سعر`,
			Recommendation: "Decide whether to compete on price before committing to a full proposal.",
		},
	}
}
