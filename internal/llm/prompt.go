package llm

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputChars bounds the source text sent to the model.
const DefaultMaxInputChars = 100_000

// BuildInstructions composes the fixed extraction instructions sent with every document.
func BuildInstructions() string {
	parts := []string{
		"You extract structured facts from a request for proposal (RFP). Return ONLY one JSON object that matches the JSON Schema provided.",
		"Copy names exactly as written. When the document is in Arabic, put an English rendering in 'clientName'/'projectName' and the Arabic original in 'clientNameOriginal'/'projectNameOriginal'.",
		"'projectDescription' is a 2-4 sentence summary of what the client wants.",
		"'scopeOfWork' lists only the work the vendor must perform, one item per line. Do not include submission instructions, deadlines, evaluation criteria, certificates, or legal terms.",
		"'evaluationCriteria' lists each criterion on its own line as 'N. Name (NN%)' followed by its sub-points.",
		"For 'requiredDeliverables', set 'source' to 'verbatim' only when the document explicitly requires the item (must/shall/should include or submit); otherwise use 'inferred'.",
		"Use ISO-8601 dates (YYYY-MM-DD) in 'importantDates'. Set 'type' to one of: qa_deadline, submission_deadline, presentation, other.",
		"'submissionRequirements.method' is how proposals are delivered (email, portal, physical); 'format' is the required file or document format.",
		"'confidence' maps each top-level field name to your confidence between 0 and 1.",
		"Never output null. If a value is not present, use an empty string or an empty array.",
	}
	return strings.Join(parts, " ")
}

// TruncateInput cuts text to at most maxChars characters, never splitting a rune.
// It reports whether anything was cut.
func TruncateInput(text string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		maxChars = DefaultMaxInputChars
	}
	if utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxChars {
			return text[:i], true
		}
		n++
	}
	return text, false
}

// BuildUserPrompt packages the (already truncated) source text.
func BuildUserPrompt(sourceText string, truncated bool) string {
	var b strings.Builder
	b.WriteString("RFP text:\n")
	b.WriteString(strings.TrimSpace(sourceText))
	if truncated {
		b.WriteString("\n…(truncated)")
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}
