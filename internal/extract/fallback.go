package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/dates"
	"github.com/joseph-ayodele/rfp-extractor/internal/deliverables"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

// Confidence levels of the deterministic path. All sit below what the model path reports.
const (
	confLabel      = 0.7
	confPhrase     = 0.5
	confSection    = 0.75
	confHeading    = 0.65
	confExcerpt    = 0.35
	confFound      = 0.6
	confNotFound   = 0.3
	maxBlockLines  = 80
	maxHeadingWord = 8
	evidenceRunes  = 200
)

var reBilingualSep = regexp.MustCompile(`\s*[/|]\s*|\s*[(（)）]\s*`)

// DeterministicExtractor is the offline resilience path. Extract is a pure
// function of its inputs.
type DeterministicExtractor struct {
	rules        Rules
	deliverables *deliverables.Classifier
}

func NewDeterministicExtractor(rules Rules, d *deliverables.Classifier) *DeterministicExtractor {
	if rules.ExcerptChars <= 0 {
		rules.ExcerptChars = 600
	}
	return &DeterministicExtractor{rules: rules, deliverables: d}
}

// Extract pulls every field straight out of rawText, preferring detected sections.
func (e *DeterministicExtractor) Extract(rawText string, sections []entity.Section) Output {
	out := Output{
		Confidence: map[string]float64{},
		Method:     constants.MethodDeterministic,
	}

	if v, off, ok := labelValue(e.rules.ClientLabel, rawText); ok {
		out.ClientName, out.ClientNameOriginal = splitBilingual(v)
		out.Confidence[entity.FieldClientName] = confLabel
		out.Evidence = append(out.Evidence, evidenceAt(rawText, entity.FieldClientName, off))
	} else if v, off, ok := labelValue(e.rules.ClientPhrase, rawText); ok {
		out.ClientName, out.ClientNameOriginal = splitBilingual(v)
		out.Confidence[entity.FieldClientName] = confPhrase
		out.Evidence = append(out.Evidence, evidenceAt(rawText, entity.FieldClientName, off))
	} else {
		out.Confidence[entity.FieldClientName] = 0
	}

	if v, off, ok := labelValue(e.rules.ProjectLabel, rawText); ok {
		out.ProjectName, out.ProjectNameOriginal = splitBilingual(v)
		out.Confidence[entity.FieldProjectName] = confLabel
		out.Evidence = append(out.Evidence, evidenceAt(rawText, entity.FieldProjectName, off))
	} else if v, off, ok := labelValue(e.rules.ProjectTitle, rawText); ok {
		out.ProjectName, out.ProjectNameOriginal = splitBilingual(v)
		out.Confidence[entity.FieldProjectName] = confPhrase
		out.Evidence = append(out.Evidence, evidenceAt(rawText, entity.FieldProjectName, off))
	} else {
		out.Confidence[entity.FieldProjectName] = 0
	}

	blocks := []struct {
		field   string
		heading *regexp.Regexp
		dst     *string
	}{
		{entity.FieldProjectDescription, e.rules.DescriptionHeading, &out.ProjectDescription},
		{entity.FieldScopeOfWork, e.rules.ScopeHeading, &out.ScopeOfWork},
		{entity.FieldEvaluationCriteria, e.rules.CriteriaHeading, &out.EvaluationCriteria},
	}
	for _, b := range blocks {
		text, off, conf := e.locate(rawText, sections, b.heading)
		*b.dst = text
		out.Confidence[b.field] = conf
		if text == "" {
			continue
		}
		out.Evidence = append(out.Evidence, evidenceAt(rawText, b.field, off))
		if conf == confExcerpt {
			out.Warnings = append(out.Warnings, entity.Warning{
				Code:    entity.WarnExcerptFallback,
				Message: "no section or heading found; used a fixed-length excerpt",
				Field:   b.field,
			})
		}
	}

	out.Deliverables = []entity.Deliverable{}
	if e.deliverables != nil {
		for _, c := range e.deliverables.Collect(rawText) {
			src := constants.Inferred
			if c.Explicit {
				src = constants.Verbatim
			}
			out.Deliverables = append(out.Deliverables, entity.Deliverable{Item: c.Text, Source: src})
		}
	}
	out.Confidence[entity.FieldRequiredDeliverables] = foundConf(len(out.Deliverables) > 0)

	out.Dates = []entity.ImportantDate{}
	for _, c := range dates.Scan(rawText) {
		out.Dates = append(out.Dates, entity.ImportantDate{
			Title:      c.Title,
			Date:       c.Date,
			Type:       c.Type,
			IsCritical: c.Type.IsCritical(),
		})
	}
	out.Confidence[entity.FieldImportantDates] = foundConf(len(out.Dates) > 0)

	out.Submission = ParseSubmission(rawText)
	out.Confidence[entity.FieldSubmissionRequirements] = foundConf(out.Submission.Method != "")

	return out
}

func foundConf(found bool) float64 {
	if found {
		return confFound
	}
	return confNotFound
}

// locate finds a text block by section, then by heading, then falls back to an excerpt.
func (e *DeterministicExtractor) locate(rawText string, sections []entity.Section, heading *regexp.Regexp) (string, int, float64) {
	doc := entity.ParsedDocument{RawText: rawText}
	for _, s := range sections {
		if !heading.MatchString(strings.TrimSpace(s.Name)) {
			continue
		}
		if t := dropHeadingLine(doc.SectionText(s), heading); t != "" {
			return t, s.StartOffset, confSection
		}
	}
	if t, off, ok := e.headingBlock(rawText, heading); ok {
		return t, off, confHeading
	}
	if t := excerpt(rawText, e.rules.ExcerptChars); t != "" {
		return t, 0, confExcerpt
	}
	return "", -1, 0
}

func dropHeadingLine(text string, heading *regexp.Regexp) string {
	text = strings.TrimSpace(text)
	first, rest, found := strings.Cut(text, "\n")
	if heading.MatchString(cleanHeading(first)) && textnorm.WordCount(first) <= maxHeadingWord {
		if !found {
			return ""
		}
		text = rest
	}
	return strings.TrimSpace(text)
}

// headingBlock returns the lines following a heading matched by heading, up to the next heading.
func (e *DeterministicExtractor) headingBlock(rawText string, heading *regexp.Regexp) (string, int, bool) {
	lines := strings.SplitAfter(rawText, "\n")
	offset := 0
	for i, raw := range lines {
		lineOff := offset
		offset += len(raw)
		t := cleanHeading(raw)
		if t == "" {
			continue
		}

		var body []string
		switch {
		case heading.MatchString(t) && (isStrongHeading(t) || textnorm.WordCount(t) <= 5):
		default:
			prefix, inline, ok := strings.Cut(t, ":")
			if !ok || !heading.MatchString(prefix) || textnorm.WordCount(prefix) > 5 || strings.TrimSpace(inline) == "" {
				continue
			}
			body = append(body, strings.TrimSpace(inline))
		}

		for j := i + 1; j < len(lines) && j <= i+maxBlockLines; j++ {
			next := cleanHeading(lines[j])
			if next != "" && e.endsBlock(next) {
				break
			}
			body = append(body, strings.TrimRight(lines[j], "\r\n"))
		}
		if text := strings.TrimSpace(strings.Join(body, "\n")); text != "" {
			return text, lineOff, true
		}
	}
	return "", -1, false
}

func (e *DeterministicExtractor) endsBlock(t string) bool {
	if isStrongHeading(t) {
		return true
	}
	if strings.Contains(t, "%") || textnorm.WordCount(t) > 5 {
		return false
	}
	for _, re := range []*regexp.Regexp{e.rules.DescriptionHeading, e.rules.ScopeHeading, e.rules.CriteriaHeading, e.rules.OtherHeadings} {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

func cleanHeading(line string) string {
	t := strings.TrimSpace(line)
	t = strings.ReplaceAll(t, "**", "")
	return strings.TrimSpace(t)
}

// isStrongHeading is a short all-caps line or a markdown heading.
func isStrongHeading(t string) bool {
	if strings.HasPrefix(t, "#") {
		return true
	}
	if textnorm.WordCount(t) > maxHeadingWord || strings.Contains(t, "%") {
		return false
	}
	letters := 0
	for _, r := range t {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			letters++
		}
	}
	return letters >= 2
}

func excerpt(rawText string, n int) string {
	return textnorm.Truncate(textnorm.CollapseSpace(textnorm.CleanSource(rawText)), n)
}

func labelValue(re *regexp.Regexp, text string) (string, int, bool) {
	m := re.FindStringSubmatchIndex(text)
	if m == nil || m[2] < 0 {
		return "", -1, false
	}
	v := textnorm.Clean(text[m[2]:m[3]])
	if v == "" {
		return "", -1, false
	}
	return v, m[0], true
}

// splitBilingual separates "Ministry of Culture / وزارة الثقافة" into the Latin
// name and the Arabic original. Single-script values come back unchanged, with
// Arabic-only values also reported as the original.
func splitBilingual(v string) (name, original string) {
	if !textnorm.HasArabic(v) {
		return v, ""
	}
	var latin, arabic []string
	for _, part := range reBilingualSep.Split(v, -1) {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case textnorm.HasArabic(part):
			arabic = append(arabic, part)
		default:
			latin = append(latin, part)
		}
	}
	original = strings.Join(arabic, " ")
	if len(latin) == 0 {
		return original, original
	}
	return strings.Join(latin, " "), original
}

func evidenceAt(rawText, field string, offset int) EvidenceSpan {
	if offset < 0 || offset >= len(rawText) {
		return EvidenceSpan{Field: field, Offset: -1}
	}
	start := strings.LastIndexByte(rawText[:offset], '\n') + 1
	end := strings.IndexByte(rawText[offset:], '\n')
	if end < 0 {
		end = len(rawText)
	} else {
		end += offset
	}
	line := strings.TrimSpace(rawText[start:end])
	if line == "" {
		line = strings.TrimSpace(rawText[offset:min(len(rawText), offset+evidenceRunes)])
	}
	return EvidenceSpan{
		Field:   field,
		Offset:  offset,
		Excerpt: textnorm.Truncate(strings.ToValidUTF8(line, ""), evidenceRunes),
	}
}
