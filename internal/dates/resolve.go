package dates

import (
	"regexp"
	"slices"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

var (
	reAddress = regexp.MustCompile(`(?i)\b(?:street|road|avenue|boulevard|building|floor|suite|district|p\.?\s?o\.?\s*box|postal\s+code|zip\s+code)\b|\b(?:st|rd|ave|blvd|bldg)\.|شارع|طريق|مبنى|الدور|ص\.\s?ب|ص\s?ب\s|الرمز\s+البريدي`)

	reQA           = regexp.MustCompile(`(?i)question|clarification|inquir|enquir|quer(?:y|ies)|q\s?&\s?a|استفسار|أسئلة|الأسئلة`)
	reSubmission   = regexp.MustCompile(`(?i)submission|submit|deadline|closing|due\b|تقديم\s+العروض|آخر\s+موعد|الموعد\s+النهائي|موعد\s+التقديم`)
	rePresentation = regexp.MustCompile(`(?i)presentation|pitch|interview|demo|عرض\s+تقديمي`)
)

// Classify maps a date line onto a DateType by keyword. Questions win over
// deadlines so "Deadline for questions" is a Q&A deadline.
func Classify(line string) constants.DateType {
	switch {
	case reQA.MatchString(line):
		return constants.DateQADeadline
	case reSubmission.MatchString(line):
		return constants.DateSubmissionDeadline
	case rePresentation.MatchString(line):
		return constants.DatePresentation
	default:
		return constants.DateOther
	}
}

// IsAddressLine reports whether line looks like a postal address.
func IsAddressLine(line string) bool {
	return reAddress.MatchString(line)
}

// Candidate is a date found in raw text.
type Candidate struct {
	Title string
	Date  string
	Type  constants.DateType
	Raw   string
	Line  int
}

// Scan returns one candidate per non-address line that carries a date.
// When the date line has no label of its own, a short preceding line is used.
func Scan(text string) []Candidate {
	lines := strings.Split(textnorm.CleanSource(text), "\n")
	var out []Candidate
	for i, line := range lines {
		line = arabicDigits.Replace(line)
		if IsAddressLine(line) {
			continue
		}
		m, ok := Find(line)
		if !ok {
			continue
		}
		title := labelOf(line[:m.Start])
		if title == "" {
			title = labelOf(line[m.End:])
		}
		context := line
		if title == "" && i > 0 {
			prev := textnorm.StripListMarkers(strings.TrimSpace(lines[i-1]))
			if prev != "" && textnorm.WordCount(prev) <= 8 && !IsAddressLine(prev) {
				title = labelOf(prev)
				context = prev + " " + line
			}
		}
		if title == "" {
			title = "Date"
		}
		out = append(out, Candidate{
			Title: title,
			Date:  m.ISO,
			Type:  Classify(context),
			Raw:   m.Raw,
			Line:  i + 1,
		})
	}
	return out
}

func labelOf(s string) string {
	s = textnorm.StripListMarkers(strings.TrimSpace(s))
	s = strings.Trim(s, " :：-–—,()|")
	s = strings.TrimSuffix(strings.TrimSpace(s), " on")
	s = strings.TrimSuffix(s, " by")
	return textnorm.CollapseSpace(s)
}

// Result is the reconciled date list plus anything worth surfacing.
type Result struct {
	Dates     []entity.ImportantDate
	Conflicts []entity.Conflict
	Warnings  []entity.Warning
}

// addressOnly reports whether iso occurs in lines and every occurrence sits
// on an address line.
func addressOnly(iso string, lines []string) bool {
	found := false
	for _, line := range lines {
		line = arabicDigits.Replace(line)
		for rest := line; ; {
			m, ok := Find(rest)
			if !ok {
				break
			}
			if m.ISO == iso {
				if !IsAddressLine(line) {
					return false
				}
				found = true
			}
			rest = rest[m.End:]
		}
	}
	return found
}

// Resolve merges extractor-supplied dates (first) with dates scanned from the
// raw text, reconciles competing submission deadlines and de-duplicates.
// Extracted dates found in the text only on address lines are dropped.
// The returned list is never empty.
func Resolve(extracted []entity.ImportantDate, rawText string) Result {
	var all []entity.ImportantDate
	lines := strings.Split(textnorm.CleanSource(rawText), "\n")
	for _, d := range extracted {
		iso, ok := Parse(d.Date)
		if !ok || iso == constants.SentinelDate || addressOnly(iso, lines) {
			continue
		}
		title := textnorm.Clean(d.Title)
		if title == "" {
			title = "Date"
		}
		typ := constants.ParseDateType(string(d.Type))
		if typ == constants.DateOther {
			typ = Classify(title)
		}
		all = append(all, entity.ImportantDate{Title: title, Date: iso, Type: typ})
	}
	for _, c := range Scan(rawText) {
		all = append(all, entity.ImportantDate{Title: c.Title, Date: c.Date, Type: c.Type})
	}

	var res Result
	var submissions []string
	for _, d := range all {
		if d.Type == constants.DateSubmissionDeadline && !slices.Contains(submissions, d.Date) {
			submissions = append(submissions, d.Date)
		}
	}
	resolved := ""
	if len(submissions) > 0 {
		resolved = submissions[0]
	}
	if len(submissions) > 1 {
		res.Conflicts = append(res.Conflicts, entity.Conflict{
			Field:      string(constants.DateSubmissionDeadline),
			Candidates: submissions,
			Resolution: resolved,
		})
		res.Warnings = append(res.Warnings, entity.Warning{
			Code:    entity.WarnDateConflict,
			Message: "conflicting submission deadlines " + strings.Join(submissions, ", ") + "; using " + resolved,
			Field:   "importantDates",
		})
	}

	seen := map[string]struct{}{}
	for _, d := range all {
		if d.Type == constants.DateSubmissionDeadline && d.Date != resolved {
			continue
		}
		k := dedupeKey(d)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		d.IsCritical = d.Type.IsCritical()
		res.Dates = append(res.Dates, d)
	}
	if len(res.Dates) == 0 {
		res.Dates = []entity.ImportantDate{entity.SentinelDate()}
	}
	return res
}

// dedupeKey is (date, type, normalized title) for untyped dates and (date, type)
// for typed ones, so a model label and a scanned label for one deadline collapse.
func dedupeKey(d entity.ImportantDate) string {
	if d.Type != constants.DateOther {
		return d.Date + "|" + string(d.Type)
	}
	return d.Date + "|" + string(d.Type) + "|" + textnorm.Key(d.Title)
}
