package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

const maxOtherRequirements = 5

var (
	reEmail          = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	reSubmissionLine = regexp.MustCompile(`(?i)submi|proposals?\s+(?:must|shall|should)\s+be\s+(?:sent|delivered)|send\s+(?:your\s+)?proposal|تقديم|العروض`)
	reMethodEmail    = regexp.MustCompile(`(?i)\be-?mail\b|البريد\s+الإلكتروني`)
	reMethodPortal   = regexp.MustCompile(`(?i)\b(?:portal|online\s+platform|e-?procurement|etimad|upload(?:ed)?)\b|منصة|بوابة|اعتماد`)
	reMethodPhysical = regexp.MustCompile(`(?i)\b(?:hand[\s-]?deliver(?:ed|y)?|by\s+hand|courier|sealed\s+envelope|hard\s+cop(?:y|ies)|physical(?:ly)?|in\s+person)\b|مظروف|باليد`)
	reAddressLabel   = regexp.MustCompile(`(?im)^[ \t]*(?:(?:delivery|submission|mailing|physical)[ \t]+)?address[ \t]*[:：][ \t]*(.+)$|^[ \t]*العنوان[ \t]*[:：][ \t]*(.+)$`)
	reCopies         = regexp.MustCompile(`(?i)\b(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten)\s*(?:\(\d{1,2}\)\s*)?(?:printed\s+|hard\s+|bound\s+|original\s+)?cop(?:y|ies)\b`)

	formatVocabulary = []struct {
		re   *regexp.Regexp
		name string
	}{
		{regexp.MustCompile(`(?i)\bpdf\b`), "PDF"},
		{regexp.MustCompile(`(?i)\b(?:ms\s+)?word\b|\.docx?\b`), "Word"},
		{regexp.MustCompile(`(?i)\bexcel\b|\.xlsx?\b`), "Excel"},
		{regexp.MustCompile(`(?i)\bpowerpoint\b|\.pptx?\b`), "PowerPoint"},
		{regexp.MustCompile(`(?i)\bhard\s+cop(?:y|ies)\b|\bprinted\b`), "Hard copy"},
		{regexp.MustCompile(`(?i)\busb\b|flash\s+drive`), "USB"},
		{regexp.MustCompile(`(?i)\bsealed\s+envelopes?\b`), "Sealed envelope"},
	}

	otherRequirementRules = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:not\s+exceed|maximum\s+of|no\s+more\s+than|limited\s+to)\s+\d+\s+pages?\b`),
		regexp.MustCompile(`(?i)\b(?:signed|stamped)\b`),
		regexp.MustCompile(`(?i)\bvalid(?:ity)?\s+(?:for|of)\s+\d+\s+days\b`),
		regexp.MustCompile(`(?i)\b(?:in|written\s+in)\s+(?:english|arabic)\b|باللغة\s+(?:العربية|الإنجليزية)`),
		regexp.MustCompile(`(?i)\bseparate\s+(?:technical|financial)\b|\btechnical\s+and\s+financial\s+proposals?\s+(?:must|shall|should)\s+be\s+separate`),
		regexp.MustCompile(`(?i)\bbid\s+bond\b|\bguarantee\b|ضمان`),
		regexp.MustCompile(`(?i)\bsubject\s+line\b|\breference\s+number\b`),
	}

	wordNumbers = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	}
)

// ParseSubmission reads how, where and in what form proposals are delivered.
// Method and Format are empty when the text does not say.
func ParseSubmission(rawText string) entity.SubmissionRequirements {
	text := textnorm.CleanSource(rawText)
	lines := strings.Split(text, "\n")

	var relevant []string
	for _, l := range lines {
		if reSubmissionLine.MatchString(l) {
			relevant = append(relevant, l)
		}
	}
	focus := strings.Join(relevant, "\n")

	req := entity.SubmissionRequirements{OtherRequirements: []string{}}
	req.Email = firstEmail(focus, text)
	req.Method = detectMethod(focus)
	if req.Method == "" {
		req.Method = detectMethod(text)
	}
	if req.Method == "" && req.Email != "" {
		req.Method = constants.SubmissionEmail
	}

	if m := reAddressLabel.FindStringSubmatch(text); m != nil {
		req.PhysicalAddress = textnorm.Clean(m[1] + m[2])
	}

	req.Format = detectFormat(focus)
	if req.Format == "" {
		req.Format = detectFormat(text)
	}

	if m := reCopies.FindStringSubmatch(text); m != nil {
		if n, ok := copiesValue(m[1]); ok {
			req.Copies = &n
		}
	}

	seen := map[string]struct{}{}
	for _, l := range lines {
		if len(req.OtherRequirements) == maxOtherRequirements {
			break
		}
		for _, re := range otherRequirementRules {
			if !re.MatchString(l) {
				continue
			}
			item := textnorm.Clean(textnorm.StripListMarkers(l))
			k := textnorm.Key(item)
			if _, dup := seen[k]; dup || item == "" {
				break
			}
			seen[k] = struct{}{}
			req.OtherRequirements = append(req.OtherRequirements, item)
			break
		}
	}
	return req
}

func firstEmail(focus, text string) string {
	if e := reEmail.FindString(focus); e != "" {
		return e
	}
	return reEmail.FindString(text)
}

func detectMethod(s string) string {
	switch {
	case s == "":
		return ""
	case reMethodPortal.MatchString(s):
		return constants.SubmissionPortal
	case reMethodEmail.MatchString(s) || reEmail.MatchString(s):
		return constants.SubmissionEmail
	case reMethodPhysical.MatchString(s):
		return constants.SubmissionPhysical
	}
	return ""
}

func detectFormat(s string) string {
	var names []string
	for _, f := range formatVocabulary {
		if f.re.MatchString(s) {
			names = append(names, f.name)
		}
	}
	return strings.Join(names, ", ")
}

func copiesValue(s string) (int, bool) {
	if n, ok := wordNumbers[strings.ToLower(s)]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// NormalizeMethod maps free-text method descriptions onto email, portal or physical.
// Unrecognised text is kept as written.
func NormalizeMethod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if constants.IsKnownSubmissionMethod(strings.ToLower(s)) {
		return strings.ToLower(s)
	}
	if m := detectMethod(s); m != "" {
		return m
	}
	return textnorm.Clean(s)
}

// NormalizeFormat canonicalises known format names and keeps anything else as written.
func NormalizeFormat(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f := detectFormat(s); f != "" {
		return f
	}
	return textnorm.Clean(s)
}
