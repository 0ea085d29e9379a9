// Package dates finds, classifies, de-duplicates and reconciles the dates of an RFP.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// Years outside this window are treated as reference numbers, not dates.
const (
	minYear = 2000
	maxYear = 2100
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
	"يناير": time.January, "فبراير": time.February, "مارس": time.March,
	"أبريل": time.April, "ابريل": time.April, "إبريل": time.April,
	"مايو": time.May, "يونيو": time.June, "يوليو": time.July,
	"أغسطس": time.August, "اغسطس": time.August, "سبتمبر": time.September,
	"أكتوبر": time.October, "اكتوبر": time.October, "نوفمبر": time.November, "ديسمبر": time.December,
}

const (
	enMonth = `(?i:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sept?(?:ember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	arMonth = `(?:يناير|فبراير|مارس|أبريل|ابريل|إبريل|مايو|يونيو|يوليو|أغسطس|اغسطس|سبتمبر|أكتوبر|اكتوبر|نوفمبر|ديسمبر)`
)

var (
	reISO      = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reNumeric  = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\b`)
	reMonthDY  = regexp.MustCompile(`\b(` + enMonth + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	reDMonthY  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + enMonth + `)\.?,?\s+(\d{4})\b`)
	reArDMonth = regexp.MustCompile(`(\d{1,2})\s+(` + arMonth + `)\s+(\d{4})`)
)

var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// Match is a date token found in a line.
type Match struct {
	ISO   string
	Raw   string
	Start int
	End   int
}

// Find returns the first date in s, trying ISO, then numeric day/month/year,
// then month-name forms.
func Find(s string) (Match, bool) {
	s = arabicDigits.Replace(s)
	if m := reISO.FindStringSubmatchIndex(s); m != nil {
		if iso, ok := build(s[m[2]:m[3]], s[m[4]:m[5]], s[m[6]:m[7]]); ok {
			return Match{ISO: iso, Raw: s[m[0]:m[1]], Start: m[0], End: m[1]}, true
		}
	}
	if m := reNumeric.FindStringSubmatchIndex(s); m != nil {
		if iso, ok := build(s[m[6]:m[7]], s[m[4]:m[5]], s[m[2]:m[3]]); ok {
			return Match{ISO: iso, Raw: s[m[0]:m[1]], Start: m[0], End: m[1]}, true
		}
	}

	var best Match
	found := false
	consider := func(m []int, year, month, day string) {
		if m == nil || (found && m[0] >= best.Start) {
			return
		}
		mon, ok := monthNames[strings.ToLower(month)]
		if !ok {
			return
		}
		if iso, ok := build(year, strconv.Itoa(int(mon)), day); ok {
			best = Match{ISO: iso, Raw: s[m[0]:m[1]], Start: m[0], End: m[1]}
			found = true
		}
	}
	if m := reMonthDY.FindStringSubmatchIndex(s); m != nil {
		consider(m, s[m[6]:m[7]], s[m[2]:m[3]], s[m[4]:m[5]])
	}
	if m := reDMonthY.FindStringSubmatchIndex(s); m != nil {
		consider(m, s[m[6]:m[7]], s[m[4]:m[5]], s[m[2]:m[3]])
	}
	if m := reArDMonth.FindStringSubmatchIndex(s); m != nil {
		consider(m, s[m[6]:m[7]], s[m[4]:m[5]], s[m[2]:m[3]])
	}
	return best, found
}

// Parse returns s's first date as YYYY-MM-DD.
func Parse(s string) (string, bool) {
	m, ok := Find(s)
	return m.ISO, ok
}

func build(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	mo, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if y < minYear || y > maxYear || mo < 1 || mo > 12 || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != mo {
		return "", false
	}
	return t.Format(isoLayout), true
}
