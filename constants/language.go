package constants

import "strings"

// Language is the primary-language tag of a parsed document.
type Language string

const (
	Arabic  Language = "arabic"
	English Language = "english"
	Mixed   Language = "mixed"
)

// ParseLanguage returns the tag for s, or false when s is not a known tag.
func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case Arabic:
		return Arabic, true
	case English:
		return English, true
	case Mixed:
		return Mixed, true
	}
	return "", false
}

// DocumentExtensions holds the file extensions the document loader accepts.
var DocumentExtensions = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
