package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

// AllowedExt checks if a file extension is one the loader understands (txt/md/json).
func AllowedExt(ext string) bool {
	_, ok := constants.DocumentExtensions[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return base != "." && base != ".." && strings.HasPrefix(base, ".")
}
