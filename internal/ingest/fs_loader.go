package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

// maxFileBytes bounds a single source document.
const maxFileBytes = 32 << 20

var reMarkdownHeading = regexp.MustCompile(`^#{1,6}[ \t]+(.+?)[ \t#]*$`)

// FSLoader reads already-converted documents from the local filesystem.
// Plain text is split into pages on form feeds; markdown headings become sections;
// .json files hold a serialized ParsedDocument.
type FSLoader struct {
	SkipHidden bool
	log        *slog.Logger
}

func NewFSLoader(logger *slog.Logger) *FSLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSLoader{SkipHidden: true, log: logger}
}

func (l *FSLoader) LoadFile(ctx context.Context, path string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return nil, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.Size() > maxFileBytes {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	sum := sha256.Sum256(raw)

	var parsed entity.ParsedDocument
	switch ext {
	case "json":
		parsed, err = decodeParsed(raw)
		if err != nil {
			return nil, err
		}
	default:
		parsed = fromText(string(raw), ext == "md")
	}
	if parsed.PrimaryLanguage == "" {
		parsed.PrimaryLanguage = textnorm.DetectLanguage(parsed.RawText)
	}

	l.log.Debug("document loaded", "path", abs, "ext", ext, "language", parsed.PrimaryLanguage,
		"sections", len(parsed.Sections), "pages", len(parsed.EvidenceMap))
	return &Document{
		SourcePath: abs,
		HashHex:    hex.EncodeToString(sum[:]),
		FileExt:    ext,
		Parsed:     parsed,
	}, nil
}

func decodeParsed(raw []byte) (entity.ParsedDocument, error) {
	var doc entity.ParsedDocument
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return doc, fmt.Errorf("decode parsed document: %w", err)
	}
	switch doc.PrimaryLanguage {
	case "", constants.Arabic, constants.English, constants.Mixed:
	default:
		return doc, fmt.Errorf("unknown primaryLanguage %q", doc.PrimaryLanguage)
	}
	n := len(doc.RawText)
	for _, s := range doc.Sections {
		if s.StartOffset < 0 || s.EndOffset > n || s.StartOffset > s.EndOffset {
			return doc, fmt.Errorf("section %q offsets [%d,%d) outside text of length %d", s.Name, s.StartOffset, s.EndOffset, n)
		}
	}
	return doc, nil
}

// fromText cleans each form-feed separated page and records its byte range.
func fromText(raw string, markdown bool) entity.ParsedDocument {
	pages := strings.Split(raw, "\f")
	var b strings.Builder
	var evidence []entity.EvidenceExcerpt
	for i, p := range pages {
		p = textnorm.CleanSource(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		start := b.Len()
		b.WriteString(p)
		evidence = append(evidence, entity.EvidenceExcerpt{Page: i + 1, StartOffset: start, EndOffset: b.Len()})
	}
	doc := entity.ParsedDocument{RawText: b.String(), EvidenceMap: evidence}
	if markdown {
		doc.Sections = markdownSections(doc.RawText)
	}
	if doc.Sections == nil {
		doc.Sections = []entity.Section{}
	}
	if doc.EvidenceMap == nil {
		doc.EvidenceMap = []entity.EvidenceExcerpt{}
	}
	return doc
}

// markdownSections cuts text at ATX headings; each section runs to the next heading.
func markdownSections(text string) []entity.Section {
	var out []entity.Section
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if m := reMarkdownHeading.FindStringSubmatch(strings.TrimRight(line, "\n")); m != nil {
			if len(out) > 0 {
				out[len(out)-1].EndOffset = offset
			}
			out = append(out, entity.Section{Name: strings.TrimSpace(m[1]), StartOffset: offset, EndOffset: len(text)})
		}
		offset += len(line)
	}
	return out
}

// LoadPath walks root (or loads it directly when it is a file). Per-file failures
// are reported in the results and do not stop the walk.
func (l *FSLoader) LoadPath(ctx context.Context, root string) ([]LoadResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, DirStats{}, fmt.Errorf("stat: %w", err)
	}
	if !info.IsDir() {
		stats := DirStats{Scanned: 1, Matched: 1}
		doc, err := l.LoadFile(ctx, root)
		if err != nil {
			stats.Failed++
			return []LoadResult{{SourcePath: root, Err: err.Error()}}, stats, nil
		}
		stats.Succeeded++
		return []LoadResult{{SourcePath: doc.SourcePath, Document: doc}}, stats, nil
	}

	var results []LoadResult
	var stats DirStats

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, LoadResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if l.SkipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		doc, err := l.LoadFile(ctx, path)
		if err != nil {
			l.log.Warn("document load failed", "path", path, "error", err)
			results = append(results, LoadResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		results = append(results, LoadResult{SourcePath: doc.SourcePath, Document: doc})
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	l.log.Info("directory loaded", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "failed", stats.Failed)
	return results, stats, nil
}
