package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadFile_TextPages(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "rfp.txt", "Client: Test Corporation Inc.\r\n\r\n\r\n\r\nPage one\fScope of Work\tDesign")

	doc, err := NewFSLoader(nil).LoadFile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "txt", doc.FileExt)
	assert.Len(t, doc.HashHex, 64)
	assert.Equal(t, constants.English, doc.Parsed.PrimaryLanguage)
	assert.Equal(t, "Client: Test Corporation Inc.\n\nPage one\n\nScope of Work Design", doc.Parsed.RawText)
	assert.Empty(t, doc.Parsed.Sections)

	require.Len(t, doc.Parsed.EvidenceMap, 2)
	second := doc.Parsed.EvidenceMap[1]
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, "Scope of Work Design", doc.Parsed.RawText[second.StartOffset:second.EndOffset])
	assert.Equal(t, 2, doc.Parsed.PageAt(second.StartOffset))
}

func TestLoadFile_MarkdownSections(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "rfp.md", "# Request for Proposal\nIntro\n\n## Scope of Work\n- Design\n- Build\n\n## Evaluation Criteria\nPrice 40%\n")

	doc, err := NewFSLoader(nil).LoadFile(context.Background(), p)
	require.NoError(t, err)
	secs := doc.Parsed.Sections
	require.Len(t, secs, 3)
	assert.Equal(t, "Scope of Work", secs[1].Name)
	assert.Equal(t, "## Scope of Work\n- Design\n- Build\n\n", doc.Parsed.SectionText(secs[1]))
	assert.Equal(t, secs[1].EndOffset, secs[2].StartOffset)
	assert.Equal(t, len(doc.Parsed.RawText), secs[2].EndOffset)
}

func TestLoadFile_ArabicDetected(t *testing.T) {
	p := writeFile(t, t.TempDir(), "ar.txt", "طلب تقديم عروض لتصميم الموقع الإلكتروني للجهة")
	doc, err := NewFSLoader(nil).LoadFile(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, constants.Arabic, doc.Parsed.PrimaryLanguage)
}

func TestLoadFile_JSON(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "doc.json", `{"rawText":"Scope of Work\nDesign","primaryLanguage":"english",
		"sections":[{"name":"Scope of Work","startOffset":0,"endOffset":20}],
		"evidenceMap":[{"page":3,"startOffset":0,"endOffset":20}]}`)

	doc, err := NewFSLoader(nil).LoadFile(context.Background(), good)
	require.NoError(t, err)
	assert.Equal(t, constants.English, doc.Parsed.PrimaryLanguage)
	assert.Equal(t, 3, doc.Parsed.PageAt(5))

	cases := map[string]string{
		"bad-offsets.json": `{"rawText":"short","sections":[{"name":"x","startOffset":0,"endOffset":99}]}`,
		"bad-lang.json":    `{"rawText":"short","primaryLanguage":"french"}`,
		"unknown.json":     `{"clientName":"not a parsed document"}`,
		"broken.json":      `{"rawText":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewFSLoader(nil).LoadFile(context.Background(), writeFile(t, dir, name, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	p := writeFile(t, t.TempDir(), "rfp.pdf", "%PDF")
	_, err := NewFSLoader(nil).LoadFile(context.Background(), p)
	assert.ErrorContains(t, err, "unsupported")
}

func TestLoadPath_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Client: A")
	writeFile(t, dir, "nested/b.md", "# B\nbody")
	writeFile(t, dir, "nested/c.json", `{"rawText":`)
	writeFile(t, dir, "skip.pdf", "%PDF")
	writeFile(t, dir, ".hidden/d.txt", "hidden")

	results, stats, err := NewFSLoader(nil).LoadPath(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), stats.Matched)
	assert.Equal(t, uint32(2), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Len(t, results, 3)
	for _, r := range results {
		if filepath.Ext(r.SourcePath) == ".json" {
			assert.NotEmpty(t, r.Err)
			assert.Nil(t, r.Document)
		} else {
			assert.Empty(t, r.Err)
			require.NotNil(t, r.Document)
		}
	}
}

func TestLoadPath_SingleFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "one.txt", "Client: One")
	results, stats, err := NewFSLoader(nil).LoadPath(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Succeeded)
	require.Len(t, results, 1)
	assert.Equal(t, "Client: One", results[0].Document.Parsed.RawText)
}

func TestStartWatcher_EmitsNewDocuments(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, "existing.txt", "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit existing file")
	}

	created := writeFile(t, dir, "new.md", "# New")
	writeFile(t, dir, "ignored.pdf", "%PDF")
	select {
	case p := <-events:
		assert.Equal(t, created, p)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not emit created file")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
