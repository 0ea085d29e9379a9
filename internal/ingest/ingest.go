package ingest

import (
	"context"

	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// Document is one loaded source file ready for the pipeline.
type Document struct {
	SourcePath string
	HashHex    string
	FileExt    string
	Parsed     entity.ParsedDocument
}

// LoadResult is the per-file load outcome.
type LoadResult struct {
	SourcePath string
	Document   *Document
	Err        string
}

// DirStats summarizes a directory load.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// Loader is the behavior the CLI depends on.
type Loader interface {
	// LoadFile loads a single file.
	LoadFile(ctx context.Context, path string) (*Document, error)
	// LoadPath loads a file, or every matching file under a directory.
	LoadPath(ctx context.Context, root string) ([]LoadResult, DirStats, error)
}
