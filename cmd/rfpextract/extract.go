package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rfp-extractor/internal/async"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/ingest"
)

var (
	// extract command flags
	exOffline     bool
	exStore       string
	exWorkers     int
	exMetricsFile string
	exCompact     bool
)

func init() {
	extractCmd.Flags().BoolVar(&exOffline, "offline", false, "skip the model and use deterministic extraction only")
	extractCmd.Flags().StringVar(&exStore, "store", "", "run journal DSN (postgres://... or a SQLite file path)")
	extractCmd.Flags().IntVar(&exWorkers, "workers", 0, "parallel documents (defaults to batch.workers)")
	extractCmd.Flags().StringVar(&exMetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
	extractCmd.Flags().BoolVar(&exCompact, "compact", false, "print one JSON object per line instead of indented JSON")
}

var extractCmd = &cobra.Command{
	Use:   "extract <file|dir>",
	Short: "Extract records from a document or every document under a directory",
	Long: `Extract structured records from RFP documents.

A single file prints its record. A directory prints one result per document,
each carrying the source path and either the record or the error.

Examples:
  # Extract one document with the model (falls back to rules on failure)
  rfpextract extract rfp.txt

  # Extract a folder offline and journal every run to SQLite
  rfpextract extract ./rfps --offline --store runs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// batchOutput is one line of a directory extraction.
type batchOutput struct {
	Source    string                   `json:"source"`
	Record    *entity.ExtractionRecord `json:"record,omitempty"`
	Error     string                   `json:"error,omitempty"`
	ErrorCode string                   `json:"errorCode,omitempty"`
}

// errSomeFailed makes the process exit non-zero after all output was written.
var errSomeFailed = errors.New("one or more documents failed")

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if exWorkers > 0 {
		cfg.Batch.Workers = exWorkers
	}
	a, err := newApp(ctx, cfg, appOptions{Offline: exOffline, StoreDSN: exStore}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.extractPath(ctx, args[0], cmd.OutOrStdout(), !exCompact)
	if merr := a.writeMetrics(exMetricsFile); merr != nil && err == nil {
		err = merr
	}
	return err
}

func (a *app) extractPath(ctx context.Context, path string, out io.Writer, indent bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	loader := ingest.NewFSLoader(a.log)
	enc := json.NewEncoder(out)
	if indent {
		enc.SetIndent("", "  ")
	}

	if !info.IsDir() {
		doc, err := loader.LoadFile(ctx, path)
		if err != nil {
			return err
		}
		rec, err := a.pipeline.Run(ctx, doc.Parsed)
		if err != nil {
			return err
		}
		return enc.Encode(rec)
	}

	loaded, stats, err := loader.LoadPath(ctx, path)
	if err != nil {
		return err
	}
	failed := stats.Failed > 0

	var jobs []async.Job
	outputs := make([]batchOutput, len(loaded))
	for i, r := range loaded {
		outputs[i].Source = r.SourcePath
		if r.Document == nil {
			outputs[i].Error = r.Err
			outputs[i].ErrorCode = common.CodeInvalidInput
			continue
		}
		jobs = append(jobs, async.Job{Index: i, Name: r.SourcePath, Document: r.Document.Parsed})
	}

	results := async.RunBatch(ctx, a.pipeline, jobs, a.log,
		async.WithWorkers(a.cfg.Batch.Workers),
		async.WithProcessTimeout(a.cfg.Batch.DocumentTimeout),
		async.WithQueueSize(len(jobs)))
	for _, r := range results {
		o := &outputs[r.Job.Index]
		if r.Err != nil {
			failed = true
			o.Error = r.Err.Error()
			o.ErrorCode = errorCode(r.Err)
			continue
		}
		o.Record = r.Record
	}

	for _, o := range outputs {
		if err := enc.Encode(o); err != nil {
			return err
		}
	}
	a.log.Info("extraction finished", "root", path, "documents", len(outputs), "failed", failed)
	if failed {
		return errSomeFailed
	}
	return nil
}

func errorCode(err error) string {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr.Code
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return common.CodeExtractionFailed
	}
}
