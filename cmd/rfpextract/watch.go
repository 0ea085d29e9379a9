package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/rfp-extractor/internal/async"
	"github.com/joseph-ayodele/rfp-extractor/internal/ingest"
)

var (
	// watch command flags
	wOffline     bool
	wStore       string
	wInitialScan bool
	wDebounce    time.Duration
	wMetricsAddr string
)

func init() {
	watchCmd.Flags().BoolVar(&wOffline, "offline", false, "skip the model and use deterministic extraction only")
	watchCmd.Flags().StringVar(&wStore, "store", "", "run journal DSN (postgres://... or a SQLite file path)")
	watchCmd.Flags().BoolVar(&wInitialScan, "initial-scan", false, "also extract documents already present")
	watchCmd.Flags().DurationVar(&wDebounce, "debounce", 500*time.Millisecond, "coalesce rapid writes to the same file")
	watchCmd.Flags().StringVar(&wMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Extract documents as they appear under one or more directories",
	Long: `Watch directories and run extraction on every new or rewritten document.

Runs are journaled when a store is configured; records are logged by run.
Stop with Ctrl-C; in-flight documents finish first.

Examples:
  rfpextract watch ./inbox --store runs.db --metrics-addr :9102`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, appOptions{Offline: wOffline, StoreDSN: wStore}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if wMetricsAddr != "" {
		srv := &http.Server{Addr: wMetricsAddr, Handler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			a.log.Info("serving metrics", "addr", wMetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(sctx)
		}()
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       args,
		InitialScan: wInitialScan,
		Debounce:    wDebounce,
		SkipHidden:  true,
	}, a.log)
	if err != nil {
		return err
	}

	// In-flight documents run on a context that survives the signal so they can finish.
	var q async.Queue = async.NewProcessorQueue(context.WithoutCancel(ctx), a.pipeline, a.log,
		async.WithWorkers(a.cfg.Batch.Workers),
		async.WithProcessTimeout(a.cfg.Batch.DocumentTimeout))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range q.Results() {
			if r.Err != nil {
				a.log.Warn("watched document failed", "document", r.Job.Name, "code", errorCode(r.Err), "error", r.Err)
				continue
			}
			a.log.Info("watched document extracted", "document", r.Job.Name,
				"method", r.Record.ExtractionMethod, "overall", r.Record.ConfidenceScores.Overall,
				"warnings", len(r.Record.Warnings), "elapsed_ms", r.Elapsed.Milliseconds())
		}
	}()

	loader := ingest.NewFSLoader(a.log)
	for events != nil || errs != nil {
		select {
		case path, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			doc, err := loader.LoadFile(ctx, path)
			if err != nil {
				a.log.Warn("document load failed", "path", path, "error", err)
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Name: doc.SourcePath, Document: doc.Parsed}); err != nil {
				a.log.Warn("enqueue failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.log.Warn("watch error", "error", err)
		}
	}

	a.log.Info("watcher stopped, draining queue")
	q.Shutdown(context.Background())
	<-done
	return nil
}
