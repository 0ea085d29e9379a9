package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/extract"
	"github.com/joseph-ayodele/rfp-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/rfp-extractor/internal/pipeline"
	"github.com/joseph-ayodele/rfp-extractor/internal/repository"
)

// appOptions are the per-command switches that shape wiring.
type appOptions struct {
	Offline  bool   // never call the model
	StoreDSN string // overrides store.dsn; empty keeps the configured value
	NoStore  bool
}

// app bundles everything a command needs. Close releases the store.
type app struct {
	cfg      *common.Config
	log      *slog.Logger
	registry *prometheus.Registry
	pipeline *pipeline.Pipeline
	store    *repository.Store
	runs     repository.RunRepository
}

func loadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

func newApp(ctx context.Context, cfg *common.Config, opts appOptions, logOut io.Writer) (*app, error) {
	logger := common.NewLogger(cfg.Log, logOut)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, log: logger, registry: prometheus.NewRegistry()}

	dsn := cfg.Store.DSN
	if opts.StoreDSN != "" {
		dsn = opts.StoreDSN
	}
	if dsn != "" && !opts.NoStore {
		store, err := repository.Open(ctx, repository.Config{
			DSN:             dsn,
			MaxConns:        cfg.Store.MaxConns,
			MinConns:        cfg.Store.MinConns,
			MaxConnLifetime: cfg.Store.MaxConnLifetime,
			DialTimeout:     cfg.Store.DialTimeout,
		}, logger)
		if err != nil {
			return nil, common.NewAppError(common.CodeConfig, "open run journal", err)
		}
		a.store = store
		a.runs = repository.NewRunRepository(store, logger)
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.NewMetrics(a.registry)),
	}
	if a.runs != nil {
		pipeOpts = append(pipeOpts, pipeline.WithRecorder(a.runs))
	}

	switch {
	case opts.Offline:
		logger.Info("offline mode, model extraction disabled")
	case !cfg.ModelEnabled():
		logger.Warn("model API key not configured, running on deterministic extraction only")
	default:
		client := openai.NewClient(openai.Config{
			APIKey:             cfg.LLM.APIKey,
			BaseURL:            cfg.LLM.BaseURL,
			Model:              cfg.LLM.Model,
			Temperature:        cfg.LLM.Temperature,
			Timeout:            cfg.LLM.Timeout,
			RateLimitPerMinute: int(cfg.LLM.RateLimitPerMinute),
			MaxRetries:         cfg.LLM.MaxRetries,
		}, logger)
		pipeOpts = append(pipeOpts, pipeline.WithModel(extract.NewModelExtractor(client, extract.ModelConfig{
			MaxInputChars: cfg.LLM.MaxInputChars,
			Timeout:       cfg.LLM.Timeout,
		}, logger)))
		logger.Info("model client initialized", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	a.pipeline = pipeline.New(pipeline.ConfigFrom(cfg.Pipeline), pipeOpts...)
	return a, nil
}

// requireRuns fails when the command needs the journal but none is configured.
func (a *app) requireRuns() error {
	if a.runs == nil {
		return fmt.Errorf("no run journal configured: pass --store or set store.dsn")
	}
	return nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// writeMetrics dumps the registry in the Prometheus text format, for node_exporter's textfile collector.
func (a *app) writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
