package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/extract"
	"github.com/joseph-ayodele/rfp-extractor/internal/ingest"
	"github.com/joseph-ayodele/rfp-extractor/internal/llm/openai"
)

// llm runs the model extractor repeatedly on one document and reports how stable
// the identity fields are across replies.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llm <document> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 5
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}

	cfg, err := common.LoadConfig(os.Getenv("RFP_CONFIG"))
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(2)
	}
	if !cfg.ModelEnabled() {
		logger.Error("OPENAI_API_KEY or RFP_LLM_API_KEY is required")
		os.Exit(2)
	}

	ctx := context.Background()
	doc, err := ingest.NewFSLoader(logger).LoadFile(ctx, path)
	if err != nil {
		logger.Error("load document", "path", path, "error", err)
		os.Exit(1)
	}

	client := openai.NewClient(openai.Config{
		Model:              cfg.LLM.Model,
		APIKey:             cfg.LLM.APIKey,
		BaseURL:            cfg.LLM.BaseURL,
		Temperature:        cfg.LLM.Temperature,
		Timeout:            cfg.LLM.Timeout,
		RateLimitPerMinute: int(cfg.LLM.RateLimitPerMinute),
		MaxRetries:         cfg.LLM.MaxRetries,
	}, logger)
	extractor := extract.NewModelExtractor(client, extract.ModelConfig{
		MaxInputChars: cfg.LLM.MaxInputChars,
		Timeout:       cfg.LLM.Timeout,
	}, logger)

	clients := map[string]int{}
	projects := map[string]int{}
	failures := 0
	for i := 1; i <= times; i++ {
		runCtx := common.WithRequestID(ctx, "llm-check-"+strconv.Itoa(i))
		start := time.Now()
		logger.Info("llm.check.start", "iter", i, "path", doc.SourcePath)

		out, err := extractor.Extract(runCtx, doc.Parsed)
		if err != nil {
			failures++
			logger.Error("llm.check.error", "iter", i, "err", err)
		} else {
			clients[out.ClientName]++
			projects[out.ProjectName]++
			logger.Info("llm.check.ok", "iter", i, "elapsed_ms", time.Since(start).Milliseconds(),
				"client", out.ClientName, "project", out.ProjectName, "warnings", len(out.Warnings))
		}

		time.Sleep(750 * time.Millisecond)
	}

	logger.Info("done", "path", doc.SourcePath, "times", times, "failures", failures,
		"distinct_clients", len(clients), "distinct_projects", len(projects))
}
