// Package pipeline sequences extraction, classification, date resolution,
// verification, red-flag detection and completeness auditing into one record.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/completeness"
	"github.com/joseph-ayodele/rfp-extractor/internal/confidence"
	"github.com/joseph-ayodele/rfp-extractor/internal/dates"
	"github.com/joseph-ayodele/rfp-extractor/internal/deliverables"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/extract"
	"github.com/joseph-ayodele/rfp-extractor/internal/redflags"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
	"github.com/joseph-ayodele/rfp-extractor/internal/verify"
)

// Config holds the tuned constants of every stage.
type Config struct {
	GroundingThreshold  float64
	GroundingTerms      int
	CompletenessPenalty float64
	CategoryCap         int
	TitleRepeatCap      int
	ScopeMaxItems       int
	ScopeMinWords       int
	Weights             confidence.Weights
}

// ConfigFrom maps the loaded configuration section onto the pipeline.
func ConfigFrom(c common.PipelineConfig) Config {
	return Config{
		GroundingThreshold:  c.GroundingThreshold,
		GroundingTerms:      c.GroundingTerms,
		CompletenessPenalty: c.CompletenessPenalty,
		CategoryCap:         c.CategoryCap,
		TitleRepeatCap:      c.TitleRepeatCap,
		ScopeMaxItems:       c.ScopeMaxItems,
		ScopeMinWords:       c.ScopeMinWords,
		Weights: confidence.Weights{
			Extraction:   c.ExtractionWeight,
			Verification: c.VerificationWeight,
			Completeness: c.CompletenessWeight,
		},
	}
}

// Pipeline holds no per-run state; one instance may serve concurrent runs.
type Pipeline struct {
	log        *slog.Logger
	model      extract.FieldExtractor
	fallback   *extract.DeterministicExtractor
	classifier *deliverables.Classifier
	verifier   *verify.Verifier
	detector   *redflags.Detector
	auditor    *completeness.Auditor
	scopeRules textnorm.ScopeRules
	weights    confidence.Weights
	recorder   RunRecorder
	metrics    *Metrics
}

type Option func(*Pipeline)

// WithModel sets the model-assisted extractor. Without one every run is offline.
func WithModel(fe extract.FieldExtractor) Option {
	return func(p *Pipeline) { p.model = fe }
}

func WithRecorder(r RunRecorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

func New(cfg Config, opts ...Option) *Pipeline {
	if cfg.Weights == (confidence.Weights{}) {
		cfg.Weights = confidence.DefaultWeights()
	}
	classifier := deliverables.MustDefault(cfg.CategoryCap, cfg.TitleRepeatCap)
	p := &Pipeline{
		log:        slog.Default(),
		fallback:   extract.NewDeterministicExtractor(extract.DefaultRules(), classifier),
		classifier: classifier,
		verifier:   verify.New(verify.Config{Threshold: cfg.GroundingThreshold, MaxTerms: cfg.GroundingTerms}),
		detector:   redflags.MustDefault(),
		auditor:    completeness.Default(cfg.CompletenessPenalty),
		scopeRules: textnorm.DefaultScopeRules(cfg.ScopeMaxItems, cfg.ScopeMinWords),
		weights:    cfg.Weights,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run produces one record from doc. It returns either a complete record or an
// error: a *common.AppError for invalid input or empty required fields, or the
// context error when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
		ctx = common.WithRequestID(ctx, rid)
	}
	start := time.Now()

	if strings.TrimSpace(doc.RawText) == "" {
		return nil, common.NewAppError(common.CodeInvalidInput, "document has no text", common.ErrInvalidInput)
	}

	p.log.Info("pipeline.run.start",
		"req_id", rid,
		"language", doc.PrimaryLanguage,
		"sections", len(doc.Sections),
		"text_len", len(doc.RawText),
		"model", p.model != nil,
	)
	runID := p.startRun(ctx, rid, doc)

	rec, err := p.run(ctx, rid, doc)

	p.finishRun(ctx, runID, rec, err)
	if err != nil {
		p.metrics.run("none", errorOutcome(err))
		p.log.Error("pipeline.run.failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	p.metrics.run(string(rec.ExtractionMethod), "ok")
	p.log.Info("pipeline.run.ok",
		"req_id", rid,
		"method", rec.ExtractionMethod,
		"overall", rec.ConfidenceScores.Overall,
		"completeness", rec.CompletenessScore,
		"warnings", len(rec.Warnings),
		"red_flags", len(rec.RedFlags),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (p *Pipeline) run(ctx context.Context, rid string, doc entity.ParsedDocument) (*entity.ExtractionRecord, error) {
	out, err := p.extract(ctx, rid, doc)
	if err != nil {
		return nil, err
	}
	raw := doc.RawText

	t := time.Now()
	var warnings []entity.Warning
	warnings = append(warnings, out.Warnings...)

	clientName := textnorm.Clean(out.ClientName)
	projectName := textnorm.Clean(out.ProjectName)
	description := textnorm.Normalize(out.ProjectDescription)
	scope := textnorm.StructureScope(out.ScopeOfWork, p.scopeRules)
	if scope == "" && strings.TrimSpace(out.ScopeOfWork) != "" {
		scope = textnorm.Normalize(out.ScopeOfWork)
		warnings = append(warnings, entity.Warning{
			Code:    entity.WarnScopeUnstructured,
			Message: "no scope fragment passed the work-item filter; kept the scope text as written",
			Field:   entity.FieldScopeOfWork,
		})
	}
	criteria := textnorm.StructureCriteria(out.EvaluationCriteria)
	p.metrics.stage("normalize", t)

	v := common.NewValidator()
	v.Field(entity.FieldClientName, clientName, common.Required).
		Field(entity.FieldProjectName, projectName, common.Required).
		Field(entity.FieldProjectDescription, description, common.Required).
		Field(entity.FieldScopeOfWork, scope, common.Required).
		Field(entity.FieldEvaluationCriteria, criteria, common.Required)
	if err := v.Err(); err != nil {
		missing := common.MissingFields(err)
		p.log.Warn("pipeline.required_fields.missing", "req_id", rid, "method", out.Method, "fields", missing)
		return nil, common.NewAppError(common.CodeSchemaValidationFailed,
			"required fields empty after extraction: "+strings.Join(missing, ", "), err)
	}

	var (
		delRes  deliverables.Result
		dateRes dates.Result
		verRes  verify.Result
		flags   []entity.RedFlag
		compRes completeness.Result
	)

	// Wave 1 consumes the extraction output; wave 2 also needs the resolved dates.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.metrics.stage("deliverables", time.Now())
		delRes = p.classifier.Classify(out.Deliverables, raw, criteria)
		return gctx.Err()
	})
	g.Go(func() error {
		defer p.metrics.stage("dates", time.Now())
		dateRes = dates.Resolve(out.Dates, raw)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.metrics.stage("verify", time.Now())
		verRes = p.verifier.Verify(raw, scope, criteria)
		return gctx.Err()
	})
	g.Go(func() error {
		defer p.metrics.stage("redflags", time.Now())
		flags = p.detector.Detect(raw, scope)
		return gctx.Err()
	})
	g.Go(func() error {
		defer p.metrics.stage("completeness", time.Now())
		compRes = p.auditor.Audit(completeness.Input{RawText: raw, Dates: dateRes.Dates, Submission: out.Submission})
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	warnings = append(warnings, delRes.Warnings...)
	warnings = append(warnings, dateRes.Warnings...)
	warnings = append(warnings, verRes.Warnings...)
	if warnings == nil {
		warnings = []entity.Warning{}
	}

	reqs := delRes.Requirements
	submission := out.Submission
	if submission.OtherRequirements == nil {
		submission.OtherRequirements = []string{}
	}

	rec := &entity.ExtractionRecord{
		SchemaVersion:           entity.SchemaVersion,
		ClientName:              clientName,
		ClientNameOriginal:      textnorm.Clean(out.ClientNameOriginal),
		ProjectName:             projectName,
		ProjectNameOriginal:     textnorm.Clean(out.ProjectNameOriginal),
		ProjectDescription:      description,
		ScopeOfWork:             scope,
		EvaluationCriteria:      criteria,
		RequiredDeliverables:    delRes.Deliverables,
		DeliverableRequirements: &reqs,
		ImportantDates:          dateRes.Dates,
		SubmissionRequirements:  submission,
		RedFlags:                flags,
		MissingInformation:      compRes.Missing,
		ConfidenceScores:        confidence.Aggregate(out.Confidence, verRes.Score, compRes.Score, p.weights),
		CompletenessScore:       confidence.Clamp01(compRes.Score),
		Warnings:                warnings,
		Conflicts:               dateRes.Conflicts,
		Evidence:                evidence(doc, out.Evidence),
		ExtractionMethod:        out.Method,
	}
	return rec, nil
}

// extract runs the model path and falls back to the deterministic extractor only
// after a definitive model failure. Cancellation is returned, never recovered.
func (p *Pipeline) extract(ctx context.Context, rid string, doc entity.ParsedDocument) (extract.Output, error) {
	if p.model == nil {
		p.metrics.fallback("unavailable")
		p.log.Info("pipeline.extract.offline", "req_id", rid)
		out := p.deterministic(doc)
		out.Warnings = append([]entity.Warning{{
			Code:    entity.WarnModelUnavailable,
			Message: "no language model configured; used deterministic extraction",
		}}, out.Warnings...)
		return out, nil
	}

	t := time.Now()
	out, err := p.model.Extract(ctx, doc)
	p.metrics.model(t)
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return extract.Output{}, ctx.Err()
	}

	reason := "unknown"
	var f *extract.Failure
	if errors.As(err, &f) {
		reason = string(f.Kind)
	}
	p.metrics.fallback(reason)
	p.log.Warn("pipeline.extract.fallback", "req_id", rid, "reason", reason, "error", err)

	out = p.deterministic(doc)
	out.Warnings = append([]entity.Warning{{
		Code:    entity.WarnFallbackUsed,
		Message: fmt.Sprintf("model extraction failed (%s); used deterministic extraction", reason),
	}}, out.Warnings...)
	return out, nil
}

func (p *Pipeline) deterministic(doc entity.ParsedDocument) extract.Output {
	defer p.metrics.stage("deterministic", time.Now())
	return p.fallback.Extract(doc.RawText, doc.Sections)
}

func evidence(doc entity.ParsedDocument, spans []extract.EvidenceSpan) []entity.Evidence {
	out := make([]entity.Evidence, 0, len(spans))
	for _, s := range spans {
		page := 0
		if s.Offset >= 0 {
			page = doc.PageAt(s.Offset)
		}
		out = append(out, entity.Evidence{Field: s.Field, Page: page, Excerpt: s.Excerpt})
	}
	return out
}

func errorOutcome(err error) string {
	var ae *common.AppError
	switch {
	case errors.As(err, &ae):
		return ae.Code
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "error"
}

func (p *Pipeline) startRun(ctx context.Context, rid string, doc entity.ParsedDocument) uuid.UUID {
	if p.recorder == nil {
		return uuid.Nil
	}
	sum := sha256.Sum256([]byte(doc.RawText))
	lang := doc.PrimaryLanguage
	if lang == "" {
		lang = textnorm.DetectLanguage(doc.RawText)
	}
	id, err := p.recorder.Start(context.WithoutCancel(ctx), &entity.ExtractionRun{
		RequestID:    rid,
		DocumentHash: hex.EncodeToString(sum[:]),
		Language:     string(lang),
		StartedAt:    time.Now().UTC(),
		Status:       string(constants.RunStatusRunning),
	})
	if err != nil {
		p.log.Warn("pipeline.journal.start_failed", "req_id", rid, "error", err)
		return uuid.Nil
	}
	return id
}

func (p *Pipeline) finishRun(ctx context.Context, id uuid.UUID, rec *entity.ExtractionRecord, runErr error) {
	if p.recorder == nil || id == uuid.Nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	var err error
	if runErr != nil {
		code := errorOutcome(runErr)
		err = p.recorder.FinishFailure(ctx, id, code, runErr.Error())
	} else {
		err = p.recorder.FinishSuccess(ctx, id, rec)
	}
	if err != nil {
		p.log.Warn("pipeline.journal.finish_failed", "run_id", id, "error", err)
	}
}
