package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/dates"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/llm"
	"github.com/joseph-ayodele/rfp-extractor/internal/textnorm"
)

// modelFieldConfidence is used for a populated field when the model reports none.
const modelFieldConfidence = 0.85

// ModelConfig tunes the model path.
type ModelConfig struct {
	MaxInputChars int
	Timeout       time.Duration
}

// ModelExtractor asks the language model for every field at once and validates
// the reply against the extraction schema before trusting any of it.
type ModelExtractor struct {
	model llm.Model
	cfg   ModelConfig
	log   *slog.Logger
}

func NewModelExtractor(model llm.Model, cfg ModelConfig, logger *slog.Logger) *ModelExtractor {
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = llm.DefaultMaxInputChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelExtractor{model: model, cfg: cfg, log: logger}
}

// Extract implements FieldExtractor. Cancellation of ctx is returned as ctx.Err();
// everything else that goes wrong is a *Failure.
func (m *ModelExtractor) Extract(ctx context.Context, doc entity.ParsedDocument) (Output, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	source, truncated := llm.TruncateInput(doc.RawText, m.cfg.MaxInputChars)
	instructions := llm.BuildInstructions() + "\n\n" + llm.SchemaPrompt()

	callCtx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	content, err := m.model.Complete(callCtx, instructions, llm.BuildUserPrompt(source, truncated))
	if err != nil {
		if ctx.Err() != nil {
			return Output{}, ctx.Err()
		}
		f := classify(err)
		m.log.Warn("extract.model.failed", "req_id", rid, "kind", f.Kind, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return Output{}, f
	}

	content = llm.StripCodeFences(content)
	if strings.TrimSpace(content) == "" {
		return Output{}, m.failed(rid, start, fail(FailEmpty, llm.ErrEmptyReply))
	}

	cleaned, changed, err := llm.ApplyReplyDefaults([]byte(content), m.log)
	if err != nil {
		return Output{}, m.failed(rid, start, fail(FailDecode, err))
	}
	if len(changed) > 0 {
		m.log.Debug("extract.model.sanitized", "req_id", rid, "changes", changed)
	}
	if err := llm.ValidateReply(cleaned); err != nil {
		return Output{}, m.failed(rid, start, fail(FailSchema, err))
	}

	var reply llm.Reply
	if err := json.Unmarshal(cleaned, &reply); err != nil {
		return Output{}, m.failed(rid, start, fail(FailDecode, err))
	}

	out := fromReply(reply, doc.RawText)
	if truncated {
		out.Warnings = append(out.Warnings, entity.Warning{
			Code:    entity.WarnInputTruncated,
			Message: "source text was truncated before it was sent to the model",
		})
	}
	m.log.Info("extract.model.ok",
		"req_id", rid,
		"truncated", truncated,
		"deliverables", len(out.Deliverables),
		"dates", len(out.Dates),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (m *ModelExtractor) failed(rid string, start time.Time, f *Failure) *Failure {
	m.log.Warn("extract.model.failed", "req_id", rid, "kind", f.Kind, "error", f.Err, "elapsed_ms", time.Since(start).Milliseconds())
	return f
}

func classify(err error) *Failure {
	var (
		se *llm.StatusError
		ne net.Error
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fail(FailTimeout, err)
	case errors.As(err, &ne) && ne.Timeout():
		return fail(FailTimeout, err)
	case errors.As(err, &se):
		return fail(FailStatus, err)
	case errors.Is(err, llm.ErrEmptyReply):
		return fail(FailEmpty, err)
	}
	return fail(FailTransport, err)
}

func fromReply(r llm.Reply, rawText string) Output {
	out := Output{
		ClientName:          textnorm.Clean(r.ClientName),
		ClientNameOriginal:  textnorm.Clean(r.ClientNameOriginal),
		ProjectName:         textnorm.Clean(r.ProjectName),
		ProjectNameOriginal: textnorm.Clean(r.ProjectNameOriginal),
		ProjectDescription:  strings.TrimSpace(r.ProjectDescription),
		ScopeOfWork:         strings.TrimSpace(r.ScopeOfWork),
		EvaluationCriteria:  strings.TrimSpace(r.EvaluationCriteria),
		Deliverables:        []entity.Deliverable{},
		Dates:               []entity.ImportantDate{},
		Confidence:          map[string]float64{},
		Method:              constants.MethodModel,
	}

	for _, d := range r.RequiredDeliverables {
		item := textnorm.Clean(d.Item)
		if item == "" {
			continue
		}
		out.Deliverables = append(out.Deliverables, entity.Deliverable{Item: item, Source: constants.ParseSource(d.Source)})
	}

	for _, d := range r.ImportantDates {
		iso, ok := dates.Parse(d.Date)
		if !ok {
			continue
		}
		t := constants.ParseDateType(d.Type)
		out.Dates = append(out.Dates, entity.ImportantDate{
			Title:      textnorm.Clean(d.Title),
			Date:       iso,
			Type:       t,
			IsCritical: t.IsCritical(),
		})
	}

	s := r.SubmissionRequirements
	out.Submission = entity.SubmissionRequirements{
		Method:            NormalizeMethod(s.Method),
		Email:             strings.TrimSpace(s.Email),
		PhysicalAddress:   textnorm.Clean(s.PhysicalAddress),
		Format:            NormalizeFormat(s.Format),
		Copies:            s.Copies,
		OtherRequirements: []string{},
	}
	for _, o := range s.OtherRequirements {
		if o = textnorm.Clean(o); o != "" {
			out.Submission.OtherRequirements = append(out.Submission.OtherRequirements, o)
		}
	}

	populated := map[string]bool{
		entity.FieldClientName:             out.ClientName != "",
		entity.FieldProjectName:            out.ProjectName != "",
		entity.FieldProjectDescription:     out.ProjectDescription != "",
		entity.FieldScopeOfWork:            out.ScopeOfWork != "",
		entity.FieldEvaluationCriteria:     out.EvaluationCriteria != "",
		entity.FieldRequiredDeliverables:   len(out.Deliverables) > 0,
		entity.FieldImportantDates:         len(out.Dates) > 0,
		entity.FieldSubmissionRequirements: out.Submission.Method != "" || out.Submission.Format != "",
	}
	for _, f := range entity.ExtractedFields {
		c, reported := r.Confidence[f]
		switch {
		case !populated[f]:
			out.Confidence[f] = 0
		case reported:
			out.Confidence[f] = clamp01(c)
		default:
			out.Confidence[f] = modelFieldConfidence
		}
	}

	for _, ev := range []struct{ field, value string }{
		{entity.FieldClientName, out.ClientName},
		{entity.FieldProjectName, out.ProjectName},
		{entity.FieldProjectDescription, out.ProjectDescription},
		{entity.FieldScopeOfWork, out.ScopeOfWork},
		{entity.FieldEvaluationCriteria, out.EvaluationCriteria},
	} {
		if ev.value != "" {
			out.Evidence = append(out.Evidence, locateValue(rawText, ev.field, ev.value))
		}
	}
	return out
}

// locateValue points at the first place rawText carries the start of value.
func locateValue(rawText, field, value string) EvidenceSpan {
	needle := value
	if first, _, ok := strings.Cut(needle, "\n"); ok {
		needle = first
	}
	needle = strings.TrimSpace(textnorm.StripListMarkers(needle))
	if r := []rune(needle); len(r) > 40 {
		needle = string(r[:40])
	}
	if needle != "" {
		if off := strings.Index(rawText, needle); off >= 0 {
			return evidenceAt(rawText, field, off)
		}
		if off := strings.Index(strings.ToLower(rawText), strings.ToLower(needle)); off >= 0 && len(rawText) == len(strings.ToLower(rawText)) {
			return evidenceAt(rawText, field, off)
		}
	}
	return EvidenceSpan{Field: field, Offset: -1, Excerpt: textnorm.Truncate(textnorm.CollapseSpace(value), evidenceRunes)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
