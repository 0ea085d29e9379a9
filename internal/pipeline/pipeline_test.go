package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
	"github.com/joseph-ayodele/rfp-extractor/internal/extract"
	"github.com/joseph-ayodele/rfp-extractor/internal/llm"
)

const sampleRFP = `REQUEST FOR PROPOSAL - TEST DOCUMENT

CLIENT INFORMATION
Client: Test Corporation Inc.
Project: Website Redesign Project

PROJECT DESCRIPTION
We are seeking proposals for a complete website redesign including modern UI/UX design, responsive layout, and content management system integration.

SCOPE OF WORK
• Brand strategy and positioning
• UI/UX design for 10 pages
• Responsive web development
• CMS integration (WordPress)
• SEO optimization
• Content migration from old site
• Training for content editors

EVALUATION CRITERIA
Proposals will be evaluated based on:
1. Technical approach and methodology (40%)
2. Team experience and qualifications (30%)
3. Cost and value proposition (20%)
4. Proposed timeline and milestones (10%)

IMPORTANT DATES
Submission Deadline: March 15, 2026
Project Start Date: April 1, 2026
Expected Completion: July 31, 2026`

func doc(text string) entity.ParsedDocument {
	return entity.ParsedDocument{RawText: text, PrimaryLanguage: constants.English}
}

type extractorFunc func(ctx context.Context, doc entity.ParsedDocument) (extract.Output, error)

func (f extractorFunc) Extract(ctx context.Context, doc entity.ParsedDocument) (extract.Output, error) {
	return f(ctx, doc)
}

func newPipeline(opts ...Option) *Pipeline {
	return New(ConfigFrom(common.DefaultConfig().Pipeline), opts...)
}

func assertInvariants(t *testing.T, rec *entity.ExtractionRecord) {
	t.Helper()
	assert.Equal(t, entity.SchemaVersion, rec.SchemaVersion)
	for _, v := range []string{rec.ClientName, rec.ProjectName, rec.ProjectDescription, rec.ScopeOfWork, rec.EvaluationCriteria} {
		assert.NotEmpty(t, strings.TrimSpace(v))
	}
	assert.GreaterOrEqual(t, rec.ConfidenceScores.Overall, 0.0)
	assert.LessOrEqual(t, rec.ConfidenceScores.Overall, 1.0)
	assert.GreaterOrEqual(t, rec.CompletenessScore, 0.0)
	assert.LessOrEqual(t, rec.CompletenessScore, 1.0)
	assert.NotEmpty(t, rec.ImportantDates)
	assert.NotNil(t, rec.RequiredDeliverables)
	assert.NotNil(t, rec.RedFlags)
	assert.NotNil(t, rec.MissingInformation)
	assert.NotNil(t, rec.Warnings)
}

func TestRun_Offline(t *testing.T) {
	rec, err := newPipeline().Run(context.Background(), doc(sampleRFP))
	require.NoError(t, err)
	assertInvariants(t, rec)

	assert.Equal(t, constants.MethodDeterministic, rec.ExtractionMethod)
	assert.True(t, rec.HasWarning(entity.WarnModelUnavailable))
	assert.Equal(t, "Test Corporation Inc.", rec.ClientName)
	assert.Equal(t, "Website Redesign Project", rec.ProjectName)
	assert.True(t, strings.HasPrefix(rec.ScopeOfWork, "• "))
	assert.Contains(t, rec.EvaluationCriteria, "1. Technical approach and methodology (40%)")
	assert.Equal(t, "2026-03-15", rec.ImportantDates[0].Date)
	assert.False(t, rec.HasWarning(entity.WarnCriteriaWeightSum))
	require.NotNil(t, rec.DeliverableRequirements)
	assert.NotEmpty(t, rec.DeliverableRequirements.Technical)
	assert.NotEmpty(t, rec.DeliverableRequirements.Commercial)
}

func TestRun_ModelTimeoutFallsBack(t *testing.T) {
	model := llm.ModelFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	fe := extract.NewModelExtractor(model, extract.ModelConfig{Timeout: 20 * time.Millisecond}, nil)
	m := NewMetrics(prometheus.NewRegistry())

	rec, err := newPipeline(WithModel(fe), WithMetrics(m)).Run(context.Background(), doc(sampleRFP))
	require.NoError(t, err)
	assertInvariants(t, rec)

	assert.Equal(t, constants.MethodDeterministic, rec.ExtractionMethod)
	require.NotEmpty(t, rec.Warnings)
	assert.Equal(t, entity.WarnFallbackUsed, rec.Warnings[0].Code)
	assert.Contains(t, rec.Warnings[0].Message, "timeout")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("deterministic", "ok")))
}

func TestRun_ModelSuccess(t *testing.T) {
	fe := extractorFunc(func(ctx context.Context, d entity.ParsedDocument) (extract.Output, error) {
		return extract.Output{
			ClientName:         "Test Corporation Inc.",
			ProjectName:        "Website Redesign Project",
			ProjectDescription: "A complete website redesign.",
			ScopeOfWork:        "Responsive web development; Content migration from old site",
			EvaluationCriteria: "1. Technical approach and methodology (40%)\n2. Cost and value proposition (60%)",
			Deliverables:       []entity.Deliverable{{Item: "Detailed pricing breakdown", Source: constants.Verbatim}},
			Dates:              []entity.ImportantDate{{Title: "Submission Deadline", Date: "2026-03-15", Type: constants.DateSubmissionDeadline}},
			Submission:         entity.SubmissionRequirements{Method: "email", Format: "PDF"},
			Confidence:         map[string]float64{entity.FieldClientName: 0.9},
			Method:             constants.MethodModel,
			Evidence:           []extract.EvidenceSpan{{Field: entity.FieldClientName, Offset: 40, Excerpt: "Client: Test Corporation Inc."}},
		}, nil
	})
	d := doc(sampleRFP)
	d.EvidenceMap = []entity.EvidenceExcerpt{{Page: 1, StartOffset: 0, EndOffset: len(sampleRFP)}}

	rec, err := newPipeline(WithModel(fe)).Run(context.Background(), d)
	require.NoError(t, err)
	assertInvariants(t, rec)

	assert.Equal(t, constants.MethodModel, rec.ExtractionMethod)
	assert.False(t, rec.HasWarning(entity.WarnFallbackUsed))
	assert.Equal(t, "• Responsive web development\n• Content migration from old site", rec.ScopeOfWork)
	assert.True(t, rec.HasWarning(entity.WarnProvenanceDowngraded), "pricing line is not an explicit requirement in the source")
	assert.Equal(t, 0.9, rec.ConfidenceScores.Fields[entity.FieldClientName])
	require.Len(t, rec.Evidence, 1)
	assert.Equal(t, 1, rec.Evidence[0].Page)
}

func TestRun_MissingClientNameFails(t *testing.T) {
	text := strings.Replace(sampleRFP, "Client: Test Corporation Inc.\n", "", 1)
	failing := extractorFunc(func(ctx context.Context, d entity.ParsedDocument) (extract.Output, error) {
		return extract.Output{}, &extract.Failure{Kind: extract.FailSchema, Err: errors.New("bad reply")}
	})

	rec, err := newPipeline(WithModel(failing)).Run(context.Background(), doc(text))
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, common.IsCode(err, common.CodeSchemaValidationFailed))
	assert.Equal(t, []string{entity.FieldClientName}, common.MissingFields(err))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestRun_CancellationPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fe := extractorFunc(func(ctx context.Context, d entity.ParsedDocument) (extract.Output, error) {
		cancel()
		return extract.Output{}, ctx.Err()
	})
	m := NewMetrics(prometheus.NewRegistry())

	rec, err := newPipeline(WithModel(fe), WithMetrics(m)).Run(ctx, doc(sampleRFP))
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, testutil.CollectAndCount(m.FallbacksTotal))
}

func TestRun_EmptyDocument(t *testing.T) {
	_, err := newPipeline().Run(context.Background(), doc("  \n "))
	assert.True(t, common.IsCode(err, common.CodeInvalidInput))
}

func TestRun_ConflictsAndWeightSum(t *testing.T) {
	text := `Client: Ministry of Tourism
Project: Visitor Portal
Project Description
A portal for visitors to plan trips.
Scope of Work
Design and build the visitor portal with booking features.
Evaluation Criteria
Technical Approach (40%)
Pricing (65%)
Submission deadline: 2026-05-01
Proposals submission deadline extended to 2026-05-10`

	rec, err := newPipeline().Run(context.Background(), doc(text))
	require.NoError(t, err)
	assertInvariants(t, rec)

	require.Len(t, rec.Conflicts, 1)
	assert.Equal(t, "submission_deadline", rec.Conflicts[0].Field)
	assert.Equal(t, []string{"2026-05-01", "2026-05-10"}, rec.Conflicts[0].Candidates)
	assert.Equal(t, "2026-05-01", rec.Conflicts[0].Resolution)
	assert.True(t, rec.HasWarning(entity.WarnDateConflict))

	var weightWarning string
	for _, w := range rec.Warnings {
		if w.Code == entity.WarnCriteriaWeightSum {
			weightWarning = w.Message
		}
	}
	assert.Contains(t, weightWarning, "105")
}

type fakeRecorder struct {
	mu       sync.Mutex
	started  []*entity.ExtractionRun
	success  int
	failures []string
}

func (f *fakeRecorder) Start(_ context.Context, run *entity.ExtractionRun) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = append(f.started, run)
	return uuid.New(), nil
}

func (f *fakeRecorder) FinishSuccess(context.Context, uuid.UUID, *entity.ExtractionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.success++
	return nil
}

func (f *fakeRecorder) FinishFailure(_ context.Context, _ uuid.UUID, code, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, code)
	return errors.New("journal offline")
}

func TestRun_Recorder(t *testing.T) {
	rr := &fakeRecorder{}
	p := newPipeline(WithRecorder(rr))

	_, err := p.Run(context.Background(), doc(sampleRFP))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), doc("Nothing useful here at all."))
	require.Error(t, err, "a failing recorder does not mask the run error")

	require.Len(t, rr.started, 2)
	assert.Equal(t, string(constants.RunStatusRunning), rr.started[0].Status)
	assert.Len(t, rr.started[0].DocumentHash, 64)
	assert.Equal(t, 1, rr.success)
	assert.Equal(t, []string{common.CodeSchemaValidationFailed}, rr.failures)
}

func TestRun_RequestIDFromContext(t *testing.T) {
	rr := &fakeRecorder{}
	ctx := common.WithRequestID(context.Background(), "req-123")
	_, err := newPipeline(WithRecorder(rr)).Run(ctx, doc(sampleRFP))
	require.NoError(t, err)
	assert.Equal(t, "req-123", rr.started[0].RequestID)
}
