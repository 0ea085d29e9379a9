package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{DSN: "sqlite://" + filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRunRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.HealthCheck(ctx, 0))
	repo := NewRunRepository(s, nil)

	id, err := repo.Start(ctx, &entity.ExtractionRun{RequestID: "req-1", DocumentHash: "abc", Language: "english"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusRunning), got.Status)
	assert.Nil(t, got.FinishedAt)

	rec := &entity.ExtractionRecord{
		SchemaVersion:    entity.SchemaVersion,
		ClientName:       "Test Corporation Inc.",
		ExtractionMethod: constants.MethodModel,
		ConfidenceScores: entity.ConfidenceScores{Overall: 0.8},
		Warnings:         []entity.Warning{{Code: entity.WarnDateConflict}},
	}
	require.NoError(t, repo.FinishSuccess(ctx, id, rec))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusSucceeded), got.Status)
	require.NotNil(t, got.FinishedAt)
	require.NotNil(t, got.Method)
	assert.Equal(t, "model", *got.Method)
	require.NotNil(t, got.Confidence)
	assert.Equal(t, 0.8, *got.Confidence)
	assert.Equal(t, 1, got.WarningCount)

	var back entity.ExtractionRecord
	require.NoError(t, json.Unmarshal(got.RecordJSON, &back))
	assert.Equal(t, "Test Corporation Inc.", back.ClientName)
}

func TestRunRepository_Failure(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestStore(t), nil)

	id, err := repo.Start(ctx, &entity.ExtractionRun{RequestID: "req-2", DocumentHash: "def", Language: "arabic"})
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, id, common.CodeSchemaValidationFailed, "clientName is required"))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(constants.RunStatusFailed), got.Status)
	require.NotNil(t, got.ErrorCode)
	assert.Equal(t, common.CodeSchemaValidationFailed, *got.ErrorCode)
	assert.Empty(t, got.RecordJSON)
}

func TestRunRepository_UnknownRun(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestStore(t), nil)

	_, err := repo.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, repo.FinishFailure(ctx, uuid.New(), "x", "y"), common.ErrNotFound)
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewRunRepository(openTestStore(t), nil)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, rid := range []string{"a", "b", "c"} {
		_, err := repo.Start(ctx, &entity.ExtractionRun{
			RequestID: rid, DocumentHash: rid, Language: "english",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RequestID)
	assert.Equal(t, "b", runs[1].RequestID)
}

func TestRebind(t *testing.T) {
	pg := &Store{Dialect: Postgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))
	lite := &Store{Dialect: SQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}
