package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/rfp-extractor/constants"
	"github.com/joseph-ayodele/rfp-extractor/internal/common"
	"github.com/joseph-ayodele/rfp-extractor/internal/entity"
)

// RunRepository journals extraction runs: RUNNING on start, then SUCCEEDED or FAILED.
type RunRepository interface {
	Start(ctx context.Context, run *entity.ExtractionRun) (uuid.UUID, error)
	FinishSuccess(ctx context.Context, id uuid.UUID, rec *entity.ExtractionRecord) error
	FinishFailure(ctx context.Context, id uuid.UUID, code, message string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionRun, error)
	List(ctx context.Context, limit int) ([]entity.ExtractionRun, error)
}

type runRepo struct {
	s   *Store
	log *slog.Logger
}

func NewRunRepository(s *Store, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{s: s, log: log}
}

func (r *runRepo) Start(ctx context.Context, run *entity.ExtractionRun) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = string(constants.RunStatusRunning)
	}
	_, err := r.s.DB.ExecContext(ctx, r.s.rebind(
		`INSERT INTO extraction_run (id, request_id, document_hash, language, started_at, status, warning_count)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`),
		run.ID.String(), run.RequestID, run.DocumentHash, run.Language, run.StartedAt, run.Status,
	)
	if err != nil {
		r.log.Error("extraction_run start failed", "req_id", run.RequestID, "err", err)
		return uuid.Nil, err
	}
	r.log.Info("extraction_run started", "run_id", run.ID, "req_id", run.RequestID)
	return run.ID, nil
}

func (r *runRepo) FinishSuccess(ctx context.Context, id uuid.UUID, rec *entity.ExtractionRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	res, err := r.s.DB.ExecContext(ctx, r.s.rebind(
		`UPDATE extraction_run
		 SET finished_at = ?, status = ?, method = ?, confidence = ?, warning_count = ?, record_json = ?
		 WHERE id = ?`),
		time.Now().UTC(), string(constants.RunStatusSucceeded), string(rec.ExtractionMethod),
		rec.ConfidenceScores.Overall, len(rec.Warnings), string(body), id.String(),
	)
	if err := affectedOne(res, err); err != nil {
		r.log.Error("extraction_run finish(SUCCEEDED) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Info("extraction_run finished (SUCCEEDED)", "run_id", id, "method", rec.ExtractionMethod)
	return nil
}

func (r *runRepo) FinishFailure(ctx context.Context, id uuid.UUID, code, message string) error {
	res, err := r.s.DB.ExecContext(ctx, r.s.rebind(
		`UPDATE extraction_run SET finished_at = ?, status = ?, error_code = ?, error_message = ? WHERE id = ?`),
		time.Now().UTC(), string(constants.RunStatusFailed), code, message, id.String(),
	)
	if err := affectedOne(res, err); err != nil {
		r.log.Error("extraction_run finish(FAILED) failed", "run_id", id, "err", err)
		return err
	}
	r.log.Warn("extraction_run finished (FAILED)", "run_id", id, "code", code, "error", message)
	return nil
}

func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

const runColumns = `id, request_id, document_hash, language, started_at, finished_at, status,
	method, error_code, error_message, confidence, warning_count, record_json`

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionRun, error) {
	row := r.s.DB.QueryRowContext(ctx, r.s.rebind(`SELECT `+runColumns+` FROM extraction_run WHERE id = ?`), id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	return run, err
}

// List returns the most recent runs first.
func (r *runRepo) List(ctx context.Context, limit int) ([]entity.ExtractionRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.s.DB.QueryContext(ctx, r.s.rebind(
		`SELECT `+runColumns+` FROM extraction_run ORDER BY started_at DESC, id LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.ExtractionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*entity.ExtractionRun, error) {
	var (
		run        entity.ExtractionRun
		id         string
		finishedAt sql.NullTime
		method     sql.NullString
		errCode    sql.NullString
		errMsg     sql.NullString
		confidence sql.NullFloat64
		record     sql.NullString
	)
	if err := sc.Scan(&id, &run.RequestID, &run.DocumentHash, &run.Language, &run.StartedAt, &finishedAt,
		&run.Status, &method, &errCode, &errMsg, &confidence, &run.WarningCount, &record); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse run id: %w", err)
	}
	run.ID = parsed
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	run.Method = nullString(method)
	run.ErrorCode = nullString(errCode)
	run.ErrorMessage = nullString(errMsg)
	if confidence.Valid {
		run.Confidence = &confidence.Float64
	}
	if record.Valid && record.String != "" {
		run.RecordJSON = json.RawMessage(record.String)
	}
	return &run, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
