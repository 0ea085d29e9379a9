package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect names the SQL flavour behind a Store.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// Store is the run journal's database handle.
type Store struct {
	DB      *sql.DB
	Dialect Dialect
	pool    *pgxpool.Pool
	log     *slog.Logger
}

// Open connects to Postgres for postgres:// DSNs and to an embedded SQLite file
// otherwise ("sqlite://path", "file:path" or a bare path), then ensures the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	var s *Store
	var err error
	if isPostgres(cfg.DSN) {
		s, err = openPostgres(ctx, cfg, logger)
	} else {
		s, err = openSQLite(cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	mctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := s.migrate(mctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate run journal: %w", err)
	}
	logger.Info("successfully connected to database", "dialect", s.Dialect)
	return s, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger.Info("connecting to database", "dialect", Postgres)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "rfp-extractor"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	return &Store{DB: stdlib.OpenDBFromPool(pool), Dialect: Postgres, pool: pool, log: logger}, nil
}

func openSQLite(cfg Config, logger *slog.Logger) (*Store, error) {
	path := strings.TrimPrefix(strings.TrimPrefix(cfg.DSN, "sqlite://"), "file:")
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	logger.Info("connecting to database", "dialect", SQLite, "path", path)
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the batch runner.
	db.SetMaxOpenConns(1)
	return &Store{DB: db, Dialect: SQLite, log: logger}, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	s.log.Info("closing database connections")
	if err := s.DB.Close(); err != nil {
		s.log.Error("failed to close database", "error", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.log.Info("database connections closed")
}

// HealthCheck pings the database within timeout.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	s.log.Debug("pinging database")
	return s.DB.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	ddl := []string{sqliteSchema, `CREATE INDEX IF NOT EXISTS extraction_run_started_at ON extraction_run (started_at)`}
	if s.Dialect == Postgres {
		ddl[0] = postgresSchema
	}
	for _, stmt := range ddl {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1..$n for Postgres.
func (s *Store) rebind(query string) string {
	if s.Dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS extraction_run (
	id            TEXT PRIMARY KEY,
	request_id    TEXT NOT NULL,
	document_hash TEXT NOT NULL,
	language      TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	status        TEXT NOT NULL,
	method        TEXT,
	error_code    TEXT,
	error_message TEXT,
	confidence    REAL,
	warning_count INTEGER NOT NULL DEFAULT 0,
	record_json   TEXT
)`

const postgresSchema = `CREATE TABLE IF NOT EXISTS extraction_run (
	id            UUID PRIMARY KEY,
	request_id    TEXT NOT NULL,
	document_hash TEXT NOT NULL,
	language      TEXT NOT NULL,
	started_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ,
	status        TEXT NOT NULL,
	method        TEXT,
	error_code    TEXT,
	error_message TEXT,
	confidence    DOUBLE PRECISION,
	warning_count INTEGER NOT NULL DEFAULT 0,
	record_json   JSONB
)`
