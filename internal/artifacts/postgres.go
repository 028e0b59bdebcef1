package artifacts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/outreach-agent/internal/types"
)

// PostgresStore persists artifacts in PostgreSQL instead of the run
// directory. It keys every row by (run_id, job_id, stage), so re-saves
// overwrite just like the filesystem store.
type PostgresStore struct {
	pool  *pgxpool.Pool
	runID string
	audit *AuditLog
}

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgresStore creates a store scoped to one run.
func NewPostgresStore(pool *pgxpool.Pool, runID string, audit *AuditLog) *PostgresStore {
	return &PostgresStore{pool: pool, runID: runID, audit: audit}
}

// EnsureSchema creates the artifact tables if they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id UUID PRIMARY KEY,
			run_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			content TEXT NOT NULL,
			word_count INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (run_id, job_id, stage)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS verdicts (
			run_id TEXT NOT NULL,
			job_id TEXT NOT NULL,
			stage TEXT NOT NULL,
			pass BOOLEAN NOT NULL,
			rubric_version TEXT NOT NULL,
			payload JSONB NOT NULL,
			evaluated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (run_id, job_id, stage)
		)`)
	if err != nil {
		return fmt.Errorf("failed to create verdicts table: %w", err)
	}

	return nil
}

// SaveDocument upserts the document for (run, job, stage).
func (s *PostgresStore) SaveDocument(ctx context.Context, doc *types.Document) (*DocumentRef, error) {
	var id uuid.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO documents (id, run_id, job_id, stage, content, word_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id, job_id, stage)
		 DO UPDATE SET content = $5, word_count = $6, created_at = $7
		 RETURNING id`,
		uuid.New(), s.runID, doc.JobID, string(doc.Stage), doc.Content, doc.WordCount, doc.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, &WriteError{JobID: doc.JobID, Stage: doc.Stage, Message: "failed to save document", Cause: err}
	}

	if s.audit != nil {
		s.audit.Append(doc.JobID, string(doc.Stage), "document-saved")
	}

	return &DocumentRef{
		ID:    id,
		JobID: doc.JobID,
		Stage: doc.Stage,
		Path:  fmt.Sprintf("pg://documents/%s", id),
	}, nil
}

// SaveVerdict upserts the verdict for (run, job, stage). The full verdict,
// criteria included, rides along as JSONB.
func (s *PostgresStore) SaveVerdict(ctx context.Context, verdict *types.Verdict) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verdicts (run_id, job_id, stage, pass, rubric_version, payload, evaluated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (run_id, job_id, stage)
		 DO UPDATE SET pass = $4, rubric_version = $5, payload = $6, evaluated_at = $7`,
		s.runID, verdict.JobID, string(verdict.Stage), verdict.Pass, verdict.RubricVersion, verdict, verdict.EvaluatedAt,
	)
	if err != nil {
		return &WriteError{JobID: verdict.JobID, Stage: verdict.Stage, Message: "failed to save verdict", Cause: err}
	}

	if s.audit != nil {
		result := "verdict-fail"
		if verdict.Pass {
			result = "verdict-pass"
		}
		s.audit.Append(verdict.JobID, string(verdict.Stage), result)
	}

	return nil
}

// LoadDocument reads a document back, or ErrNotFound.
func (s *PostgresStore) LoadDocument(ctx context.Context, jobID string, stage types.Stage) (*types.Document, error) {
	doc := &types.Document{JobID: jobID, Stage: stage}
	err := s.pool.QueryRow(ctx,
		`SELECT content, word_count, created_at FROM documents
		 WHERE run_id = $1 AND job_id = $2 AND stage = $3`,
		s.runID, jobID, string(stage),
	).Scan(&doc.Content, &doc.WordCount, &doc.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document %s/%s: %w", jobID, stage, err)
	}
	return doc, nil
}
