package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gosof/domain/core"
	"gosof/domain/sof"
	"gosof/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// runRecord is the table row shape. Options and result are stored as JSONB so
// the schema never chases the result structure.
type runRecord struct {
	ID            string         `db:"id"`
	CreatedAt     time.Time      `db:"created_at"`
	SamplesPath   sql.NullString `db:"samples_path"`
	LimitsPath    sql.NullString `db:"limits_path"`
	SamplesSha256 sql.NullString `db:"samples_sha256"`
	LimitsSha256  sql.NullString `db:"limits_sha256"`
	Options       []byte         `db:"options"`
	Result        []byte         `db:"result"`
	RuntimeMs     int64          `db:"runtime_ms"`
}

// Create persists a completed run
func (r *RunRepositoryImpl) Create(ctx context.Context, run *sof.Run) error {
	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("failed to encode run options: %w", err)
	}
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, samples_path, limits_path, samples_sha256, limits_sha256, options, result, runtime_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, run.ID.String(), run.CreatedAt.Time(), nullable(run.SamplesPath), nullable(run.LimitsPath),
		nullable(run.SamplesHash.String()), nullable(run.LimitsHash.String()), optionsJSON, resultJSON, run.RuntimeMs)

	return err
}

// GetByID retrieves a run by its identifier
func (r *RunRepositoryImpl) GetByID(ctx context.Context, id core.RunID) (*sof.Run, error) {
	var rec runRecord
	err := r.db.GetContext(ctx, &rec, `
		SELECT id, created_at, samples_path, limits_path, samples_sha256, limits_sha256, options, result, runtime_ms
		FROM runs
		WHERE id = $1
	`, id.String())
	if err != nil {
		return nil, err
	}
	return rec.toRun()
}

// List returns runs ordered newest first
func (r *RunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*sof.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var recs []runRecord
	err := r.db.SelectContext(ctx, &recs, `
		SELECT id, created_at, samples_path, limits_path, samples_sha256, limits_sha256, options, result, runtime_ms
		FROM runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	runs := make([]*sof.Run, 0, len(recs))
	for i := range recs {
		run, err := recs[i].toRun()
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (rec *runRecord) toRun() (*sof.Run, error) {
	run := &sof.Run{
		ID:          core.RunID(rec.ID),
		CreatedAt:   core.NewTimestamp(rec.CreatedAt),
		SamplesPath: rec.SamplesPath.String,
		LimitsPath:  rec.LimitsPath.String,
		SamplesHash: core.Hash(rec.SamplesSha256.String),
		LimitsHash:  core.Hash(rec.LimitsSha256.String),
		RuntimeMs:   rec.RuntimeMs,
	}
	if err := json.Unmarshal(rec.Options, &run.Options); err != nil {
		return nil, fmt.Errorf("failed to decode run options: %w", err)
	}
	if err := json.Unmarshal(rec.Result, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to decode run result: %w", err)
	}
	return run, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
