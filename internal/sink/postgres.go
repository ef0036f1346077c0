package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// PgxIface is the slice of pgx behaviour the sink needs. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createRunRecords = `
CREATE TABLE IF NOT EXISTS run_records (
	run_id             TEXT NOT NULL,
	seed_id            TEXT NOT NULL,
	model_version      TEXT NOT NULL,
	prompt_version     TEXT NOT NULL,
	locale             TEXT NOT NULL,
	topic              TEXT NOT NULL,
	input_query        TEXT NOT NULL,
	answer             TEXT NOT NULL,
	status             TEXT NOT NULL,
	retrieved_snippets JSONB NOT NULL,
	citations          JSONB NOT NULL,
	claim_labels       JSONB,
	contract_results   JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertRunRecord = `
INSERT INTO run_records (
	run_id, seed_id, model_version, prompt_version, locale, topic,
	input_query, answer, status, retrieved_snippets, citations,
	claim_labels, contract_results
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

// PostgresSink persists run records to a single run_records table, with
// the variable-shape fields stored as jsonb. The connection is owned by
// the caller; Close does not release it.
type PostgresSink struct {
	db PgxIface
}

// NewPostgresSink ensures the run_records table exists and returns the
// sink.
func NewPostgresSink(ctx context.Context, db PgxIface) (*PostgresSink, error) {
	if _, err := db.Exec(ctx, createRunRecords); err != nil {
		return nil, fmt.Errorf("create run_records table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Write(ctx context.Context, rec *model.RunRecord) error {
	snippets, err := json.Marshal(rec.RetrievedSnippets)
	if err != nil {
		return fmt.Errorf("marshal snippets: %w", err)
	}
	citations, err := json.Marshal(rec.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	var claimLabels []byte
	if rec.ClaimLabels != nil {
		claimLabels, err = json.Marshal(rec.ClaimLabels)
		if err != nil {
			return fmt.Errorf("marshal claim labels: %w", err)
		}
	}
	results, err := json.Marshal(rec.ContractResults)
	if err != nil {
		return fmt.Errorf("marshal contract results: %w", err)
	}

	status := rec.Status
	if status == "" {
		status = model.StatusOK
	}

	_, err = s.db.Exec(ctx, insertRunRecord,
		rec.RunID,
		rec.SeedID,
		rec.ModelVersion,
		rec.PromptVersion,
		rec.Locale,
		rec.Topic,
		rec.InputQuery,
		rec.Answer,
		status,
		snippets,
		citations,
		claimLabels,
		results,
	)
	if err != nil {
		return fmt.Errorf("insert run record %s: %w", rec.SeedID, err)
	}
	return nil
}

// Close is a no-op; the pool belongs to the caller.
func (s *PostgresSink) Close() error { return nil }
