package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// Schema creates the tables used by PostgresStore and PostgresEventLogger.
const Schema = `
CREATE TABLE IF NOT EXISTS quiz_attempts (
	id            UUID PRIMARY KEY,
	participant   TEXT NOT NULL,
	document      TEXT NOT NULL,
	selections    JSONB NOT NULL,
	result        JSONB NOT NULL,
	correct_count INTEGER NOT NULL,
	total         INTEGER NOT NULL,
	percentage    DOUBLE PRECISION NOT NULL,
	submitted_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS quiz_attempts_submitted_at_idx
	ON quiz_attempts (submitted_at DESC);

CREATE TABLE IF NOT EXISTS quiz_events (
	id         BIGSERIAL PRIMARY KEY,
	attempt_id UUID REFERENCES quiz_attempts (id) ON DELETE SET NULL,
	event_type TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore is a PostgreSQL-backed AttemptStore implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed attempt store.
// Schema must have been applied to the database.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveAttempt(ctx context.Context, a Attempt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now()
	}
	if a.Selections == nil {
		a.Selections = []string{}
	}

	selections, err := json.Marshal(a.Selections)
	if err != nil {
		return "", fmt.Errorf("marshal selections: %w", err)
	}
	result, err := json.Marshal(a.Result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	var id string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO quiz_attempts
		   (id, participant, document, selections, result, correct_count, total, percentage, submitted_at)
		 VALUES ($1::uuid, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8, $9)
		 RETURNING id::text`,
		a.ID,
		a.Participant,
		a.Document,
		string(selections),
		string(result),
		a.Result.CorrectCount,
		a.Result.Total,
		a.Result.Percentage,
		a.SubmittedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert attempt: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
	}

	row := s.pool.QueryRow(ctx,
		`SELECT id::text, participant, document, selections, result, submitted_at
		 FROM quiz_attempts
		 WHERE id = $1::uuid`,
		id,
	)
	a, err := scanAttempt(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, id)
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ListAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `SELECT id::text, participant, document, selections, result, submitted_at
		 FROM quiz_attempts
		 ORDER BY submitted_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	attempts := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}
	return attempts, nil
}

func scanAttempt(row pgx.Row) (*Attempt, error) {
	a := &Attempt{}
	var selections, result []byte
	if err := row.Scan(
		&a.ID,
		&a.Participant,
		&a.Document,
		&selections,
		&result,
		&a.SubmittedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(selections, &a.Selections); err != nil {
		return nil, fmt.Errorf("decode selections: %w", err)
	}
	if err := json.Unmarshal(result, &a.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return a, nil
}
