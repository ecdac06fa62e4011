package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/coursedocs/course-assistant/internal/core/domain"
)

// TurnLogRepository persists completed-turn events for operational audit.
// The log is write-only from the pipeline's perspective; nothing here ever
// feeds back into retrieval or generation.
type TurnLogRepository struct {
	db *sql.DB
}

func NewTurnLogRepository(db *sql.DB) *TurnLogRepository {
	return &TurnLogRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *TurnLogRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082301)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS assistant_turns (
	id TEXT PRIMARY KEY,
	question TEXT NOT NULL,
	topic TEXT NOT NULL,
	outcome TEXT NOT NULL,
	passages INT NOT NULL DEFAULT 0,
	rerank_degraded BOOLEAN NOT NULL DEFAULT FALSE,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assistant_turns_created_at ON assistant_turns(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assistant_turns_outcome ON assistant_turns(outcome);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// RecordTurn is idempotent on event ID so queue redeliveries are harmless.
func (r *TurnLogRepository) RecordTurn(ctx context.Context, event domain.TurnEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO assistant_turns (
	id, question, topic, outcome, passages, rerank_degraded, duration_ms, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`,
		event.ID, event.Question, event.Topic, string(event.Outcome),
		event.Passages, event.RerankDegraded, event.DurationMS, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert turn event: %w", err)
	}
	return nil
}

// RecentTurns returns the latest persisted turns, newest first.
func (r *TurnLogRepository) RecentTurns(ctx context.Context, limit int) ([]domain.TurnEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, question, topic, outcome, passages, rerank_degraded, duration_ms, created_at
FROM assistant_turns
ORDER BY created_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TurnEvent, 0, limit)
	for rows.Next() {
		var event domain.TurnEvent
		var outcome string
		if err := rows.Scan(
			&event.ID, &event.Question, &event.Topic, &outcome,
			&event.Passages, &event.RerankDegraded, &event.DurationMS, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn event: %w", err)
		}
		event.Outcome = domain.AnswerOutcome(outcome)
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn events: %w", err)
	}
	return out, nil
}
