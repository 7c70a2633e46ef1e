// Package history persists an audit trail of translations in PostgreSQL.
// Writes are wrapped in a circuit breaker with a short deadline so a dead
// database degrades the audit trail, never the translate path.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/grammophone/fts-query-translator/pkg/metrics"
	"github.com/grammophone/fts-query-translator/pkg/postgres"
	"github.com/grammophone/fts-query-translator/pkg/resilience"
)

const writeTimeout = 2 * time.Second

// Record is one translated query.
type Record struct {
	ID         int64     `json:"id"`
	Source     string    `json:"source"`
	Mode       string    `json:"mode"`
	Predicate  string    `json:"predicate"`
	Structured bool      `json:"structured"`
	LatencyMs  int64     `json:"latency_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store reads and writes translation records.
type Store struct {
	db      *postgres.Client
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewStore(db *postgres.Client, m *metrics.Metrics) *Store {
	return &Store{
		db:      db,
		breaker: resilience.NewCircuitBreaker("history-store", resilience.CircuitBreakerConfig{}),
		metrics: m,
		logger:  slog.Default().With("component", "history-store"),
	}
}

// EnsureSchema creates the translations table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS translations (
			id          BIGSERIAL PRIMARY KEY,
			source      TEXT        NOT NULL,
			mode        TEXT        NOT NULL,
			predicate   TEXT        NOT NULL,
			structured  BOOLEAN     NOT NULL,
			latency_ms  BIGINT      NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := s.db.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating translations table: %w", err)
	}
	return nil
}

// Record inserts rec. Failures are absorbed: they trip the breaker and are
// logged and counted, but never propagate to the caller.
func (s *Store) Record(ctx context.Context, rec Record) {
	err := s.breaker.Execute(func() error {
		return resilience.WithTimeout(ctx, writeTimeout, "history-insert", func(ctx context.Context) error {
			_, err := s.db.DB.ExecContext(ctx,
				`INSERT INTO translations (source, mode, predicate, structured, latency_ms)
				 VALUES ($1, $2, $3, $4, $5)`,
				rec.Source, rec.Mode, rec.Predicate, rec.Structured, rec.LatencyMs,
			)
			return err
		})
	})
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.HistoryWritesTotal.WithLabelValues(status).Inc()
		s.metrics.CircuitBreakerState.WithLabelValues("history-store").Set(float64(s.breaker.GetState()))
	}
	if err != nil {
		s.logger.Error("history write failed", "error", err)
	}
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, source, mode, predicate, structured, latency_ms, created_at
		 FROM translations ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying translation history: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.Mode, &rec.Predicate,
			&rec.Structured, &rec.LatencyMs, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning translation record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Prune deletes records older than the cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	var deleted int64
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM translations WHERE created_at < $1`, olderThan)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("pruning translation history: %w", err)
	}
	if deleted > 0 {
		s.logger.Info("history pruned", "deleted", deleted, "cutoff", olderThan)
	}
	return deleted, nil
}
