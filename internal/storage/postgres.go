package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/eltonkola/bleta/internal/retry"
)

// connectRetry governs the connectivity check in NewPostgresBackend.
var connectRetry = retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true}

// PostgresBackend keeps dedup state in PostgreSQL. Like the file backend it
// replaces the whole identity set on Save.
type PostgresBackend struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// NewPostgresBackend connects, checks connectivity (with retries) and makes sure the schema exists.
func NewPostgresBackend(ctx context.Context, connectionString string, logger *slog.Logger) (*PostgresBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = retry.WithRetry(ctx, connectRetry, func() error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pb := &PostgresBackend{db: db, now: time.Now, logger: logger}
	if err := pb.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres dedup store connected")
	return pb, nil
}

func (pb *PostgresBackend) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS processed_articles (
		id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS dedup_state (
		singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
		last_updated TIMESTAMPTZ NOT NULL
	);
	`

	if _, err := pb.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Load reads every processed identity and the last_updated marker.
func (pb *PostgresBackend) Load(ctx context.Context) (*DedupStore, error) {
	rows, err := pb.db.QueryContext(ctx, `SELECT id FROM processed_articles`)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed articles: %w", err)
	}
	defer rows.Close()

	s := NewDedupStore()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan processed article: %w", err)
		}
		s.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read processed articles: %w", err)
	}

	err = pb.db.QueryRowContext(ctx, `SELECT last_updated FROM dedup_state WHERE singleton`).Scan(&s.LastUpdated)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to read last_updated: %w", err)
	}

	return s, nil
}

// Save replaces the stored identity set in one transaction, bulk-loading with COPY.
func (pb *PostgresBackend) Save(ctx context.Context, s *DedupStore) error {
	s.LastUpdated = pb.now()

	tx, err := pb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			pb.logger.Warn("rollback failed", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM processed_articles`); err != nil {
		return fmt.Errorf("failed to clear processed articles: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("processed_articles", "id"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	for _, id := range s.IDs() {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy id: %w", err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush copy: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dedup_state (singleton, last_updated) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET last_updated = EXCLUDED.last_updated
	`, s.LastUpdated)
	if err != nil {
		return fmt.Errorf("failed to update last_updated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (pb *PostgresBackend) Close() error {
	if pb.db != nil {
		return pb.db.Close()
	}
	return nil
}
