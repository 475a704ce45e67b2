// Package sqlite provides the SQLite persistence backend for learned
// memories. SQLite is the default: a single local file suits the
// single-user tracker.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/symlog/symlog-go/pkg/storage"
)

// Client implements storage.MemoryStore on SQLite.
type Client struct {
	db    *sql.DB
	table string
}

// Config configures the SQLite backend.
type Config struct {
	// DBPath is the path to the database file.
	DBPath string

	// TableName is the memories table name. Defaults to "memories".
	TableName string
}

// NewClient opens (creating if needed) the SQLite database and ensures the
// memories table exists.
func NewClient(cfg *Config) (*Client, error) {
	table := cfg.TableName
	if table == "" {
		table = "memories"
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	c := &Client{db: db, table: table}
	if err := c.initTable(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) initTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			kind TEXT NOT NULL,
			trigger_name TEXT NOT NULL DEFAULT '',
			symptom TEXT NOT NULL DEFAULT '',
			resolution TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			success_count INTEGER NOT NULL DEFAULT 0,
			failure_count INTEGER NOT NULL DEFAULT 0,
			confidence_score REAL NOT NULL DEFAULT 0,
			effectiveness_score REAL NOT NULL DEFAULT 0,
			user_confirmed INTEGER NOT NULL DEFAULT 0,
			user_denied INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1,
			high_severity INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			last_observed_at DATETIME NOT NULL,
			UNIQUE(kind, trigger_name, symptom, resolution)
		)
	`, c.table)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("sqlite: init table: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the persisted memory set.
func (c *Client) ReplaceAll(ctx context.Context, records []*storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.table)); err != nil {
		return fmt.Errorf("sqlite: clear: %w", err)
	}
	for _, r := range records {
		if err := upsertTx(ctx, tx, c.table, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// Upsert inserts or updates one record by its identifying tuple.
func (c *Client) Upsert(ctx context.Context, record *storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertTx(ctx, tx, c.table, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func upsertTx(ctx context.Context, tx *sql.Tx, table string, r *storage.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, kind, trigger_name, symptom, resolution, notes,
		 occurrence_count, success_count, failure_count,
		 confidence_score, effectiveness_score,
		 user_confirmed, user_denied, is_active, high_severity,
		 created_at, last_observed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind, trigger_name, symptom, resolution) DO UPDATE SET
			notes = excluded.notes,
			occurrence_count = excluded.occurrence_count,
			success_count = excluded.success_count,
			failure_count = excluded.failure_count,
			confidence_score = excluded.confidence_score,
			effectiveness_score = excluded.effectiveness_score,
			user_confirmed = excluded.user_confirmed,
			user_denied = excluded.user_denied,
			is_active = excluded.is_active,
			high_severity = excluded.high_severity,
			last_observed_at = excluded.last_observed_at
	`, table)

	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Kind, r.Trigger, r.Symptom, r.Resolution, r.Notes,
		r.OccurrenceCount, r.SuccessCount, r.FailureCount,
		r.ConfidenceScore, r.EffectivenessScore,
		r.UserConfirmed, r.UserDenied, r.IsActive, r.HighSeverity,
		r.CreatedAt, r.LastObservedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upsert: %w", err)
	}
	return nil
}

// GetAll returns every persisted record.
func (c *Client) GetAll(ctx context.Context) ([]*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, trigger_name, symptom, resolution, notes,
		       occurrence_count, success_count, failure_count,
		       confidence_score, effectiveness_score,
		       user_confirmed, user_denied, is_active, high_severity,
		       created_at, last_observed_at
		FROM %s
	`, c.table)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get all: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		r := &storage.Record{}
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Trigger, &r.Symptom, &r.Resolution, &r.Notes,
			&r.OccurrenceCount, &r.SuccessCount, &r.FailureCount,
			&r.ConfidenceScore, &r.EffectivenessScore,
			&r.UserConfirmed, &r.UserDenied, &r.IsActive, &r.HighSeverity,
			&r.CreatedAt, &r.LastObservedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (c *Client) Close() error {
	return c.db.Close()
}
