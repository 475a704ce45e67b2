// Package postgres provides the PostgreSQL persistence backend for learned
// memories, for deployments that sync the tracker to a server database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/symlog/symlog-go/pkg/storage"
)

// Client implements storage.MemoryStore on PostgreSQL.
type Client struct {
	db    *sql.DB
	table string
}

// Config configures the PostgreSQL backend.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string

	// TableName is the memories table name. Defaults to "memories".
	TableName string

	// SSLMode is the libpq sslmode. Defaults to "disable".
	SSLMode string
}

// NewClient connects to PostgreSQL and ensures the memories table exists.
func NewClient(cfg *Config) (*Client, error) {
	table := cfg.TableName
	if table == "" {
		table = "memories"
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
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
			id BIGINT PRIMARY KEY,
			kind TEXT NOT NULL,
			trigger_name TEXT NOT NULL DEFAULT '',
			symptom TEXT NOT NULL DEFAULT '',
			resolution TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			occurrence_count INTEGER NOT NULL DEFAULT 1,
			success_count INTEGER NOT NULL DEFAULT 0,
			failure_count INTEGER NOT NULL DEFAULT 0,
			confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			effectiveness_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			user_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			user_denied BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			high_severity BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			last_observed_at TIMESTAMPTZ NOT NULL,
			UNIQUE(kind, trigger_name, symptom, resolution)
		)
	`, c.table)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("postgres: init table: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the persisted memory set.
func (c *Client) ReplaceAll(ctx context.Context, records []*storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.table)); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	for _, r := range records {
		if err := upsertTx(ctx, tx, c.table, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Upsert inserts or updates one record by its identifying tuple.
func (c *Client) Upsert(ctx context.Context, record *storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertTx(ctx, tx, c.table, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (kind, trigger_name, symptom, resolution) DO UPDATE SET
			notes = EXCLUDED.notes,
			occurrence_count = EXCLUDED.occurrence_count,
			success_count = EXCLUDED.success_count,
			failure_count = EXCLUDED.failure_count,
			confidence_score = EXCLUDED.confidence_score,
			effectiveness_score = EXCLUDED.effectiveness_score,
			user_confirmed = EXCLUDED.user_confirmed,
			user_denied = EXCLUDED.user_denied,
			is_active = EXCLUDED.is_active,
			high_severity = EXCLUDED.high_severity,
			last_observed_at = EXCLUDED.last_observed_at
	`, table)

	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Kind, r.Trigger, r.Symptom, r.Resolution, r.Notes,
		r.OccurrenceCount, r.SuccessCount, r.FailureCount,
		r.ConfidenceScore, r.EffectivenessScore,
		r.UserConfirmed, r.UserDenied, r.IsActive, r.HighSeverity,
		r.CreatedAt, r.LastObservedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert: %w", err)
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
		return nil, fmt.Errorf("postgres: get all: %w", err)
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
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (c *Client) Close() error {
	return c.db.Close()
}
