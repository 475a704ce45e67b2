// Package mysql provides the MySQL persistence backend for learned
// memories, for MySQL-compatible server deployments.
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/symlog/symlog-go/pkg/storage"
)

// Client implements storage.MemoryStore on MySQL.
type Client struct {
	db    *sql.DB
	table string
}

// Config configures the MySQL backend.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string

	// TableName is the memories table name. Defaults to "memories".
	TableName string
}

// NewClient connects to MySQL and ensures the memories table exists.
func NewClient(cfg *Config) (*Client, error) {
	table := cfg.TableName
	if table == "" {
		table = "memories"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("mysql: ping: %w", err)
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
			kind VARCHAR(32) NOT NULL,
			trigger_name VARCHAR(255) NOT NULL DEFAULT '',
			symptom VARCHAR(255) NOT NULL DEFAULT '',
			resolution VARCHAR(255) NOT NULL DEFAULT '',
			notes TEXT,
			occurrence_count INT NOT NULL DEFAULT 1,
			success_count INT NOT NULL DEFAULT 0,
			failure_count INT NOT NULL DEFAULT 0,
			confidence_score DOUBLE NOT NULL DEFAULT 0,
			effectiveness_score DOUBLE NOT NULL DEFAULT 0,
			user_confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			user_denied BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			high_severity BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			last_observed_at DATETIME NOT NULL,
			UNIQUE KEY uniq_tuple (kind, trigger_name, symptom, resolution)
		)
	`, c.table)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("mysql: init table: %w", err)
	}
	return nil
}

// ReplaceAll atomically replaces the persisted memory set.
func (c *Client) ReplaceAll(ctx context.Context, records []*storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", c.table)); err != nil {
		return fmt.Errorf("mysql: clear: %w", err)
	}
	for _, r := range records {
		if err := upsertTx(ctx, tx, c.table, r); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

// Upsert inserts or updates one record by its identifying tuple.
func (c *Client) Upsert(ctx context.Context, record *storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertTx(ctx, tx, c.table, record); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
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
		ON DUPLICATE KEY UPDATE
			notes = VALUES(notes),
			occurrence_count = VALUES(occurrence_count),
			success_count = VALUES(success_count),
			failure_count = VALUES(failure_count),
			confidence_score = VALUES(confidence_score),
			effectiveness_score = VALUES(effectiveness_score),
			user_confirmed = VALUES(user_confirmed),
			user_denied = VALUES(user_denied),
			is_active = VALUES(is_active),
			high_severity = VALUES(high_severity),
			last_observed_at = VALUES(last_observed_at)
	`, table)

	_, err := tx.ExecContext(ctx, query,
		r.ID, r.Kind, r.Trigger, r.Symptom, r.Resolution, r.Notes,
		r.OccurrenceCount, r.SuccessCount, r.FailureCount,
		r.ConfidenceScore, r.EffectivenessScore,
		r.UserConfirmed, r.UserDenied, r.IsActive, r.HighSeverity,
		r.CreatedAt, r.LastObservedAt,
	)
	if err != nil {
		return fmt.Errorf("mysql: upsert: %w", err)
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
		return nil, fmt.Errorf("mysql: get all: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		r := &storage.Record{}
		var notes sql.NullString
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Trigger, &r.Symptom, &r.Resolution, &notes,
			&r.OccurrenceCount, &r.SuccessCount, &r.FailureCount,
			&r.ConfidenceScore, &r.EffectivenessScore,
			&r.UserConfirmed, &r.UserDenied, &r.IsActive, &r.HighSeverity,
			&r.CreatedAt, &r.LastObservedAt,
		); err != nil {
			return nil, fmt.Errorf("mysql: scan: %w", err)
		}
		r.Notes = notes.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: rows: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (c *Client) Close() error {
	return c.db.Close()
}
