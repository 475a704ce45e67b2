// Package storage defines the persistence boundary for learned memories.
//
// It declares the MemoryStore interface that all backends (SQLite,
// PostgreSQL, MySQL) implement, and the flat Record type they persist.
// The engine computes entirely in memory; backends only make the results
// durable, so a failed write costs durability, never computed state.
package storage

import (
	"context"
	"time"
)

// Record is the persisted form of a learned memory.
//
// It is kept separate from the engine's domain type so the storage schema
// and the domain model can evolve independently; the core package converts
// between the two.
type Record struct {
	// ID is the unique identifier of the memory.
	ID int64

	// Kind is the association kind.
	Kind string

	// Trigger, Symptom, Resolution identify the association together with
	// Kind.
	Trigger    string
	Symptom    string
	Resolution string

	// Notes describes pattern/correlation findings.
	Notes string

	// OccurrenceCount, SuccessCount, FailureCount are the supporting
	// counters.
	OccurrenceCount int
	SuccessCount    int
	FailureCount    int

	// ConfidenceScore and EffectivenessScore are the derived scores,
	// persisted for direct display queries.
	ConfidenceScore    float64
	EffectivenessScore float64

	// UserConfirmed, UserDenied, IsActive, HighSeverity are the flags.
	UserConfirmed bool
	UserDenied    bool
	IsActive      bool
	HighSeverity  bool

	// CreatedAt and LastObservedAt are the lifecycle timestamps.
	CreatedAt      time.Time
	LastObservedAt time.Time
}

// MemoryStore is the interface all persistence backends implement.
//
// Backends are keyed by the identifying (kind, trigger, symptom,
// resolution) tuple: Upsert replaces the row for a matching tuple.
type MemoryStore interface {
	// ReplaceAll atomically replaces the persisted set with the given
	// records. Used after full rebuilds.
	ReplaceAll(ctx context.Context, records []*Record) error

	// Upsert inserts or updates a single record by its identifying tuple.
	Upsert(ctx context.Context, record *Record) error

	// GetAll returns every persisted record.
	GetAll(ctx context.Context) ([]*Record, error)

	// Close releases backend resources.
	Close() error
}
