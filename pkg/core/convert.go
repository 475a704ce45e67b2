package core

import (
	"github.com/symlog/symlog-go/pkg/insight"
	"github.com/symlog/symlog-go/pkg/storage"
)

// toRecord converts a domain memory into its persisted form.
func toRecord(m *insight.Memory) *storage.Record {
	return &storage.Record{
		ID:                 m.ID,
		Kind:               string(m.Kind),
		Trigger:            m.Trigger,
		Symptom:            m.Symptom,
		Resolution:         m.Resolution,
		Notes:              m.Notes,
		OccurrenceCount:    m.OccurrenceCount,
		SuccessCount:       m.SuccessCount,
		FailureCount:       m.FailureCount,
		ConfidenceScore:    m.ConfidenceScore,
		EffectivenessScore: m.EffectivenessScore,
		UserConfirmed:      m.UserConfirmed,
		UserDenied:         m.UserDenied,
		IsActive:           m.IsActive,
		HighSeverity:       m.HighSeverity,
		CreatedAt:          m.CreatedAt,
		LastObservedAt:     m.LastObservedAt,
	}
}

// fromRecord converts a persisted record back into a domain memory.
// Scores are recomputed from the counters so a hand-edited or stale row
// can never carry a score its counters do not support.
func fromRecord(r *storage.Record) *insight.Memory {
	m := &insight.Memory{
		ID:              r.ID,
		Kind:            insight.MemoryKind(r.Kind),
		Trigger:         r.Trigger,
		Symptom:         r.Symptom,
		Resolution:      r.Resolution,
		Notes:           r.Notes,
		OccurrenceCount: r.OccurrenceCount,
		SuccessCount:    r.SuccessCount,
		FailureCount:    r.FailureCount,
		UserConfirmed:   r.UserConfirmed,
		UserDenied:      r.UserDenied,
		IsActive:        r.IsActive,
		HighSeverity:    r.HighSeverity,
		CreatedAt:       r.CreatedAt,
		LastObservedAt:  r.LastObservedAt,
	}
	m.Recalculate()
	return m
}
