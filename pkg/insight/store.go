package insight

import (
	"sort"
	"strings"
)

// Store is the mutable collection of learned memories, keyed by the
// identifying (kind, trigger, symptom, resolution) tuple.
//
// The store holds every tracked association, including ones below the
// visibility threshold and deactivated ones; callers that surface memories
// to the user go through Visible, which applies both filters. The store
// itself does no locking: the engine has exactly one logical writer (the
// local user) and serializes access at the client layer.
type Store struct {
	memories map[string]*Memory
	byID     map[int64]*Memory
}

// NewStore creates an empty memory store.
func NewStore() *Store {
	return &Store{
		memories: make(map[string]*Memory),
		byID:     make(map[int64]*Memory),
	}
}

// Len returns the number of memories in the store, including suppressed
// and inactive ones.
func (s *Store) Len() int {
	return len(s.memories)
}

// Get returns the memory with the given identifying tuple, or nil.
func (s *Store) Get(kind MemoryKind, trigger, symptom, resolution string) *Memory {
	return s.memories[MemoryKey(kind, trigger, symptom, resolution)]
}

// GetByID returns the memory with the given ID, or ErrMemoryNotFound.
func (s *Store) GetByID(id int64) (*Memory, error) {
	if m, ok := s.byID[id]; ok {
		return m, nil
	}
	return nil, ErrMemoryNotFound
}

// Upsert inserts the memory, replacing any existing memory with the same
// identifying tuple.
func (s *Store) Upsert(m *Memory) {
	if old, ok := s.memories[m.Key()]; ok && old.ID != m.ID {
		delete(s.byID, old.ID)
	}
	s.memories[m.Key()] = m
	if m.ID != 0 {
		s.byID[m.ID] = m
	}
}

// All returns every memory in the store in no particular order.
func (s *Store) All() []*Memory {
	out := make([]*Memory, 0, len(s.memories))
	for _, m := range s.memories {
		out = append(out, m)
	}
	return out
}

// Visible returns the memories eligible for insight and food-safety
// queries: active and supported by at least minOccurrences log events.
// Below-threshold associations stay tracked but are suppressed so a single
// coincidence never produces a warning.
func (s *Store) Visible(minOccurrences int) []*Memory {
	out := make([]*Memory, 0, len(s.memories))
	for _, m := range s.memories {
		if m.IsActive && m.OccurrenceCount >= minOccurrences {
			out = append(out, m)
		}
	}
	return out
}

// VisibleByKind returns the visible memories of one kind.
func (s *Store) VisibleByKind(kind MemoryKind, minOccurrences int) []*Memory {
	out := make([]*Memory, 0)
	for _, m := range s.memories {
		if m.Kind == kind && m.IsActive && m.OccurrenceCount >= minOccurrences {
			out = append(out, m)
		}
	}
	return out
}

// SortByConfidence sorts memories by confidence score descending, ties
// broken by higher occurrence count, then by key for determinism.
func SortByConfidence(memories []*Memory) {
	sort.Slice(memories, func(i, j int) bool {
		if memories[i].ConfidenceScore != memories[j].ConfidenceScore {
			return memories[i].ConfidenceScore > memories[j].ConfidenceScore
		}
		if memories[i].OccurrenceCount != memories[j].OccurrenceCount {
			return memories[i].OccurrenceCount > memories[j].OccurrenceCount
		}
		return memories[i].Key() < memories[j].Key()
	})
}

// HasAnyForSymptom reports whether any active memory of any kind references
// the symptom (case-insensitive). Used to detect cold cases.
func (s *Store) HasAnyForSymptom(symptom string) bool {
	for _, m := range s.memories {
		if m.IsActive && strings.EqualFold(m.Symptom, symptom) {
			return true
		}
	}
	return false
}
