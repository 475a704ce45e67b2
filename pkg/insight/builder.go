package insight

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuilderConfig contains configuration for memory rebuilds.
type BuilderConfig struct {
	// DetailLevel gates which memory kinds are mined.
	// DetailMinimal computes triggers and effectiveness only;
	// DetailPatterns adds pattern/correlation mining;
	// DetailFull adds preference mining.
	DetailLevel DetailLevel

	// MinOccurrences is the support a candidate association needs before it
	// becomes visible to insight and food-safety queries. Associations below
	// the threshold are tracked but suppressed.
	MinOccurrences int

	// ReliefWindow is how long after a treatment a lower-severity entry for
	// the same symptom still counts as relief.
	ReliefWindow time.Duration
}

// DefaultBuilderConfig returns the default rebuild configuration:
// patterns detail level, a minimum of 2 supporting occurrences, and a
// 48 hour relief window.
func DefaultBuilderConfig() *BuilderConfig {
	return &BuilderConfig{
		DetailLevel:    DetailPatterns,
		MinOccurrences: 2,
		ReliefWindow:   48 * time.Hour,
	}
}

// Builder performs full rebuilds of the memory store from the complete log
// history.
//
// A rebuild is idempotent: running it twice on identical input yields
// identical occurrence counts. Rebuild-then-merge semantics preserve
// user-asserted feedback across rebuilds: counters are recomputed from the
// logs, but UserConfirmed/UserDenied/IsActive carry over for matching
// identifying tuples (BuildWithPrevious).
type Builder struct {
	config *BuilderConfig
}

// NewBuilder creates a builder with the given configuration.
// A nil config uses DefaultBuilderConfig.
func NewBuilder(config *BuilderConfig) *Builder {
	if config == nil {
		config = DefaultBuilderConfig()
	}
	if config.MinOccurrences < 1 {
		config.MinOccurrences = 1
	}
	if config.ReliefWindow <= 0 {
		config.ReliefWindow = 48 * time.Hour
	}
	return &Builder{config: config}
}

// Config returns the builder's configuration.
func (b *Builder) Config() *BuilderConfig {
	return b.config
}

// Build scans the full log history and the tracked treatment list and
// produces a fresh memory store.
//
// Empty or missing logs yield an empty store; entries with a zero date are
// skipped individually, never failing the whole batch.
func (b *Builder) Build(logs []LogEntry, treatments []TrackedItem) *Store {
	return b.BuildWithPrevious(nil, logs, treatments)
}

// BuildWithPrevious rebuilds the store from the full log history, carrying
// user feedback state over from a previous store for matching identifying
// tuples. The previous store is not mutated.
func (b *Builder) BuildWithPrevious(prev *Store, logs []LogEntry, treatments []TrackedItem) *Store {
	store := NewStore()

	entries := make([]LogEntry, 0, len(logs))
	for _, e := range logs {
		if e.Date.IsZero() {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	b.mineTriggers(store, entries)
	b.mineEffectiveness(store, entries)

	if b.config.DetailLevel == DetailPatterns || b.config.DetailLevel == DetailFull {
		b.mineCorrelations(store, entries)
		b.minePatterns(store, entries)
	}
	if b.config.DetailLevel == DetailFull {
		b.minePreferences(store, entries, treatments)
	}

	if prev != nil {
		carryOverFeedback(prev, store)
	}
	return store
}

// mineTriggers counts (cause, symptom) co-occurrences within single entries.
// One entry supports each pair at most once, however often it repeats a name.
func (b *Builder) mineTriggers(store *Store, entries []LogEntry) {
	for _, e := range entries {
		for _, cause := range dedupeFold(e.Causes) {
			for _, symptom := range dedupeFold(e.Symptoms) {
				m := store.Get(KindTrigger, cause, symptom, "")
				if m == nil {
					m, _ = NewMemory(KindTrigger, cause, symptom, "")
					store.Upsert(m)
				} else {
					m.OccurrenceCount++
				}
				if e.Severity >= 4 {
					m.HighSeverity = true
				}
				m.LastObservedAt = e.Date
				m.Recalculate()
			}
		}
	}
}

// mineEffectiveness pairs logged resolutions with subsequent same-symptom
// entries inside the relief window. A severity decrease counts as the
// resolution working; a later entry at the same or higher severity counts
// as it not working. Symptoms with no follow-up entry are left unjudged.
func (b *Builder) mineEffectiveness(store *Store, entries []LogEntry) {
	for i, e := range entries {
		if strings.TrimSpace(e.Resolution) == "" {
			continue
		}
		for _, symptom := range dedupeFold(e.Symptoms) {
			next, ok := nextEntryWithSymptom(entries, i, symptom, e.Date.Add(b.config.ReliefWindow))
			if !ok {
				continue
			}
			helped := next.Severity < e.Severity
			kind := KindWhatWorked
			if !helped {
				kind = KindWhatDidntWork
			}
			m := store.Get(kind, "", symptom, e.Resolution)
			if m == nil {
				m, _ = NewMemory(kind, "", symptom, e.Resolution)
				store.Upsert(m)
			} else {
				m.OccurrenceCount++
			}
			if helped {
				m.SuccessCount++
			} else {
				m.FailureCount++
			}
			m.LastObservedAt = next.Date
			m.Recalculate()
		}
	}
}

// mineCorrelations counts symptom pairs that appear in the same entry.
// Pairs are ordered alphabetically so (A,B) and (B,A) share one memory.
func (b *Builder) mineCorrelations(store *Store, entries []LogEntry) {
	for _, e := range entries {
		symptoms := dedupeFold(e.Symptoms)
		for i := 0; i < len(symptoms); i++ {
			for j := i + 1; j < len(symptoms); j++ {
				first, second := symptoms[i], symptoms[j]
				if strings.ToLower(second) < strings.ToLower(first) {
					first, second = second, first
				}
				m := store.Get(KindCorrelation, first, second, "")
				if m == nil {
					m, _ = NewMemory(KindCorrelation, first, second, "")
					m.Notes = fmt.Sprintf("%s and %s tend to occur together", first, second)
					store.Upsert(m)
				} else {
					m.OccurrenceCount++
				}
				m.LastObservedAt = e.Date
				m.Recalculate()
			}
		}
	}
}

// minePatterns looks for symptoms recurring on the same weekday.
func (b *Builder) minePatterns(store *Store, entries []LogEntry) {
	for _, e := range entries {
		day := e.Date.Weekday().String()
		for _, symptom := range dedupeFold(e.Symptoms) {
			m := store.Get(KindPattern, day, symptom, "")
			if m == nil {
				m, _ = NewMemory(KindPattern, day, symptom, "")
				m.Notes = fmt.Sprintf("%s often shows up on %ss", symptom, day)
				store.Upsert(m)
			} else {
				m.OccurrenceCount++
			}
			m.LastObservedAt = e.Date
			m.Recalculate()
		}
	}
}

// minePreferences counts how often each tracked treatment was the logged
// resolution, producing one preference memory per used treatment.
func (b *Builder) minePreferences(store *Store, entries []LogEntry, treatments []TrackedItem) {
	for _, t := range treatments {
		if strings.TrimSpace(t.Name) == "" {
			continue
		}
		var count int
		var last time.Time
		for _, e := range entries {
			if strings.EqualFold(e.Resolution, t.Name) {
				count++
				last = e.Date
			}
		}
		if count == 0 {
			continue
		}
		m, _ := NewMemory(KindPreference, "", "", t.Name)
		m.OccurrenceCount = count
		m.Notes = fmt.Sprintf("Reached for %s %d times", t.Name, count)
		m.LastObservedAt = last
		m.Recalculate()
		store.Upsert(m)
	}
}

// nextEntryWithSymptom finds the first entry after index i that reports the
// symptom, no later than the deadline.
func nextEntryWithSymptom(entries []LogEntry, i int, symptom string, deadline time.Time) (LogEntry, bool) {
	for j := i + 1; j < len(entries); j++ {
		if entries[j].Date.After(deadline) {
			break
		}
		if entries[j].HasSymptom(symptom) {
			return entries[j], true
		}
	}
	return LogEntry{}, false
}

// carryOverFeedback copies user-asserted state from prev onto rebuilt
// memories with matching identifying tuples. Counters stay as recomputed;
// only feedback flags, activity, identity, and creation time carry over.
func carryOverFeedback(prev, rebuilt *Store) {
	for _, m := range rebuilt.All() {
		old := prev.Get(m.Kind, m.Trigger, m.Symptom, m.Resolution)
		if old == nil {
			continue
		}
		m.UserConfirmed = old.UserConfirmed
		m.UserDenied = old.UserDenied
		m.IsActive = old.IsActive
		m.ID = old.ID
		m.CreatedAt = old.CreatedAt
		m.Recalculate()
		rebuilt.Upsert(m)
	}
}

func dedupeFold(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
