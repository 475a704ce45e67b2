// Package insight implements the learned-association engine for a personal
// symptom tracker: building confidence-scored memories from the raw log
// history, maintaining them under user feedback, generating ranked insights
// for newly logged entries, and answering food-safety queries.
package insight

import (
	"strings"
	"time"
)

// MemoryKind identifies what kind of association a Memory describes.
//
// Each kind populates a different subset of the identifying fields:
//   - KindTrigger: Trigger + Symptom ("Dairy has triggered Bloating")
//   - KindWhatWorked / KindWhatDidntWork: Resolution + Symptom
//   - KindPattern / KindCorrelation: Notes carries the finding
//   - KindPreference: Resolution ("user reaches for Ibuprofen")
type MemoryKind string

const (
	// KindTrigger associates a reported cause with a symptom.
	KindTrigger MemoryKind = "trigger"

	// KindWhatWorked associates a resolution with symptom improvement.
	KindWhatWorked MemoryKind = "what_worked"

	// KindWhatDidntWork associates a resolution with no improvement.
	KindWhatDidntWork MemoryKind = "what_didnt_work"

	// KindPattern captures a recurring temporal pattern for a symptom.
	KindPattern MemoryKind = "pattern"

	// KindCorrelation captures two symptoms that tend to appear together.
	KindCorrelation MemoryKind = "correlation"

	// KindPreference captures a treatment the user habitually reaches for.
	KindPreference MemoryKind = "preference"
)

// Valid reports whether k is one of the recognized memory kinds.
func (k MemoryKind) Valid() bool {
	switch k {
	case KindTrigger, KindWhatWorked, KindWhatDidntWork,
		KindPattern, KindCorrelation, KindPreference:
		return true
	}
	return false
}

// ConfidenceLevel is the three-tier display projection of a confidence score.
//
// It is derived from the score via fixed thresholds and is never stored;
// it exists for display grouping only and must not gate engine behavior.
type ConfidenceLevel string

const (
	// LevelLow indicates a confidence score below 0.4.
	LevelLow ConfidenceLevel = "low"

	// LevelMedium indicates a confidence score in [0.4, 0.75).
	LevelMedium ConfidenceLevel = "medium"

	// LevelHigh indicates a confidence score of 0.75 or above.
	LevelHigh ConfidenceLevel = "high"
)

// AtLeast reports whether l is at or above the given level in the
// low < medium < high ordering.
func (l ConfidenceLevel) AtLeast(min ConfidenceLevel) bool {
	return levelRank(l) >= levelRank(min)
}

func levelRank(l ConfidenceLevel) int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// Memory is a single learned association, uniquely identified by the tuple
// (Kind, Trigger, Symptom, Resolution).
//
// ConfidenceScore is always a pure function of the counters and the feedback
// flags (see ConfidenceScore in scoring.go); it is recomputed on every
// mutation and never set independently, so counters and score cannot drift.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64 `json:"id"`

	// Kind identifies the association kind.
	Kind MemoryKind `json:"kind"`

	// Trigger is the cause side of a trigger association (empty otherwise).
	Trigger string `json:"trigger,omitempty"`

	// Symptom is the symptom side of the association.
	Symptom string `json:"symptom,omitempty"`

	// Resolution is the treatment side of an effectiveness association.
	Resolution string `json:"resolution,omitempty"`

	// Notes describes pattern/correlation findings that do not fit the
	// trigger/symptom/resolution slots.
	Notes string `json:"notes,omitempty"`

	// OccurrenceCount is the number of log events supporting the association.
	OccurrenceCount int `json:"occurrence_count"`

	// SuccessCount counts observed outcomes where the resolution helped.
	// Only meaningful for KindWhatWorked/KindWhatDidntWork.
	SuccessCount int `json:"success_count,omitempty"`

	// FailureCount counts observed outcomes where the resolution did not help.
	FailureCount int `json:"failure_count,omitempty"`

	// ConfidenceScore is the derived confidence in [0, 1].
	ConfidenceScore float64 `json:"confidence_score"`

	// EffectivenessScore is the derived success fraction in [0, 1].
	// Only meaningful for KindWhatWorked/KindWhatDidntWork.
	EffectivenessScore float64 `json:"effectiveness_score,omitempty"`

	// UserConfirmed is set only by explicit confirm feedback.
	UserConfirmed bool `json:"user_confirmed"`

	// UserDenied is set only by explicit deny feedback.
	// Mutually exclusive with UserConfirmed.
	UserDenied bool `json:"user_denied"`

	// IsActive is false for denied or dismissed memories. Inactive memories
	// are excluded from all insight and food-safety queries but retained so
	// a rebuild does not silently resurrect them.
	IsActive bool `json:"is_active"`

	// HighSeverity is true when the association co-occurred with a
	// severity >= 4 log entry. Drives alert-level warnings.
	HighSeverity bool `json:"high_severity"`

	// CreatedAt is when the memory was first materialized.
	CreatedAt time.Time `json:"created_at"`

	// LastObservedAt is the date of the most recent supporting log entry.
	LastObservedAt time.Time `json:"last_observed_at"`
}

// NewMemory creates a Memory of the given kind with its identifying fields
// and a single supporting occurrence. It validates that the kind is known
// and that the fields the kind requires are present.
func NewMemory(kind MemoryKind, trigger, symptom, resolution string) (*Memory, error) {
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	switch kind {
	case KindTrigger:
		if trigger == "" || symptom == "" {
			return nil, ErrIncompleteMemory
		}
	case KindWhatWorked, KindWhatDidntWork:
		if resolution == "" || symptom == "" {
			return nil, ErrIncompleteMemory
		}
	case KindPreference:
		if resolution == "" {
			return nil, ErrIncompleteMemory
		}
	}
	now := time.Now()
	m := &Memory{
		Kind:            kind,
		Trigger:         trigger,
		Symptom:         symptom,
		Resolution:      resolution,
		OccurrenceCount: 1,
		IsActive:        true,
		CreatedAt:       now,
		LastObservedAt:  now,
	}
	m.Recalculate()
	return m, nil
}

// Key returns the identifying tuple of the memory in canonical form.
// Two memories with equal keys describe the same association.
func (m *Memory) Key() string {
	return MemoryKey(m.Kind, m.Trigger, m.Symptom, m.Resolution)
}

// MemoryKey builds the canonical identifying key for a (kind, trigger,
// symptom, resolution) tuple. Matching is case-insensitive.
func MemoryKey(kind MemoryKind, trigger, symptom, resolution string) string {
	return strings.ToLower(string(kind) + "|" + trigger + "|" + symptom + "|" + resolution)
}

// ConfidenceLevel returns the display tier for the memory's current score.
func (m *Memory) ConfidenceLevel() ConfidenceLevel {
	return LevelForScore(m.ConfidenceScore)
}

// Recalculate re-derives ConfidenceScore and EffectivenessScore from the
// memory's counters and feedback flags. Called after every mutation.
func (m *Memory) Recalculate() {
	m.ConfidenceScore = ConfidenceScore(m.OccurrenceCount, m.UserConfirmed, m.UserDenied)
	switch m.Kind {
	case KindWhatWorked, KindWhatDidntWork:
		total := m.SuccessCount + m.FailureCount
		if total > 0 {
			m.EffectivenessScore = float64(m.SuccessCount) / float64(total)
		} else {
			m.EffectivenessScore = 0
		}
	}
}

// LogEntry is a single dated record from the tracker's log history.
// It is read-only input to this package.
type LogEntry struct {
	// Date is when the entry was logged. Entries with a zero date are
	// considered malformed and skipped during rebuilds.
	Date time.Time `json:"date"`

	// Symptoms are the symptom names reported in this entry.
	Symptoms []string `json:"symptoms"`

	// Causes are the suspected triggers the user reported.
	Causes []string `json:"causes,omitempty"`

	// Severity is the reported severity, 1 (mild) to 5 (worst).
	Severity int `json:"severity"`

	// Resolution is the treatment taken, if any.
	Resolution string `json:"resolution,omitempty"`

	// Notes is free text. Never forwarded to external collaborators.
	Notes string `json:"notes,omitempty"`
}

// HasSymptom reports whether the entry lists the symptom (case-insensitive).
func (e *LogEntry) HasSymptom(name string) bool {
	return containsFold(e.Symptoms, name)
}

// HasCause reports whether the entry lists the cause (case-insensitive).
func (e *LogEntry) HasCause(name string) bool {
	return containsFold(e.Causes, name)
}

func containsFold(items []string, name string) bool {
	for _, it := range items {
		if strings.EqualFold(it, name) {
			return true
		}
	}
	return false
}

// TrackedItem is a treatment or supplement the user tracks.
type TrackedItem struct {
	// Name is the treatment name as logged in entries.
	Name string `json:"name"`

	// Category groups the item (medication, supplement, habit, ...).
	Category string `json:"category,omitempty"`
}

// AllergySeverity grades a known allergy.
type AllergySeverity string

const (
	// SeverityMild marks a mild allergy.
	SeverityMild AllergySeverity = "mild"

	// SeverityModerate marks a moderate allergy.
	SeverityModerate AllergySeverity = "moderate"

	// SeveritySevere marks a severe allergy.
	SeveritySevere AllergySeverity = "severe"
)

// AllergyRecord is a known allergy with its cross-reactivity table.
// Read-only input to the food-safety resolver.
type AllergyRecord struct {
	// Name is the allergen name.
	Name string `json:"name"`

	// Severity grades the allergy.
	Severity AllergySeverity `json:"severity"`

	// CrossReactiveItems are foods likely to provoke a reaction through
	// protein similarity with this allergen.
	CrossReactiveItems []string `json:"cross_reactive_items,omitempty"`

	// KnownReactions describes reactions observed for this allergy.
	KnownReactions []string `json:"known_reactions,omitempty"`
}

// DetailLevel gates which memory kinds a rebuild computes.
type DetailLevel string

const (
	// DetailMinimal mines trigger and effectiveness memories only.
	DetailMinimal DetailLevel = "minimal"

	// DetailPatterns adds pattern/correlation mining. Default.
	DetailPatterns DetailLevel = "patterns"

	// DetailFull adds preference mining on top of patterns.
	DetailFull DetailLevel = "full"
)

// ParseDetailLevel parses a configured detail level. Unrecognized values
// fall back to DetailPatterns rather than failing.
func ParseDetailLevel(s string) DetailLevel {
	switch DetailLevel(strings.ToLower(strings.TrimSpace(s))) {
	case DetailMinimal:
		return DetailMinimal
	case DetailFull:
		return DetailFull
	default:
		return DetailPatterns
	}
}
