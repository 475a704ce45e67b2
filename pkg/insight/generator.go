package insight

import (
	"fmt"
	"sort"
	"strings"
)

// WarningSeverity grades a warning.
type WarningSeverity string

const (
	// WarnCaution flags a known trigger at medium or high confidence.
	WarnCaution WarningSeverity = "caution"

	// WarnAlert flags a trigger whose history includes a severity >= 4 event.
	WarnAlert WarningSeverity = "alert"
)

// Warning tells the user a logged cause has preceded a symptom before.
type Warning struct {
	// Severity is caution or alert.
	Severity WarningSeverity `json:"severity"`

	// Trigger is the cause the new entry logged.
	Trigger string `json:"trigger"`

	// Symptom is the symptom the trigger has historically preceded.
	Symptom string `json:"symptom"`

	// Message is the display text.
	Message string `json:"message"`

	// MemoryID identifies the backing memory for feedback routing.
	MemoryID int64 `json:"memory_id"`
}

// Observation surfaces a pattern or correlation relevant to the new entry.
type Observation struct {
	// Message is the display text.
	Message string `json:"message"`

	// Confidence tags the observation with the backing memory's display
	// tier. The UI de-emphasizes low-confidence observations; it never
	// suppresses them (suppression happens only through deactivation).
	Confidence ConfidenceLevel `json:"confidence"`

	// MemoryID identifies the backing memory for feedback routing.
	MemoryID int64 `json:"memory_id"`
}

// Suggestion proposes a resolution that has helped this symptom before.
type Suggestion struct {
	// Resolution is the proposed treatment.
	Resolution string `json:"resolution"`

	// Symptom is the symptom the suggestion targets.
	Symptom string `json:"symptom"`

	// Effectiveness is the rounded percentage of times the resolution
	// helped.
	Effectiveness int `json:"effectiveness"`

	// Message is the display text.
	Message string `json:"message"`

	// MemoryID identifies the backing memory for feedback routing.
	MemoryID int64 `json:"memory_id"`
}

// Question asks the user for context on a symptom with no history yet.
type Question struct {
	// Symptom is the cold-case symptom.
	Symptom string `json:"symptom"`

	// Message is the templated question text.
	Message string `json:"message"`
}

// Response is the ranked, typed result of analyzing a newly logged entry.
// Any of the four sequences may be empty; an entirely empty response is a
// valid outcome for an entry with no matching history.
type Response struct {
	Warnings     []Warning     `json:"warnings"`
	Observations []Observation `json:"observations"`
	Suggestions  []Suggestion  `json:"suggestions"`
	Questions    []Question    `json:"questions"`

	// Summary is optional narrator text. Empty when the text-generation
	// collaborator is absent or failed.
	Summary string `json:"summary,omitempty"`
}

// HasContent reports whether any of the four sequences is non-empty.
func (r *Response) HasContent() bool {
	return len(r.Warnings) > 0 || len(r.Observations) > 0 ||
		len(r.Suggestions) > 0 || len(r.Questions) > 0
}

// GeneratorConfig contains configuration for insight generation.
type GeneratorConfig struct {
	// MinOccurrences mirrors the builder's visibility threshold.
	MinOccurrences int

	// MaxQuestions caps clarifying questions per response so a sparse
	// history does not overwhelm the user.
	MaxQuestions int
}

// DefaultGeneratorConfig returns the default generation configuration.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		MinOccurrences: 2,
		MaxQuestions:   2,
	}
}

// Generator produces the ranked response shown immediately after the user
// logs an entry. Warnings always come before observations, suggestions,
// and clarifying questions.
type Generator struct {
	config *GeneratorConfig
}

// NewGenerator creates a generator. A nil config uses defaults.
func NewGenerator(config *GeneratorConfig) *Generator {
	if config == nil {
		config = DefaultGeneratorConfig()
	}
	if config.MinOccurrences < 1 {
		config.MinOccurrences = 1
	}
	if config.MaxQuestions <= 0 {
		config.MaxQuestions = 2
	}
	return &Generator{config: config}
}

// Config returns the generator's configuration.
func (g *Generator) Config() *GeneratorConfig {
	return g.config
}

// Generate builds the response for a newly logged entry against the current
// store. The store is read, never mutated; use Observe to fold the entry's
// own co-occurrences back in.
func (g *Generator) Generate(entry *LogEntry, store *Store) *Response {
	resp := &Response{}
	if entry == nil || store == nil {
		return resp
	}
	g.addWarnings(resp, entry, store)
	g.addObservations(resp, entry, store)
	g.addSuggestions(resp, entry, store)
	g.addQuestions(resp, entry, store)
	return resp
}

// addWarnings emits one warning per visible trigger memory whose trigger
// matches a logged cause and whose symptom is not already present in the
// entry. Medium confidence earns a caution; a high-severity history earns
// an alert.
func (g *Generator) addWarnings(resp *Response, entry *LogEntry, store *Store) {
	triggers := store.VisibleByKind(KindTrigger, g.config.MinOccurrences)
	SortByConfidence(triggers)
	for _, m := range triggers {
		if !entry.HasCause(m.Trigger) || entry.HasSymptom(m.Symptom) {
			continue
		}
		if !m.ConfidenceLevel().AtLeast(LevelMedium) {
			continue
		}
		severity := WarnCaution
		msg := fmt.Sprintf("%s has triggered %s before (%d times).",
			m.Trigger, m.Symptom, m.OccurrenceCount)
		if m.HighSeverity {
			severity = WarnAlert
			msg = fmt.Sprintf("%s has triggered severe %s before (%d times). Consider avoiding it today.",
				m.Trigger, m.Symptom, m.OccurrenceCount)
		}
		resp.Warnings = append(resp.Warnings, Warning{
			Severity: severity,
			Trigger:  m.Trigger,
			Symptom:  m.Symptom,
			Message:  msg,
			MemoryID: m.ID,
		})
	}
}

// addObservations surfaces pattern/correlation memories touching a symptom
// in the entry, tagged with their own confidence tier.
func (g *Generator) addObservations(resp *Response, entry *LogEntry, store *Store) {
	for _, kind := range []MemoryKind{KindPattern, KindCorrelation} {
		memories := store.VisibleByKind(kind, g.config.MinOccurrences)
		SortByConfidence(memories)
		for _, m := range memories {
			if !g.observationMatches(m, entry) {
				continue
			}
			msg := m.Notes
			if msg == "" {
				msg = fmt.Sprintf("Noticed a %s involving %s.", m.Kind, m.Symptom)
			}
			resp.Observations = append(resp.Observations, Observation{
				Message:    msg,
				Confidence: m.ConfidenceLevel(),
				MemoryID:   m.ID,
			})
		}
	}
}

func (g *Generator) observationMatches(m *Memory, entry *LogEntry) bool {
	if entry.HasSymptom(m.Symptom) {
		return true
	}
	// Correlation memories hold their alphabetically-first symptom in the
	// trigger slot.
	return m.Kind == KindCorrelation && entry.HasSymptom(m.Trigger)
}

// addSuggestions proposes resolutions that worked for a logged symptom,
// unless the entry already records a resolution. Sorted by effectiveness
// descending, ties broken by higher occurrence count.
func (g *Generator) addSuggestions(resp *Response, entry *LogEntry, store *Store) {
	if strings.TrimSpace(entry.Resolution) != "" {
		return
	}
	type candidate struct {
		memory *Memory
		pct    int
	}
	var candidates []candidate
	for _, m := range store.VisibleByKind(KindWhatWorked, g.config.MinOccurrences) {
		if !entry.HasSymptom(m.Symptom) {
			continue
		}
		total := m.SuccessCount + m.FailureCount
		// Failures for the same treatment live in a companion memory.
		if bad := store.Get(KindWhatDidntWork, "", m.Symptom, m.Resolution); bad != nil {
			total += bad.FailureCount
		}
		candidates = append(candidates, candidate{
			memory: m,
			pct:    EffectivenessPercentage(m.SuccessCount, total),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].pct != candidates[j].pct {
			return candidates[i].pct > candidates[j].pct
		}
		if candidates[i].memory.OccurrenceCount != candidates[j].memory.OccurrenceCount {
			return candidates[i].memory.OccurrenceCount > candidates[j].memory.OccurrenceCount
		}
		return candidates[i].memory.Key() < candidates[j].memory.Key()
	})
	for _, c := range candidates {
		resp.Suggestions = append(resp.Suggestions, Suggestion{
			Resolution:    c.memory.Resolution,
			Symptom:       c.memory.Symptom,
			Effectiveness: c.pct,
			Message: fmt.Sprintf("%s has helped your %s %d%% of the time.",
				c.memory.Resolution, c.memory.Symptom, c.pct),
			MemoryID: c.memory.ID,
		})
	}
}

// addQuestions asks a templated clarifying question for each symptom with
// no active memory of any kind, capped at MaxQuestions.
func (g *Generator) addQuestions(resp *Response, entry *LogEntry, store *Store) {
	for _, symptom := range dedupeFold(entry.Symptoms) {
		if len(resp.Questions) >= g.config.MaxQuestions {
			return
		}
		if store.HasAnyForSymptom(symptom) {
			continue
		}
		resp.Questions = append(resp.Questions, Question{
			Symptom: symptom,
			Message: fmt.Sprintf("This is the first time you've logged %s. Did anything unusual happen before it?", symptom),
		})
	}
}

// Observe folds a newly logged entry's (cause, symptom) co-occurrences into
// the store, promoting first-time observations into tentative low-confidence
// memories and reinforcing existing ones. New memories start below the
// visibility threshold and stay suppressed until enough support accumulates.
//
// Returns the memories that were created or reinforced.
func (g *Generator) Observe(entry *LogEntry, store *Store) []*Memory {
	if entry == nil || store == nil || entry.Date.IsZero() {
		return nil
	}
	var touched []*Memory
	for _, cause := range dedupeFold(entry.Causes) {
		for _, symptom := range dedupeFold(entry.Symptoms) {
			m := store.Get(KindTrigger, cause, symptom, "")
			if m == nil {
				m, _ = NewMemory(KindTrigger, cause, symptom, "")
				store.Upsert(m)
			} else {
				m.OccurrenceCount++
			}
			if entry.Severity >= 4 {
				m.HighSeverity = true
			}
			m.LastObservedAt = entry.Date
			m.Recalculate()
			touched = append(touched, m)
		}
	}
	return touched
}
