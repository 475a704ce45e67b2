package insight

import (
	"fmt"
	"strings"
)

// FoodSafetyStatus is the verdict of a food-safety query.
type FoodSafetyStatus string

const (
	// StatusSafe means nothing known argues against the food.
	StatusSafe FoodSafetyStatus = "safe"

	// StatusCaution means a cross-reaction or learned trigger argues for care.
	StatusCaution FoodSafetyStatus = "caution"

	// StatusAvoid means the food matches a known allergy.
	StatusAvoid FoodSafetyStatus = "avoid"
)

// FoodSafetyResult is the answer to "can I eat X?".
type FoodSafetyResult struct {
	// Food is the queried name.
	Food string `json:"food"`

	// Status is the verdict.
	Status FoodSafetyStatus `json:"status"`

	// Explanation names the decisive evidence.
	Explanation string `json:"explanation"`

	// CrossReactionSource names the allergy behind a cross-reaction verdict.
	CrossReactionSource string `json:"cross_reaction_source,omitempty"`

	// AdditionalNotes carries non-decisive evidence: cross-reaction details
	// folded under an exact allergy match, and learned triggers that did not
	// decide the status, each worded with its own confidence tier.
	AdditionalNotes []string `json:"additional_notes,omitempty"`
}

// Resolver answers food-safety queries from the static allergy table and
// the learned trigger memories. It performs no mutation and returns
// identical results for identical inputs.
type Resolver struct {
	minOccurrences int
}

// NewResolver creates a resolver using the given visibility threshold for
// learned triggers.
func NewResolver(minOccurrences int) *Resolver {
	if minOccurrences < 1 {
		minOccurrences = 1
	}
	return &Resolver{minOccurrences: minOccurrences}
}

// CheckFood computes a safety verdict for a food name. Matching order, most
// severe first, first decisive match wins:
//
//  1. Exact case-insensitive match against an allergy name -> avoid.
//  2. Name listed among an allergy's cross-reactive items -> caution.
//  3. An active learned trigger at medium confidence or better whose
//     trigger contains the name (or vice versa) -> caution.
//  4. Otherwise -> safe, with any weaker learned triggers noted.
//
// When both an exact allergy match and a cross-reaction exist, the exact
// match wins and the cross-reaction detail lands in AdditionalNotes.
func (r *Resolver) CheckFood(name string, allergies []AllergyRecord, store *Store) *FoodSafetyResult {
	result := &FoodSafetyResult{Food: name}
	name = strings.TrimSpace(name)
	if name == "" {
		result.Status = StatusSafe
		result.Explanation = "No food name given."
		return result
	}

	exact := findExactAllergy(name, allergies)
	crossSource := findCrossReaction(name, allergies)

	if exact != nil {
		result.Status = StatusAvoid
		result.Explanation = fmt.Sprintf("%s is a known %s allergy%s.",
			exact.Name, exact.Severity, reactionSuffix(exact))
		if crossSource != nil && !strings.EqualFold(crossSource.Name, exact.Name) {
			result.AdditionalNotes = append(result.AdditionalNotes,
				fmt.Sprintf("Also cross-reactive with your %s allergy.", crossSource.Name))
		}
		return result
	}

	if crossSource != nil {
		result.Status = StatusCaution
		result.CrossReactionSource = crossSource.Name
		result.Explanation = fmt.Sprintf("%s can cross-react with your %s allergy.",
			name, crossSource.Name)
		return result
	}

	strong, weak := r.matchLearnedTriggers(name, store)
	if strong != nil {
		result.Status = StatusCaution
		result.Explanation = fmt.Sprintf("You've logged %s as a trigger for %s %d times.",
			strong.Trigger, strong.Symptom, strong.OccurrenceCount)
		for _, m := range weak {
			result.AdditionalNotes = append(result.AdditionalNotes, triggerNote(m))
		}
		return result
	}

	result.Status = StatusSafe
	result.Explanation = fmt.Sprintf("Nothing in your history or allergy list argues against %s.", name)
	for _, m := range weak {
		result.AdditionalNotes = append(result.AdditionalNotes, triggerNote(m))
	}
	return result
}

// matchLearnedTriggers splits matching visible trigger memories into the
// strongest match at medium confidence or better, and the weaker rest.
func (r *Resolver) matchLearnedTriggers(name string, store *Store) (*Memory, []*Memory) {
	if store == nil {
		return nil, nil
	}
	matches := make([]*Memory, 0)
	for _, m := range store.VisibleByKind(KindTrigger, r.minOccurrences) {
		if triggerMatches(m.Trigger, name) {
			matches = append(matches, m)
		}
	}
	SortByConfidence(matches)

	var strong *Memory
	weak := make([]*Memory, 0)
	for _, m := range matches {
		if strong == nil && m.ConfidenceLevel().AtLeast(LevelMedium) {
			strong = m
			continue
		}
		weak = append(weak, m)
	}
	return strong, weak
}

func triggerMatches(trigger, name string) bool {
	t := strings.ToLower(strings.TrimSpace(trigger))
	n := strings.ToLower(name)
	if t == "" {
		return false
	}
	return t == n || strings.Contains(t, n) || strings.Contains(n, t)
}

func findExactAllergy(name string, allergies []AllergyRecord) *AllergyRecord {
	for i := range allergies {
		if strings.EqualFold(allergies[i].Name, name) {
			return &allergies[i]
		}
	}
	return nil
}

func findCrossReaction(name string, allergies []AllergyRecord) *AllergyRecord {
	for i := range allergies {
		for _, item := range allergies[i].CrossReactiveItems {
			if strings.EqualFold(item, name) {
				return &allergies[i]
			}
		}
	}
	return nil
}

func reactionSuffix(a *AllergyRecord) string {
	if len(a.KnownReactions) == 0 {
		return ""
	}
	return " (known reactions: " + strings.Join(a.KnownReactions, ", ") + ")"
}

func triggerNote(m *Memory) string {
	return fmt.Sprintf("%s was logged before %s %d time(s) (%s confidence).",
		m.Trigger, m.Symptom, m.OccurrenceCount, m.ConfidenceLevel())
}
