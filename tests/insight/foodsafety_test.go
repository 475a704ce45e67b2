package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symlog/symlog-go/pkg/insight"
)

func testAllergies() []insight.AllergyRecord {
	return []insight.AllergyRecord{
		{
			Name:               "Shellfish",
			Severity:           insight.SeveritySevere,
			CrossReactiveItems: []string{"Shrimp", "Crab", "Lobster"},
			KnownReactions:     []string{"hives", "swelling"},
		},
		{
			Name:     "Peanuts",
			Severity: insight.SeverityModerate,
		},
	}
}

func TestCheckFoodExactAllergy(t *testing.T) {
	r := insight.NewResolver(2)

	result := r.CheckFood("Shellfish", testAllergies(), insight.NewStore())
	assert.Equal(t, insight.StatusAvoid, result.Status)
	assert.Contains(t, result.Explanation, "severe")
	assert.Contains(t, result.Explanation, "hives")
	assert.Empty(t, result.CrossReactionSource)
}

func TestCheckFoodCrossReaction(t *testing.T) {
	r := insight.NewResolver(2)

	result := r.CheckFood("Shrimp", testAllergies(), insight.NewStore())
	assert.Equal(t, insight.StatusCaution, result.Status)
	assert.Equal(t, "Shellfish", result.CrossReactionSource)
	assert.Contains(t, result.Explanation, "cross-react")
}

func TestCheckFoodExactBeatsCrossReaction(t *testing.T) {
	allergies := append(testAllergies(), insight.AllergyRecord{
		Name:               "Crab",
		Severity:           insight.SeverityMild,
		CrossReactiveItems: []string{"Lobster"},
	})
	r := insight.NewResolver(2)

	// Crab is both its own allergy and cross-reactive with Shellfish.
	result := r.CheckFood("Crab", allergies, insight.NewStore())
	assert.Equal(t, insight.StatusAvoid, result.Status, "exact allergy outranks cross-reaction")
	assert.Empty(t, result.CrossReactionSource)
	require.NotEmpty(t, result.AdditionalNotes)
	assert.Contains(t, result.AdditionalNotes[0], "Shellfish")
}

func TestCheckFoodLearnedTrigger(t *testing.T) {
	store := insight.NewBuilder(nil).Build(dairyLogs(), nil)
	r := insight.NewResolver(2)

	result := r.CheckFood("Dairy", nil, store)
	assert.Equal(t, insight.StatusCaution, result.Status)
	assert.Contains(t, result.Explanation, "3 times")
	assert.Empty(t, result.CrossReactionSource)
}

func TestCheckFoodSubstringTriggerMatch(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Bloating"}, Causes: []string{"Oat milk latte"}, Severity: 2},
		{Date: day(3), Symptoms: []string{"Bloating"}, Causes: []string{"Oat milk latte"}, Severity: 2},
	}
	store := insight.NewBuilder(nil).Build(logs, nil)
	r := insight.NewResolver(2)

	result := r.CheckFood("oat milk", nil, store)
	assert.Equal(t, insight.StatusCaution, result.Status)
}

func TestCheckFoodSecondaryTriggerNoteKeepsItsLevel(t *testing.T) {
	// Two matching triggers above medium confidence: the strongest decides,
	// the other lands in the notes worded with its own tier.
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Bloating"}, Causes: []string{"Oat milk"}, Severity: 2},
		{Date: day(2), Symptoms: []string{"Bloating"}, Causes: []string{"Oat milk"}, Severity: 2},
		{Date: day(4), Symptoms: []string{"Bloating"}, Causes: []string{"Oat milk"}, Severity: 2},
		{Date: day(1), Symptoms: []string{"Cramps"}, Causes: []string{"Milk"}, Severity: 2},
		{Date: day(3), Symptoms: []string{"Cramps"}, Causes: []string{"Milk"}, Severity: 2},
	}
	store := insight.NewBuilder(nil).Build(logs, nil)
	r := insight.NewResolver(2)

	result := r.CheckFood("milk", nil, store)
	assert.Equal(t, insight.StatusCaution, result.Status)
	assert.Contains(t, result.Explanation, "Oat milk", "highest confidence match decides")
	require.Len(t, result.AdditionalNotes, 1)
	assert.Contains(t, result.AdditionalNotes[0], "Milk")
	assert.Contains(t, result.AdditionalNotes[0], "medium confidence")
	assert.NotContains(t, result.AdditionalNotes[0], "low", "note must carry the memory's real tier")
}

func TestCheckFoodWeakTriggerStaysSafe(t *testing.T) {
	// A single sighting is tracked but below the visibility threshold.
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Bloating"}, Causes: []string{"Kimchi"}, Severity: 2},
	}
	store := insight.NewBuilder(nil).Build(logs, nil)
	r := insight.NewResolver(2)

	result := r.CheckFood("Kimchi", nil, store)
	assert.Equal(t, insight.StatusSafe, result.Status)
	assert.Empty(t, result.AdditionalNotes, "suppressed triggers stay invisible")
}

func TestCheckFoodUnknownIsSafe(t *testing.T) {
	r := insight.NewResolver(2)

	result := r.CheckFood("Rice", testAllergies(), insight.NewStore())
	assert.Equal(t, insight.StatusSafe, result.Status)
	assert.Contains(t, result.Explanation, "Rice")
}

func TestCheckFoodIsIdempotent(t *testing.T) {
	store := insight.NewBuilder(nil).Build(dairyLogs(), nil)
	r := insight.NewResolver(2)

	first := r.CheckFood("Dairy", testAllergies(), store)
	second := r.CheckFood("Dairy", testAllergies(), store)
	assert.Equal(t, first, second, "read-only query must not drift")
}

func TestCheckFoodCaseInsensitive(t *testing.T) {
	r := insight.NewResolver(2)

	result := r.CheckFood("shellfish", testAllergies(), insight.NewStore())
	assert.Equal(t, insight.StatusAvoid, result.Status)
}
