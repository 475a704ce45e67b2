package insight_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symlog/symlog-go/pkg/insight"
)

func day(n int) time.Time {
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func dairyLogs() []insight.LogEntry {
	return []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Bloating"}, Causes: []string{"Dairy"}, Severity: 2},
		{Date: day(3), Symptoms: []string{"Bloating"}, Causes: []string{"Dairy"}, Severity: 3},
		{Date: day(7), Symptoms: []string{"Bloating"}, Causes: []string{"Dairy"}, Severity: 2},
	}
}

func TestBuildTriggerMemories(t *testing.T) {
	builder := insight.NewBuilder(nil)
	store := builder.Build(dairyLogs(), nil)

	m := store.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	assert.Equal(t, 3, m.OccurrenceCount)
	assert.True(t, m.ConfidenceLevel().AtLeast(insight.LevelMedium))
	assert.True(t, m.IsActive)
	assert.Equal(t, day(7), m.LastObservedAt)
}

func TestBuildEmptyLogs(t *testing.T) {
	builder := insight.NewBuilder(nil)

	store := builder.Build(nil, nil)
	assert.Equal(t, 0, store.Len())

	store = builder.Build([]insight.LogEntry{}, nil)
	assert.Equal(t, 0, store.Len())
}

func TestBuildSkipsMalformedEntries(t *testing.T) {
	logs := dairyLogs()
	// An entry without a date is malformed and skipped, not fatal.
	logs = append(logs, insight.LogEntry{
		Symptoms: []string{"Bloating"}, Causes: []string{"Dairy"}, Severity: 3,
	})

	builder := insight.NewBuilder(nil)
	store := builder.Build(logs, nil)

	m := store.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	assert.Equal(t, 3, m.OccurrenceCount, "dateless entry must not be counted")
}

func TestBuildCountsEachEntryOnce(t *testing.T) {
	// One event listing the same cause twice, with different casing, is
	// still a single supporting occurrence.
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Bloating", "bloating"}, Causes: []string{"Dairy", "dairy"}, Severity: 2},
	}

	builder := insight.NewBuilder(nil)
	store := builder.Build(logs, nil)

	m := store.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	assert.Equal(t, 1, m.OccurrenceCount)

	gen := insight.NewGenerator(nil)
	resp := gen.Generate(&insight.LogEntry{
		Date:     day(5),
		Symptoms: []string{"Fatigue"},
		Causes:   []string{"Dairy"},
		Severity: 1,
	}, store)
	assert.Empty(t, resp.Warnings, "one event must not cross the visibility threshold")
}

func TestBuildDedupesResolutionSymptoms(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Headache", "headache"}, Severity: 4, Resolution: "Ibuprofen"},
		{Date: day(1), Symptoms: []string{"Headache"}, Severity: 2},
	}

	store := insight.NewBuilder(nil).Build(logs, nil)
	worked := store.Get(insight.KindWhatWorked, "", "Headache", "Ibuprofen")
	require.NotNil(t, worked)
	assert.Equal(t, 1, worked.OccurrenceCount)
	assert.Equal(t, 1, worked.SuccessCount)
}

func TestRebuildIsIdempotent(t *testing.T) {
	builder := insight.NewBuilder(nil)
	logs := dairyLogs()

	first := builder.Build(logs, nil)
	second := builder.Build(logs, nil)

	require.Equal(t, first.Len(), second.Len())
	for _, m := range first.All() {
		other := second.Get(m.Kind, m.Trigger, m.Symptom, m.Resolution)
		require.NotNil(t, other, "missing %s on second build", m.Key())
		assert.Equal(t, m.OccurrenceCount, other.OccurrenceCount)
		assert.Equal(t, m.ConfidenceScore, other.ConfidenceScore)
	}
}

func TestRebuildPreservesFeedback(t *testing.T) {
	builder := insight.NewBuilder(nil)
	logs := dairyLogs()

	first := builder.Build(logs, nil)
	confirmed := first.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, confirmed)
	confirmed.ID = 42
	require.NoError(t, insight.ApplyFeedback(confirmed, insight.FeedbackConfirm))

	rebuilt := builder.BuildWithPrevious(first, logs, nil)
	m := rebuilt.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	assert.Equal(t, 3, m.OccurrenceCount, "counts come from the logs")
	assert.True(t, m.UserConfirmed, "confirmation must survive the rebuild")
	assert.False(t, m.UserDenied)
	assert.Equal(t, int64(42), m.ID, "identity must survive the rebuild")
}

func TestRebuildDoesNotResurrectDenied(t *testing.T) {
	builder := insight.NewBuilder(nil)
	logs := dairyLogs()

	first := builder.Build(logs, nil)
	denied := first.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NoError(t, insight.ApplyFeedback(denied, insight.FeedbackDeny))

	rebuilt := builder.BuildWithPrevious(first, logs, nil)
	m := rebuilt.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	assert.False(t, m.IsActive, "denied memory must stay deactivated after a rebuild")
	assert.True(t, m.UserDenied)
	assert.Empty(t, rebuilt.VisibleByKind(insight.KindTrigger, 2))
}

func TestBuildEffectivenessMemories(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Headache"}, Severity: 4, Resolution: "Ibuprofen"},
		{Date: day(1), Symptoms: []string{"Headache"}, Severity: 2},
		{Date: day(10), Symptoms: []string{"Headache"}, Severity: 4, Resolution: "Ibuprofen"},
		{Date: day(11), Symptoms: []string{"Headache"}, Severity: 1},
		{Date: day(20), Symptoms: []string{"Headache"}, Severity: 3, Resolution: "Nap"},
		{Date: day(21), Symptoms: []string{"Headache"}, Severity: 4},
	}

	builder := insight.NewBuilder(nil)
	store := builder.Build(logs, nil)

	worked := store.Get(insight.KindWhatWorked, "", "Headache", "Ibuprofen")
	require.NotNil(t, worked)
	assert.Equal(t, 2, worked.OccurrenceCount)
	assert.Equal(t, 2, worked.SuccessCount)
	assert.InDelta(t, 1.0, worked.EffectivenessScore, 1e-9)

	failed := store.Get(insight.KindWhatDidntWork, "", "Headache", "Nap")
	require.NotNil(t, failed)
	assert.Equal(t, 1, failed.FailureCount)
	assert.InDelta(t, 0.0, failed.EffectivenessScore, 1e-9)
}

func TestReliefWindowBoundsEffectiveness(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Headache"}, Severity: 4, Resolution: "Ibuprofen"},
		// Next headache is weeks later, outside the relief window.
		{Date: day(30), Symptoms: []string{"Headache"}, Severity: 1},
	}

	builder := insight.NewBuilder(nil)
	store := builder.Build(logs, nil)

	assert.Nil(t, store.Get(insight.KindWhatWorked, "", "Headache", "Ibuprofen"))
}

func TestDetailLevelGatesMining(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Headache", "Nausea"}, Causes: []string{"Stress"}, Severity: 3, Resolution: "Nap"},
		{Date: day(7), Symptoms: []string{"Headache", "Nausea"}, Causes: []string{"Stress"}, Severity: 3, Resolution: "Nap"},
	}
	treatments := []insight.TrackedItem{{Name: "Nap", Category: "habit"}}

	minimal := insight.NewBuilder(&insight.BuilderConfig{
		DetailLevel:    insight.DetailMinimal,
		MinOccurrences: 2,
	}).Build(logs, treatments)
	assert.Empty(t, minimal.VisibleByKind(insight.KindCorrelation, 1))
	assert.Empty(t, minimal.VisibleByKind(insight.KindPattern, 1))
	assert.Empty(t, minimal.VisibleByKind(insight.KindPreference, 1))
	assert.NotEmpty(t, minimal.VisibleByKind(insight.KindTrigger, 2))

	patterns := insight.NewBuilder(&insight.BuilderConfig{
		DetailLevel:    insight.DetailPatterns,
		MinOccurrences: 2,
	}).Build(logs, treatments)
	assert.NotEmpty(t, patterns.VisibleByKind(insight.KindCorrelation, 2))
	assert.Empty(t, patterns.VisibleByKind(insight.KindPreference, 1))

	full := insight.NewBuilder(&insight.BuilderConfig{
		DetailLevel:    insight.DetailFull,
		MinOccurrences: 2,
	}).Build(logs, treatments)
	assert.NotEmpty(t, full.VisibleByKind(insight.KindPreference, 2))
}

func TestCorrelationPairIsOrderInsensitive(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Headache", "Nausea"}, Severity: 2},
		{Date: day(1), Symptoms: []string{"Nausea", "Headache"}, Severity: 2},
	}

	store := insight.NewBuilder(nil).Build(logs, nil)
	correlations := store.VisibleByKind(insight.KindCorrelation, 2)
	require.Len(t, correlations, 1, "reversed symptom order must share one memory")
	assert.Equal(t, 2, correlations[0].OccurrenceCount)
}

func TestHighSeverityFlag(t *testing.T) {
	logs := []insight.LogEntry{
		{Date: day(0), Symptoms: []string{"Hives"}, Causes: []string{"Peanuts"}, Severity: 5},
		{Date: day(2), Symptoms: []string{"Hives"}, Causes: []string{"Peanuts"}, Severity: 2},
	}

	store := insight.NewBuilder(nil).Build(logs, nil)
	m := store.Get(insight.KindTrigger, "Peanuts", "Hives", "")
	require.NotNil(t, m)
	assert.True(t, m.HighSeverity)
}
