package insight_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symlog/symlog-go/pkg/insight"
)

func TestConfirmAndDenyAreExclusive(t *testing.T) {
	m, err := insight.NewMemory(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NoError(t, err)
	m.OccurrenceCount = 3
	m.Recalculate()

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackConfirm))
	assert.True(t, m.UserConfirmed)
	assert.False(t, m.UserDenied)
	assert.InDelta(t, 0.95, m.ConfidenceScore, 1e-9, "confirm adds the fixed bonus")

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackDeny))
	assert.False(t, m.UserConfirmed)
	assert.True(t, m.UserDenied)
	assert.False(t, m.IsActive)
	assert.Less(t, m.ConfidenceScore, 0.4)

	// Re-confirming reactivates and clears the denial.
	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackConfirm))
	assert.True(t, m.UserConfirmed)
	assert.False(t, m.UserDenied)
	assert.True(t, m.IsActive)
}

func TestDenyExcludesFromQueries(t *testing.T) {
	store := insight.NewBuilder(nil).Build(dairyLogs(), nil)
	m := store.Get(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NotNil(t, m)
	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackDeny))

	gen := insight.NewGenerator(nil)
	resp := gen.Generate(&insight.LogEntry{
		Date:     day(30),
		Symptoms: []string{"Fatigue"},
		Causes:   []string{"Dairy"},
		Severity: 2,
	}, store)
	assert.Empty(t, resp.Warnings, "denied memory must never warn again")

	result := insight.NewResolver(2).CheckFood("Dairy", nil, store)
	assert.Equal(t, insight.StatusSafe, result.Status, "denied memory must not drive food verdicts")
}

func TestNotRelevantIsNotADenial(t *testing.T) {
	m, err := insight.NewMemory(insight.KindTrigger, "Coffee", "Jitters", "")
	require.NoError(t, err)

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackNotRelevant))
	assert.False(t, m.IsActive, "dismissed memory is deactivated")
	assert.False(t, m.UserDenied, "dismissal is weaker than denial")
	assert.False(t, m.UserConfirmed)
}

func TestHelpedAndDidntHelpCounters(t *testing.T) {
	m, err := insight.NewMemory(insight.KindWhatWorked, "", "Headache", "Ibuprofen")
	require.NoError(t, err)

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackHelped))
	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackHelped))
	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackDidntHelp))
	assert.Equal(t, 2, m.SuccessCount)
	assert.Equal(t, 1, m.FailureCount)
	assert.InDelta(t, 2.0/3.0, m.EffectivenessScore, 1e-9)
}

func TestHelpedIgnoredOnTriggerMemories(t *testing.T) {
	m, err := insight.NewMemory(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NoError(t, err)

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackHelped))
	assert.Equal(t, 0, m.SuccessCount, "effectiveness counters only apply to resolution memories")
}

func TestNotSureYetIsANoOp(t *testing.T) {
	m, err := insight.NewMemory(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NoError(t, err)
	before := *m

	require.NoError(t, insight.ApplyFeedback(m, insight.FeedbackNotSureYet))
	assert.Equal(t, before.OccurrenceCount, m.OccurrenceCount)
	assert.Equal(t, before.IsActive, m.IsActive)
	assert.Equal(t, before.ConfidenceScore, m.ConfidenceScore)
}

func TestUnknownFeedbackRejected(t *testing.T) {
	m, err := insight.NewMemory(insight.KindTrigger, "Dairy", "Bloating", "")
	require.NoError(t, err)

	assert.ErrorIs(t, insight.ApplyFeedback(m, "shrug"), insight.ErrUnknownFeedback)
}
