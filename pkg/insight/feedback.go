package insight

// Feedback is a discrete user signal about one specific memory.
type Feedback string

const (
	// FeedbackConfirm asserts the association is real.
	FeedbackConfirm Feedback = "confirm"

	// FeedbackDeny asserts the association is wrong. Deactivates the memory
	// without deleting it, so a rebuild does not resurrect it.
	FeedbackDeny Feedback = "deny"

	// FeedbackHelped reports that the resolution helped this time.
	FeedbackHelped Feedback = "helped"

	// FeedbackDidntHelp reports that the resolution did not help this time.
	FeedbackDidntHelp Feedback = "didnt_help"

	// FeedbackNotSureYet defers judgment. No counters change.
	FeedbackNotSureYet Feedback = "not_sure_yet"

	// FeedbackNotRelevant dismisses the memory without asserting it is
	// wrong. Deactivates, but leaves UserDenied unset: "not relevant to
	// me" is a weaker statement than "this is wrong".
	FeedbackNotRelevant Feedback = "not_relevant"
)

// ApplyFeedback mutates exactly one memory according to the user's signal
// and recomputes its derived scores. The caller identifies the target
// memory explicitly; this function never searches or guesses.
//
// Confirm and deny are mutually exclusive assertions: each clears the
// other. Helped/didn't-help only have meaning on effectiveness memories and
// are ignored for other kinds. Unknown signals return ErrUnknownFeedback.
func ApplyFeedback(m *Memory, fb Feedback) error {
	switch fb {
	case FeedbackConfirm:
		m.UserConfirmed = true
		m.UserDenied = false
		m.IsActive = true
	case FeedbackDeny:
		m.UserDenied = true
		m.UserConfirmed = false
		m.IsActive = false
	case FeedbackHelped:
		if m.Kind == KindWhatWorked || m.Kind == KindWhatDidntWork {
			m.SuccessCount++
		}
	case FeedbackDidntHelp:
		if m.Kind == KindWhatWorked || m.Kind == KindWhatDidntWork {
			m.FailureCount++
		}
	case FeedbackNotSureYet:
		// Explicitly a no-op.
	case FeedbackNotRelevant:
		m.IsActive = false
	default:
		return ErrUnknownFeedback
	}
	m.Recalculate()
	return nil
}
