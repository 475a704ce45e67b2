package insight

import "math"

// Confidence scoring constants.
//
// The baseline saturates with occurrence count so that a handful of
// co-occurrences reaches medium confidence and repetition beyond that has
// diminishing returns. An explicit user confirmation adds a fixed bonus;
// an explicit denial collapses the score regardless of count.
const (
	// ConfirmedBonus is added to the baseline when the user confirmed the
	// association.
	ConfirmedBonus = 0.2

	// DeniedFactor scales the baseline down when the user denied the
	// association, forcing the score toward zero.
	DeniedFactor = 0.1

	// levelMediumThreshold and levelHighThreshold split scores into the
	// low/medium/high display tiers.
	levelMediumThreshold = 0.4
	levelHighThreshold   = 0.75
)

// ConfidenceScore computes the confidence for an association supported by
// occurrenceCount log events, under the user's explicit feedback flags.
//
// The baseline is the saturating function 1 - 1/(1+n): one occurrence scores
// 0.5, three score 0.75, and the score approaches but never exceeds 1.0.
// A confirmed association gains ConfirmedBonus (capped at 1.0); a denied one
// is scaled by DeniedFactor. The result is always clamped to [0, 1].
func ConfidenceScore(occurrenceCount int, confirmed, denied bool) float64 {
	if occurrenceCount < 0 {
		occurrenceCount = 0
	}
	score := 1.0 - 1.0/(1.0+float64(occurrenceCount))
	if denied {
		return clamp01(score * DeniedFactor)
	}
	if confirmed {
		score += ConfirmedBonus
	}
	return clamp01(score)
}

// LevelForScore maps a confidence score onto its display tier:
// below 0.4 is low, below 0.75 is medium, anything else is high.
//
// The tier is a display projection only; engine behavior keys off raw
// scores and activity flags, never off the tier, so the same signal is not
// counted twice.
func LevelForScore(score float64) ConfidenceLevel {
	switch {
	case score < levelMediumThreshold:
		return LevelLow
	case score < levelHighThreshold:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// EffectivenessPercentage returns the rounded percentage of outcomes where
// a resolution helped. A zero total short-circuits to 0 rather than
// dividing by zero.
func EffectivenessPercentage(successCount, totalCount int) int {
	if totalCount <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(successCount) / float64(totalCount)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
