package proof

import (
	"fmt"
	"math"
	"strings"
)

// Scoring weights. A wrong order still earns credit for steps in the right
// slot and, at a lower rate, for steps that are present at all.
const (
	positionWeight  = 60.0
	presenceWeight  = 40.0
	extraPenalty    = 5
	maxExtraPenalty = 20
)

// Feedback messages.
const (
	FeedbackEmpty   = "Please arrange the proof blocks to create a valid proof."
	FeedbackCorrect = "Excellent! Your proof is completely correct!"
	FeedbackDefault = "Keep working on your proof!"
)

// score computes the 0-100 partial credit for d. The extra-block penalty
// can push the sum below zero (five unknown ids give -20), so it is
// clamped at 0 after math.Round. Only non-negative values survive the
// clamp, and for those math.Round is round-half-up.
func score(d Details) int {
	if d.CorrectSequence {
		return 100
	}
	total := float64(d.TotalBlocks)
	positioned := float64(len(d.CorrectlyPositioned)) / total * positionWeight
	present := float64(d.CorrectBlocks) / total * presenceWeight
	penalty := float64(min(d.ExtraBlocks*extraPenalty, maxExtraPenalty))

	return max(0, int(math.Round(positioned+present-penalty)))
}

// feedback builds the human-readable summary. Clauses always appear in the
// same order: missing, extra, duplicates, misplaced, placed.
func feedback(d Details) string {
	if d.CorrectSequence {
		return FeedbackCorrect
	}

	var parts []string
	if d.MissingBlocks > 0 {
		parts = append(parts, fmt.Sprintf("Missing %d block(s) from your proof.", d.MissingBlocks))
	}
	if d.ExtraBlocks > 0 {
		parts = append(parts, fmt.Sprintf("You have %d extra or incorrect block(s).", d.ExtraBlocks))
	}
	if n := len(d.Duplicates); n > 0 {
		parts = append(parts, fmt.Sprintf("You have %d duplicate block(s).", n))
	}
	if n := len(d.IncorrectlyPositioned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d block(s) are in the wrong position.", n))
	}
	if n := len(d.CorrectlyPositioned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d block(s) are correctly positioned.", n))
	}

	if len(parts) == 0 {
		return FeedbackDefault
	}
	return strings.Join(parts, " ")
}

// Grade is a coarse band over the score, used for display.
type Grade string

const (
	GradeExcellent Grade = "excellent"
	GradeGood      Grade = "good"
	GradeFair      Grade = "fair"
	GradeKeepGoing Grade = "keep-going"
)

// GradeFor maps a score to its display band.
func GradeFor(score int) Grade {
	switch {
	case score >= 90:
		return GradeExcellent
	case score >= 70:
		return GradeGood
	case score >= 50:
		return GradeFair
	default:
		return GradeKeepGoing
	}
}
