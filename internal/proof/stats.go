package proof

import "unicode/utf8"

const previewLength = 30

// StepPreview is a shortened view of one step.
type StepPreview struct {
	ID      string `json:"id"`
	Preview string `json:"preview"`
}

// Statistics describes the shape of a puzzle.
type Statistics struct {
	TotalBlocks int           `json:"totalBlocks"`
	Blocks      []StepPreview `json:"blockTypes"`
	Difficulty  string        `json:"difficulty"`
}

// Statistics summarizes the puzzle for listings and educator tools.
func (v *Validator) Statistics() Statistics {
	previews := make([]StepPreview, len(v.puzzle.Steps))
	for i, s := range v.puzzle.Steps {
		previews[i] = StepPreview{ID: s.ID, Preview: Truncate(s.Content, previewLength)}
	}
	return Statistics{
		TotalBlocks: len(v.solution),
		Blocks:      previews,
		Difficulty:  EstimateDifficulty(len(v.solution)),
	}
}

// EstimateDifficulty labels a puzzle by its number of steps.
func EstimateDifficulty(blocks int) string {
	switch {
	case blocks <= 5:
		return "Easy"
	case blocks <= 10:
		return "Medium"
	default:
		return "Hard"
	}
}

// Truncate shortens s to at most maxLen bytes, cutting on a rune boundary,
// and appends "..." when anything was removed.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
