package proof

import (
	"errors"
	"fmt"
	"strings"
)

// MinSolutionLength is the shortest solution order a puzzle may have.
const MinSolutionLength = 2

// ErrInvalidPuzzle is wrapped by every PuzzleError.
var ErrInvalidPuzzle = errors.New("invalid puzzle")

// PuzzleError lists every structural problem found in a puzzle.
type PuzzleError struct {
	PuzzleID string
	Problems []string
}

func (e *PuzzleError) Error() string {
	id := e.PuzzleID
	if id == "" {
		id = "(no id)"
	}
	return fmt.Sprintf("puzzle %s:\n  %s", id, strings.Join(e.Problems, "\n  "))
}

func (e *PuzzleError) Unwrap() error { return ErrInvalidPuzzle }

// NewPuzzle checks p and returns it unchanged if it is well formed.
func NewPuzzle(p Puzzle) (Puzzle, error) {
	if err := p.Check(); err != nil {
		return Puzzle{}, err
	}
	return p, nil
}

// Check verifies the puzzle invariants: unique non-empty step ids and a
// solution order that is a permutation of those ids with at least
// MinSolutionLength entries. It returns a *PuzzleError or nil.
func (p Puzzle) Check() error {
	var problems []string

	if p.ID == "" {
		problems = append(problems, "missing puzzle id")
	}

	ids := make(map[string]bool, len(p.Steps))
	for i, s := range p.Steps {
		if s.ID == "" {
			problems = append(problems, fmt.Sprintf("step %d has an empty id", i))
			continue
		}
		if ids[s.ID] {
			problems = append(problems, fmt.Sprintf("duplicate step id: %q", s.ID))
		}
		ids[s.ID] = true
	}

	if len(p.SolutionOrder) < MinSolutionLength {
		problems = append(problems, fmt.Sprintf("solution order has %d entries, need at least %d",
			len(p.SolutionOrder), MinSolutionLength))
	}

	used := make(map[string]bool, len(p.SolutionOrder))
	for _, id := range p.SolutionOrder {
		if !ids[id] {
			problems = append(problems, fmt.Sprintf("solution order references unknown step %q", id))
			continue
		}
		if used[id] {
			problems = append(problems, fmt.Sprintf("solution order repeats step %q", id))
		}
		used[id] = true
	}

	for _, s := range p.Steps {
		if s.ID != "" && !used[s.ID] {
			problems = append(problems, fmt.Sprintf("step %q is not part of the solution order", s.ID))
		}
	}

	if len(problems) > 0 {
		return &PuzzleError{PuzzleID: p.ID, Problems: problems}
	}
	return nil
}

// StepByID returns the step with the given id.
func (p Puzzle) StepByID(id string) (Step, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return Step{}, false
}

// Name returns the display title when set, otherwise the raw title.
func (p Puzzle) Name() string {
	if p.DisplayTitle != "" {
		return p.DisplayTitle
	}
	return p.Title
}
