package proof

import "fmt"

// Validator checks user orders against one puzzle. It is built once per
// puzzle and never mutated afterwards, so a single Validator may be shared
// by concurrent callers.
type Validator struct {
	puzzle   Puzzle
	solution []string
	steps    map[string]Step
}

// NewValidator checks the puzzle invariants and precomputes the step
// lookup. A malformed puzzle is a programming error on the caller's side
// and is reported here rather than on every Validate call.
func NewValidator(p Puzzle) (*Validator, error) {
	if err := p.Check(); err != nil {
		return nil, fmt.Errorf("new validator: %w", err)
	}

	steps := make(map[string]Step, len(p.Steps))
	for _, s := range p.Steps {
		steps[s.ID] = s
	}
	solution := make([]string, len(p.SolutionOrder))
	copy(solution, p.SolutionOrder)

	return &Validator{puzzle: p, solution: solution, steps: steps}, nil
}

// MustNewValidator is like NewValidator but panics on a malformed puzzle.
// It is intended for built-in content that is checked at load time.
func MustNewValidator(p Puzzle) *Validator {
	v, err := NewValidator(p)
	if err != nil {
		panic(err)
	}
	return v
}

// Puzzle returns the puzzle this validator was built for.
func (v *Validator) Puzzle() Puzzle { return v.puzzle }

// TotalBlocks returns the length of the solution order.
func (v *Validator) TotalBlocks() int { return len(v.solution) }

// Step looks up a step by id.
func (v *Validator) Step(id string) (Step, bool) {
	s, ok := v.steps[id]
	return s, ok
}

// Validate scores userOrder against the solution. It never fails: unknown
// ids, duplicates and short or long orders are all folded into the result.
func (v *Validator) Validate(userOrder []string) ValidationResult {
	total := len(v.solution)
	if len(userOrder) == 0 {
		return ValidationResult{
			Score:    0,
			Feedback: FeedbackEmpty,
			Details: Details{
				TotalBlocks:           total,
				MissingBlocks:         total,
				CorrectlyPositioned:   []Placement{},
				IncorrectlyPositioned: []Misplacement{},
				Duplicates:            []Placement{},
			},
			Hints: []Hint{},
		}
	}

	d := v.analyze(userOrder)
	return ValidationResult{
		Score:     score(d),
		IsCorrect: d.IsComplete && d.CorrectSequence,
		Feedback:  feedback(d),
		Details:   d,
		Hints:     v.hints(d, userOrder),
	}
}

// analyze classifies userOrder by membership, position and repetition.
// Lists are never nil so they encode as [] rather than null.
func (v *Validator) analyze(userOrder []string) Details {
	total := len(v.solution)

	inSolution := make(map[string]bool, total)
	for _, id := range v.solution {
		inSolution[id] = true
	}

	// Membership is counted over distinct ids so duplicates do not inflate
	// CorrectBlocks; they surface as extra blocks instead.
	seen := make(map[string]bool, len(userOrder))
	correct := 0
	duplicates := []Placement{}
	for i, id := range userOrder {
		if seen[id] {
			duplicates = append(duplicates, Placement{StepID: id, Position: i})
			continue
		}
		seen[id] = true
		if inSolution[id] {
			correct++
		}
	}

	d := Details{
		TotalBlocks:   total,
		UserBlocks:    len(userOrder),
		CorrectBlocks: correct,
		ExtraBlocks:   len(userOrder) - correct,
		MissingBlocks: total - correct,
		Duplicates:    duplicates,

		CorrectlyPositioned:   []Placement{},
		IncorrectlyPositioned: []Misplacement{},
	}
	d.IsComplete = d.UserBlocks == total && correct == total

	overlap := min(len(userOrder), total)
	for i := 0; i < overlap; i++ {
		if userOrder[i] == v.solution[i] {
			d.CorrectlyPositioned = append(d.CorrectlyPositioned, Placement{StepID: userOrder[i], Position: i})
		} else {
			d.IncorrectlyPositioned = append(d.IncorrectlyPositioned, Misplacement{
				StepID:         userOrder[i],
				Position:       i,
				ExpectedStepID: v.solution[i],
			})
		}
	}
	d.CorrectSequence = d.IsComplete && len(d.IncorrectlyPositioned) == 0

	return d
}

// CanPlace reports whether stepID may go at position given the current
// arrangement. Placement is only allowed when the step belongs there and
// every earlier position already holds its solution step.
func (v *Validator) CanPlace(stepID string, position int, current []string) bool {
	if position < 0 || position >= len(v.solution) {
		return false
	}
	if v.solution[position] != stepID {
		return false
	}
	for j := 0; j < position; j++ {
		if j >= len(current) || current[j] != v.solution[j] {
			return false
		}
	}
	return true
}

// NextExpected returns the id the solver should place next: the step after
// a correct prefix, or the solution step at the first wrong position.
// It returns false once current is at least as long as the solution.
func (v *Validator) NextExpected(current []string) (string, bool) {
	if len(current) >= len(v.solution) {
		return "", false
	}
	k := CorrectPrefix(current, v.solution)
	return v.solution[k], true
}

// ValidatePartial checks whether current is a correct prefix of the
// solution and reports progress towards completion.
func (v *Validator) ValidatePartial(current []string) PartialResult {
	total := len(v.solution)
	if len(current) == 0 {
		return PartialResult{
			Valid:        true,
			CorrectSoFar: true,
			NextExpected: v.solution[0],
			TotalLength:  total,
		}
	}

	ok := len(current) <= total && CorrectPrefix(current, v.solution) == len(current)
	res := PartialResult{
		Valid:         ok,
		CorrectSoFar:  ok,
		Progress:      float64(len(current)) / float64(total) * 100,
		CurrentLength: len(current),
		TotalLength:   total,
	}
	if len(current) < total {
		res.NextExpected = v.solution[len(current)]
	}
	return res
}
