package proof

import "fmt"

// hints builds up to MaxHints suggestions. Each kind is checked on its own
// and appended in priority order: position, missing, next.
func (v *Validator) hints(d Details, userOrder []string) []Hint {
	out := []Hint{}
	if d.CorrectSequence {
		return out
	}

	if len(d.IncorrectlyPositioned) > 0 {
		first := d.IncorrectlyPositioned[0]
		if s, ok := v.steps[first.ExpectedStepID]; ok {
			out = append(out, Hint{
				Type:     HintPosition,
				Message:  fmt.Sprintf("The block at position %d should be:", first.Position+1),
				Content:  s.Content,
				StepID:   s.ID,
				Position: first.Position,
			})
		}
	}

	if d.MissingBlocks > 0 {
		if id, pos, ok := v.firstMissing(userOrder); ok {
			out = append(out, Hint{
				Type:     HintMissing,
				Message:  "You're missing this important step:",
				Content:  v.steps[id].Content,
				StepID:   id,
				Position: pos,
			})
		}
	}

	if len(userOrder) < len(v.solution) {
		if id, ok := v.NextExpected(userOrder); ok {
			if s, ok := v.steps[id]; ok {
				out = append(out, Hint{
					Type:     HintNext,
					Message:  "Try adding this block next:",
					Content:  s.Content,
					StepID:   id,
					Position: CorrectPrefix(userOrder, v.solution),
				})
			}
		}
	}

	if len(out) > MaxHints {
		out = out[:MaxHints]
	}
	return out
}

// firstMissing returns the first solution step, in solution order, that
// does not appear anywhere in userOrder.
func (v *Validator) firstMissing(userOrder []string) (string, int, bool) {
	present := make(map[string]bool, len(userOrder))
	for _, id := range userOrder {
		present[id] = true
	}
	for i, id := range v.solution {
		if !present[id] {
			return id, i, true
		}
	}
	return "", 0, false
}
