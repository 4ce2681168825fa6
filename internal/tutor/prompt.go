package tutor

import (
	"fmt"
	"strings"

	"github.com/abhisek/parsons/internal/proof"
)

const systemPrompt = `You are a tutor for undergraduate discrete mathematics. A student is arranging the lines of a proof into the right order (a Parsons puzzle). Proof lines are written in LaTeX.`

func buildUserMessage(p proof.Puzzle, order []string, res proof.ValidationResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Statement to prove: %s\n", p.Statement)
	if p.DisplayTitle != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.DisplayTitle)
	}

	b.WriteString("\nStudent's current arrangement:\n")
	if len(order) == 0 {
		b.WriteString("(empty)\n")
	}
	for i, id := range order {
		content := "(unknown line)"
		if s, ok := p.StepByID(id); ok {
			content = s.Content
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, content)
	}

	fmt.Fprintf(&b, "\nScore: %d/100\nFeedback: %s\n", res.Score, res.Feedback)

	if len(res.Hints) > 0 {
		h := res.Hints[0]
		fmt.Fprintf(&b, "\nHint shown to the student (%s): %s\nHinted line: %s\n", h.Type, h.Message, h.Content)
	}

	b.WriteString(`
Instructions:
1. Explain in 2-4 sentences why the hinted line belongs where the hint says, in terms of what it establishes for the proof.
2. End with one short question that nudges the student toward the next check.
3. Do not list or reveal the correct order of any other lines.
4. Plain sentences only. You may quote LaTeX from the lines above.`)

	return b.String()
}
