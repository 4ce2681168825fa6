// Package render draws validation results with lipgloss for the check
// command and the play screen.
package render

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/ui/theme"
)

// Marks used beside each arranged step.
const (
	MarkCorrect   = "✓"
	MarkIncorrect = "✗"
	MarkUnknown   = "·"
)

// GradeStyle returns the style for a score band.
func GradeStyle(g proof.Grade) lipgloss.Style {
	switch g {
	case proof.GradeExcellent:
		return theme.Correct
	case proof.GradeGood:
		return lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	case proof.GradeFair:
		return theme.Caution
	default:
		return theme.Incorrect
	}
}

// Score renders "85/100 (good)" in the grade color.
func Score(score int) string {
	g := proof.GradeFor(score)
	return GradeStyle(g).Render(fmt.Sprintf("%d/100 (%s)", score, g))
}

// Marks maps each position of the user order to its mark. Positions the
// result says nothing about get MarkUnknown.
func Marks(res proof.ValidationResult) []string {
	marks := make([]string, res.Details.UserBlocks)
	for i := range marks {
		marks[i] = MarkUnknown
	}
	for _, p := range res.Details.CorrectlyPositioned {
		if p.Position < len(marks) {
			marks[p.Position] = MarkCorrect
		}
	}
	for _, p := range res.Details.IncorrectlyPositioned {
		if p.Position < len(marks) {
			marks[p.Position] = MarkIncorrect
		}
	}
	for _, p := range res.Details.Duplicates {
		if p.Position < len(marks) {
			marks[p.Position] = MarkIncorrect
		}
	}
	return marks
}

// Arrangement renders the numbered user order. When res is non-nil each
// line carries its position mark.
func Arrangement(p proof.Puzzle, order []string, res *proof.ValidationResult, width int) string {
	if len(order) == 0 {
		return theme.Hint.Render("(no steps placed)")
	}
	var marks []string
	if res != nil {
		marks = Marks(*res)
	}

	var b strings.Builder
	for i, id := range order {
		content := id
		if st, ok := p.StepByID(id); ok {
			content = st.Content
		}
		prefix := fmt.Sprintf("%2d. ", i+1)
		if i < len(marks) {
			prefix = markStyle(marks[i]).Render(marks[i]) + " " + prefix
		}
		b.WriteString(prefix + clip(content, width-lipgloss.Width(prefix)))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func markStyle(mark string) lipgloss.Style {
	switch mark {
	case MarkCorrect:
		return theme.Correct
	case MarkIncorrect:
		return theme.Incorrect
	default:
		return theme.Subtitle
	}
}

// Hints renders hint messages with the suggested step underneath. Step
// content is wrapped to width, never shortened.
func Hints(hints []proof.Hint, width int) string {
	if len(hints) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(theme.Label.Render("Hints"))
	for _, h := range hints {
		b.WriteString("\n  " + theme.Body.Render(h.Message))
		body := theme.Picked
		if width > 8 {
			body = body.Width(width - 4)
		}
		for _, line := range strings.Split(body.Render(h.Content), "\n") {
			b.WriteString("\n    " + line)
		}
	}
	return b.String()
}

// Result renders the full verdict: score, feedback, counts, the marked
// arrangement and hints.
func Result(p proof.Puzzle, order []string, res proof.ValidationResult, width int) string {
	d := res.Details
	var sections []string

	title := theme.Title.Render(p.Name())
	if res.IsCorrect {
		title += "  " + theme.Correct.Render("Proof complete")
	}
	sections = append(sections, title)

	sections = append(sections,
		theme.Label.Render("Score ")+Score(res.Score),
		theme.Body.Render(res.Feedback),
		theme.Subtitle.Render(fmt.Sprintf(
			"%d of %d blocks placed · %d in position · %d missing · %d extra",
			d.UserBlocks, d.TotalBlocks, len(d.CorrectlyPositioned), d.MissingBlocks, d.ExtraBlocks,
		)),
		Arrangement(p, order, &res, width),
	)

	if h := Hints(res.Hints, width); h != "" {
		sections = append(sections, h)
	}
	return strings.Join(sections, "\n\n")
}

// clip shortens s to fit width cells, keeping a trailing ellipsis.
func clip(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return proof.Truncate(s, max(width-3, 1))
}

// Table renders rows under a bold header with rounded borders.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return theme.Label.Padding(0, 1)
			}
			return theme.Body.Padding(0, 1)
		})
	return t.String()
}
