package play

import (
	"fmt"
	"slices"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/session"
	"github.com/abhisek/parsons/internal/ui/components"
	"github.com/abhisek/parsons/internal/ui/layout"
	"github.com/abhisek/parsons/internal/ui/render"
	"github.com/abhisek/parsons/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.sess.State().Final() {
		return s.renderFinal(width)
	}

	var b strings.Builder
	p := s.sess.Puzzle()
	if p.Statement != "" {
		b.WriteString(theme.Label.Render("  Prove: ") + theme.Body.Render(p.Statement) + "\n")
	}
	if s.sess.Strict() {
		b.WriteString(theme.Hint.Render("  strict mode: steps must be placed in order") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(s.renderColumns(width))
	b.WriteString("\n\n")

	progress := s.sess.Progress()
	b.WriteString("  " + components.NewProgressBar("Placed", progress.Progress/100, true, min(width-4, 60)).View())
	b.WriteString("\n")

	if last := s.sess.Last(); last != nil {
		b.WriteString("\n  " + theme.Label.Render("Last check ") + render.Score(last.Score))
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   checks: %d   hints: %d", s.sess.Checks(), s.sess.HintsUsed())))
		b.WriteString("\n")
	}

	if s.status != "" {
		style := theme.Body
		if s.statusErr {
			style = theme.Incorrect
		}
		b.WriteString("\n  " + style.Render(s.status) + "\n")
	}

	if s.hint != nil {
		b.WriteString("\n" + indent(render.Hints([]proof.Hint{*s.hint}, width-4), "  ") + "\n")
	}
	if s.explanation != nil {
		b.WriteString("\n" + s.renderExplanation(width) + "\n")
	}

	s.help.SetWidth(width - 4)
	b.WriteString("\n  " + s.help.View(s.keys))
	return b.String()
}

func (s *Screen) renderColumns(width int) string {
	compact := layout.IsCompactWidth(width)
	colWidth := (width - 6) / 2
	if compact {
		colWidth = width - 4
	}

	trayTitle := fmt.Sprintf("Steps (%d)", len(s.sess.Tray()))
	tray := s.renderList(trayTitle, s.sess.Tray(), nil, s.trayCursor, s.focus == columnTray, colWidth)

	var marks []string
	if last := s.sess.Last(); last != nil && slices.Equal(s.checked, s.sess.Arrangement()) {
		marks = render.Marks(*last)
	}
	arr := s.renderList("Your proof", s.sess.Arrangement(), marks, s.arrCursor, s.focus == columnArrangement, colWidth)

	if compact {
		return lipgloss.JoinVertical(lipgloss.Left, tray, arr)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tray, "  ", arr)
}

func (s *Screen) renderList(title string, ids, marks []string, cursor int, focused bool, width int) string {
	var b strings.Builder
	b.WriteString(theme.Label.Render(title) + "\n")
	if len(ids) == 0 {
		b.WriteString(theme.Hint.Render("(empty)"))
	}

	inner := max(width-4, 10)
	for i, id := range ids {
		content := id
		if st, ok := s.sess.Validator().Step(id); ok {
			content = st.Content
		}

		prefix := "  "
		if i < len(marks) {
			prefix = marks[i] + " "
		}
		line := prefix + fmt.Sprintf("%2d. ", i+1)
		line += proof.Truncate(content, max(inner-lipgloss.Width(line)-3, 1))

		style := theme.Unselected
		if focused && i == cursor {
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		if i < len(ids)-1 {
			b.WriteString("\n")
		}
	}

	panel := theme.Panel
	if focused {
		panel = theme.PanelFocused
	}
	return panel.Width(width).Render(b.String())
}

func (s *Screen) renderExplanation(width int) string {
	ex := s.explanation
	body := theme.Label.Render("Tutor") + "\n" +
		theme.Body.Render(ex.Explanation)
	if ex.Nudge != "" {
		body += "\n\n" + theme.Hint.Render(ex.Nudge)
	}
	return theme.Card.Width(min(width-4, 80)).Render(body)
}

func (s *Screen) renderFinal(width int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch s.sess.State() {
	case session.StateSolved:
		b.WriteString(theme.Correct.Render("  Solved!"))
	default:
		b.WriteString(theme.Caution.Render("  Session ended"))
	}
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("   checks: %d   hints used: %d", s.sess.Checks(), s.sess.HintsUsed())))
	b.WriteString("\n\n")

	order := s.sess.Arrangement()
	res := s.sess.Validator().Validate(order)
	b.WriteString(indent(render.Result(s.sess.Puzzle(), order, res, width-4), "  "))
	b.WriteString("\n\n" + theme.Hint.Render("  Press Enter to continue"))
	return b.String()
}

func indent(s, pad string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
