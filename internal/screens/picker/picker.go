// Package picker lists puzzles by category and starts a play screen for
// the chosen one.
package picker

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/router"
	"github.com/abhisek/parsons/internal/screen"
	"github.com/abhisek/parsons/internal/ui/components"
	"github.com/abhisek/parsons/internal/ui/layout"
	"github.com/abhisek/parsons/internal/ui/theme"
)

// StartFunc builds the screen that solves p.
type StartFunc func(p proof.Puzzle) (screen.Screen, error)

// Screen is the puzzle menu.
type Screen struct {
	menu    components.Menu
	count   int
	errMsg  string
	start   StartFunc
	puzzles []proof.Puzzle
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates a picker over puzzles. Puzzles are grouped under a disabled
// header item per category, in the category display order.
func New(puzzles []proof.Puzzle, start StartFunc) *Screen {
	s := &Screen{start: start, puzzles: puzzles, count: len(puzzles)}

	var items []components.MenuItem
	for _, cat := range proof.AllCategories() {
		var group []components.MenuItem
		for _, p := range puzzles {
			if p.Category != cat {
				continue
			}
			group = append(group, components.MenuItem{
				Label:  p.Name(),
				Detail: fmt.Sprintf("%s · %d steps", p.Difficulty, len(p.SolutionOrder)),
				Action: s.startCmd(p),
			})
		}
		if len(group) == 0 {
			continue
		}
		items = append(items, components.MenuItem{Label: strings.ToUpper(string(cat)), Disabled: true})
		items = append(items, group...)
	}
	s.menu = components.NewMenu(items)
	return s
}

func (s *Screen) startCmd(p proof.Puzzle) func() tea.Cmd {
	return func() tea.Cmd {
		next, err := s.start(p)
		if err != nil {
			s.errMsg = fmt.Sprintf("Cannot start %s: %v", p.ID, err)
			return nil
		}
		s.errMsg = ""
		return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "Choose a proof"
}

func (s *Screen) Status() string {
	return fmt.Sprintf("%d puzzles", s.count)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Solve"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Screen) View(width, height int) string {
	if s.count == 0 {
		return theme.Hint.Render("\n  No puzzles found. Import some with `parsons puzzles import`.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.menu.View(max(height-4, 3)))
	if s.errMsg != "" {
		b.WriteString("\n" + theme.Incorrect.Render("  "+s.errMsg))
	}
	return b.String()
}
