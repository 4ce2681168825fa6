package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parsons/internal/router"
	"github.com/abhisek/parsons/internal/screen"
	"github.com/abhisek/parsons/internal/ui/layout"
)

type stubScreen struct {
	title  string
	status string
}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "body of " + s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) Status() string                          { return s.status }
func (s *stubScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "x", Description: "Custom"}}
}

func update(t *testing.T, m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AppModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return am, cmd
}

func TestDoneAtBottomQuits(t *testing.T) {
	m := newAppModel(&stubScreen{title: "only"})
	_, cmd := update(t, m, router.DoneMsg{})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestDonePops(t *testing.T) {
	m := newAppModel(&stubScreen{title: "first"})
	m.router.Push(&stubScreen{title: "second"})

	m, _ = update(t, m, router.DoneMsg{})
	if m.router.Depth() != 1 || m.router.Active().Title() != "first" {
		t.Errorf("expected first screen after done, depth %d", m.router.Depth())
	}
}

func TestViewFramesActiveScreen(t *testing.T) {
	m := newAppModel(&stubScreen{title: "Puzzle A", status: "2/5 placed"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.render()
	for _, want := range []string{"Parsons", "Puzzle A", "2/5 placed", "body of Puzzle A", "Custom"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := newAppModel(&stubScreen{title: "x"})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(m.render(), "Terminal too small") {
		t.Error("expected min size message")
	}
}
