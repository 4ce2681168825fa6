// Package play is the interactive solver screen: a tray of shuffled steps
// on the left and the solver's arrangement on the right.
package play

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/router"
	"github.com/abhisek/parsons/internal/screen"
	"github.com/abhisek/parsons/internal/session"
	"github.com/abhisek/parsons/internal/tutor"
	"github.com/abhisek/parsons/internal/ui/layout"
)

const explainTimeout = 45 * time.Second

type column int

const (
	columnTray column = iota
	columnArrangement
)

// Screen implements screen.Screen for one solving session.
type Screen struct {
	sess      *session.Session
	explainer *tutor.Explainer
	keys      keyMap
	help      help.Model

	focus      column
	trayCursor int
	arrCursor  int

	status    string
	statusErr bool

	// checked is the arrangement the last check ran against.
	checked []string

	hint        *proof.Hint
	explanation *tutor.Explanation
	explaining  bool
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)

// New creates a play screen for sess. explainer may be nil.
func New(sess *session.Session, explainer *tutor.Explainer) *Screen {
	return &Screen{
		sess:      sess,
		explainer: explainer,
		keys:      defaultKeys(),
		help:      help.New(),
	}
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return s.sess.Puzzle().Name()
}

// Status shows placed/total and the last score.
func (s *Screen) Status() string {
	p := s.sess.Progress()
	status := fmt.Sprintf("%d/%d placed", p.CurrentLength, p.TotalLength)
	if last := s.sess.Last(); last != nil {
		status += fmt.Sprintf("   score %d", last.Score)
	}
	return status
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.sess.State().Final() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch"},
		{Key: "Enter", Description: "Place/Remove"},
		{Key: "c", Description: "Check"},
		{Key: "h", Description: "Hint"},
		{Key: "Esc", Description: "Back"},
	}
}

// Session returns the underlying session.
func (s *Screen) Session() *session.Session { return s.sess }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case explainDoneMsg:
		s.explaining = false
		if msg.err != nil {
			s.setError(explainErrorText(msg.err))
			return s, nil
		}
		s.explanation = msg.explanation
		s.setStatus("The tutor has a suggestion.")
		return s, nil

	case tea.KeyMsg:
		if s.sess.State().Final() {
			if msg.String() == "enter" {
				return s, func() tea.Msg { return router.DoneMsg{} }
			}
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	k := s.keys
	switch {
	case key.Matches(msg, k.Up):
		s.moveCursor(-1)
	case key.Matches(msg, k.Down):
		s.moveCursor(1)
	case key.Matches(msg, k.Switch):
		if s.focus == columnTray {
			s.focus = columnArrangement
		} else {
			s.focus = columnTray
		}
	case key.Matches(msg, k.Toggle):
		s.toggle()
	case key.Matches(msg, k.MoveUp):
		s.shift(-1)
	case key.Matches(msg, k.MoveDown):
		s.shift(1)
	case key.Matches(msg, k.Check):
		s.check()
	case key.Matches(msg, k.Hint):
		s.revealHint()
	case key.Matches(msg, k.Explain):
		return s, s.explain()
	case key.Matches(msg, k.Reset):
		if err := s.sess.Reset(); err != nil {
			s.setError(err.Error())
			break
		}
		s.trayCursor, s.arrCursor = 0, 0
		s.hint, s.explanation = nil, nil
		s.setStatus("Arrangement cleared.")
	case key.Matches(msg, k.Abandon):
		if err := s.sess.Abandon(); err != nil {
			s.setError(err.Error())
		}
	case key.Matches(msg, k.Help):
		s.help.ShowAll = !s.help.ShowAll
	}
	return s, nil
}

func (s *Screen) moveCursor(delta int) {
	if s.focus == columnTray {
		s.trayCursor = clamp(s.trayCursor+delta, len(s.sess.Tray()))
		return
	}
	s.arrCursor = clamp(s.arrCursor+delta, len(s.sess.Arrangement()))
}

// toggle places the tray step under the cursor at the end of the
// arrangement, or returns the arrangement step under the cursor to the
// tray.
func (s *Screen) toggle() {
	if s.focus == columnTray {
		tray := s.sess.Tray()
		if len(tray) == 0 {
			return
		}
		id := tray[s.trayCursor]
		if err := s.sess.Place(id, len(s.sess.Arrangement())); err != nil {
			s.setError(placementErrorText(err))
			return
		}
		s.trayCursor = clamp(s.trayCursor, len(s.sess.Tray()))
		s.arrCursor = len(s.sess.Arrangement()) - 1
		s.setStatus("")
		return
	}

	if len(s.sess.Arrangement()) == 0 {
		return
	}
	if err := s.sess.Remove(s.arrCursor); err != nil {
		s.setError(placementErrorText(err))
		return
	}
	s.arrCursor = clamp(s.arrCursor, len(s.sess.Arrangement()))
	s.setStatus("")
}

func (s *Screen) shift(delta int) {
	if s.focus != columnArrangement {
		return
	}
	n := len(s.sess.Arrangement())
	to := s.arrCursor + delta
	if n == 0 || to < 0 || to >= n {
		return
	}
	if err := s.sess.Move(s.arrCursor, to); err != nil {
		s.setError(placementErrorText(err))
		return
	}
	s.arrCursor = to
	s.setStatus("")
}

func (s *Screen) check() {
	res, err := s.sess.Check(context.Background())
	if err != nil {
		s.setError(err.Error())
		return
	}
	s.checked = s.sess.Arrangement()
	s.hint, s.explanation = nil, nil
	if res.IsCorrect {
		s.setStatus("Proof complete!")
		return
	}
	s.setStatus(res.Feedback)
}

func (s *Screen) revealHint() {
	h, ok := s.sess.Hint()
	if !ok {
		s.setStatus("No hint available.")
		return
	}
	s.hint = &h
	s.setStatus("")
}

func (s *Screen) explain() tea.Cmd {
	if !s.explainer.Available() {
		s.setError("No LLM provider configured; set PARSONS_LLM_PROVIDER to enable explanations.")
		return nil
	}
	if s.explaining {
		return nil
	}
	s.explaining = true
	s.setStatus("Asking the tutor...")

	p := s.sess.Puzzle()
	order := s.sess.Arrangement()
	res := s.sess.Validator().Validate(order)
	explainer := s.explainer
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), explainTimeout)
		defer cancel()
		ex, err := explainer.Explain(ctx, p, order, res)
		return explainDoneMsg{explanation: ex, err: err}
	}
}

func (s *Screen) setStatus(msg string) {
	s.status = msg
	s.statusErr = false
}

func (s *Screen) setError(msg string) {
	s.status = msg
	s.statusErr = true
}

func placementErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrPlacementRejected):
		return "Strict mode: that step does not belong there yet."
	case errors.Is(err, session.ErrFinished):
		return "This session is over."
	default:
		return err.Error()
	}
}

func explainErrorText(err error) string {
	switch {
	case errors.Is(err, tutor.ErrNothingToExplain):
		return "Your proof is already correct."
	case errors.Is(err, context.DeadlineExceeded):
		return "The tutor took too long to answer."
	default:
		return "The tutor is unavailable right now."
	}
}

// clamp keeps i within [0, n), or 0 when n is 0.
func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
