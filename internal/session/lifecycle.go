package session

import (
	"time"

	"github.com/felixgeelhaar/statekit"
)

// State is the lifecycle state of a session.
type State string

const (
	stateArranging = "arranging"
	stateSolved    = "solved"
	stateAbandoned = "abandoned"

	eventSolve   = "SOLVE"
	eventAbandon = "ABANDON"
)

const (
	StateArranging State = stateArranging // Accepting moves and checks
	StateSolved    State = stateSolved    // A check returned a correct proof
	StateAbandoned State = stateAbandoned // The solver gave up
)

// Final reports whether no further moves are accepted.
func (s State) Final() bool {
	return s == StateSolved || s == StateAbandoned
}

// lifecycle is the statekit context. Actions write through the captured
// session pointer instead, so it only carries the start time.
type lifecycle struct {
	StartedAt time.Time
}

// buildLifecycle constructs the session state machine. solved and
// abandoned have no outgoing transitions.
func buildLifecycle(s *Session) (*statekit.Interpreter[lifecycle], error) {
	machine, err := statekit.NewMachine[lifecycle]("parsons-session").
		WithInitial(stateArranging).
		WithContext(lifecycle{StartedAt: s.now()}).
		WithAction("markFinished", func(_ *lifecycle, _ statekit.Event) {
			s.finishedAt = s.now()
		}).
		State(stateArranging).
		On(eventSolve).Target(stateSolved).
		On(eventAbandon).Target(stateAbandoned).Done().
		State(stateSolved).
		OnEntry("markFinished").Done().
		State(stateAbandoned).
		OnEntry("markFinished").Done().
		Build()
	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}
