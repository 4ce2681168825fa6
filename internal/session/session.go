// Package session tracks one solver working on one puzzle: the tray of
// unplaced steps, the arrangement being built, checks, hints and the
// arranging → solved/abandoned lifecycle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
)

var (
	ErrUnknownStep       = errors.New("unknown step")
	ErrAlreadyPlaced     = errors.New("step already placed")
	ErrOutOfRange        = errors.New("position out of range")
	ErrFinished          = errors.New("session is finished")
	ErrPlacementRejected = errors.New("placement rejected in strict mode")
)

// AttemptRecorder persists checks. store.EventRepo satisfies it.
type AttemptRecorder interface {
	AppendAttempt(ctx context.Context, data store.AttemptEventData) error
}

// Options configures a Session. The zero value is a lenient session with
// a time-seeded shuffle and no recording.
type Options struct {
	// Strict only accepts placements that extend a correct prefix.
	Strict bool

	// Seed drives the tray shuffle. Zero picks a random seed.
	Seed uint64

	// Recorder receives one attempt per Check. Optional.
	Recorder AttemptRecorder

	// Source labels recorded attempts ("tui", "cli", "api").
	Source string

	// OnCheck is called with every validation result. Optional.
	OnCheck func(proof.ValidationResult)

	Logger *slog.Logger

	// Now overrides the clock in tests.
	Now func() time.Time
}

// Session is owned by a single solver and is not safe for concurrent use.
type Session struct {
	id        string
	validator *proof.Validator
	opts      Options

	// tray holds unplaced step ids in display order.
	tray []string

	// arrangement is the solver's current order.
	arrangement []string

	interp *statekit.Interpreter[lifecycle]

	checks     int
	hintsUsed  int
	last       *proof.ValidationResult
	finishedAt time.Time
}

// New starts a session on the validator's puzzle with every step shuffled
// into the tray.
func New(v *proof.Validator, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Source == "" {
		opts.Source = "tui"
	}

	s := &Session{
		id:        uuid.NewString(),
		validator: v,
		opts:      opts,
	}
	s.tray = shuffled(v.Puzzle().Steps, opts.Seed)

	interp, err := buildLifecycle(s)
	if err != nil {
		return nil, fmt.Errorf("build session lifecycle: %w", err)
	}
	s.interp = interp
	s.interp.Start()
	return s, nil
}

func shuffled(steps []proof.Step, seed uint64) []string {
	ids := make([]string, len(steps))
	for i, st := range steps {
		ids[i] = st.ID
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return ids
}

func (s *Session) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Puzzle returns the puzzle being solved.
func (s *Session) Puzzle() proof.Puzzle { return s.validator.Puzzle() }

// Validator returns the puzzle's validator.
func (s *Session) Validator() *proof.Validator { return s.validator }

// Strict reports whether strict placement is enforced.
func (s *Session) Strict() bool { return s.opts.Strict }

// Tray returns the unplaced step ids.
func (s *Session) Tray() []string { return slices.Clone(s.tray) }

// Arrangement returns the current order.
func (s *Session) Arrangement() []string { return slices.Clone(s.arrangement) }

// State returns the lifecycle state.
func (s *Session) State() State { return State(s.interp.State().Value) }

// Checks returns how many times Check ran.
func (s *Session) Checks() int { return s.checks }

// HintsUsed returns how many hints were revealed.
func (s *Session) HintsUsed() int { return s.hintsUsed }

// Last returns the most recent validation result, or nil before the
// first check.
func (s *Session) Last() *proof.ValidationResult { return s.last }

// FinishedAt is when the session was solved or abandoned.
func (s *Session) FinishedAt() time.Time { return s.finishedAt }

// Progress reports how much of the arrangement is a correct prefix.
func (s *Session) Progress() proof.PartialResult {
	return s.validator.ValidatePartial(s.arrangement)
}

func (s *Session) guard() error {
	if s.State().Final() {
		return ErrFinished
	}
	return nil
}

// Place moves stepID from the tray into the arrangement at index.
// index may equal the arrangement length to append.
func (s *Session) Place(stepID string, index int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if _, ok := s.validator.Step(stepID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	ti := slices.Index(s.tray, stepID)
	if ti < 0 {
		return fmt.Errorf("%w: %q", ErrAlreadyPlaced, stepID)
	}
	if index < 0 || index > len(s.arrangement) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, index, len(s.arrangement))
	}
	if s.opts.Strict && !s.validator.CanPlace(stepID, index, s.arrangement) {
		return fmt.Errorf("%w: %q at position %d", ErrPlacementRejected, stepID, index+1)
	}

	s.tray = slices.Delete(s.tray, ti, ti+1)
	s.arrangement = slices.Insert(s.arrangement, index, stepID)
	return nil
}

// Remove returns the step at index to the end of the tray. In strict
// mode only the last step may be removed.
func (s *Session) Remove(index int) error {
	if err := s.guard(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.arrangement) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(s.arrangement))
	}
	if s.opts.Strict && index != len(s.arrangement)-1 {
		return fmt.Errorf("%w: only the last step can be removed", ErrPlacementRejected)
	}

	id := s.arrangement[index]
	s.arrangement = slices.Delete(s.arrangement, index, index+1)
	s.tray = append(s.tray, id)
	return nil
}

// Move reorders the arrangement, taking the step at from and inserting it
// at to. Strict sessions cannot reorder.
func (s *Session) Move(from, to int) error {
	if err := s.guard(); err != nil {
		return err
	}
	n := len(s.arrangement)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d to %d with %d placed", ErrOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	if s.opts.Strict {
		return fmt.Errorf("%w: reordering is disabled", ErrPlacementRejected)
	}

	id := s.arrangement[from]
	s.arrangement = slices.Delete(s.arrangement, from, from+1)
	s.arrangement = slices.Insert(s.arrangement, to, id)
	return nil
}

// Reset puts every placed step back into the tray, in arrangement order.
func (s *Session) Reset() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.tray = append(s.tray, s.arrangement...)
	s.arrangement = nil
	s.last = nil
	return nil
}

// Hint reveals the first hint for the current arrangement and counts it
// against the session.
func (s *Session) Hint() (proof.Hint, bool) {
	if s.State().Final() {
		return proof.Hint{}, false
	}
	res := s.validator.Validate(s.arrangement)
	if len(res.Hints) == 0 {
		if id, ok := s.validator.NextExpected(s.arrangement); ok {
			st, _ := s.validator.Step(id)
			s.hintsUsed++
			return proof.Hint{
				Type:     proof.HintNext,
				Message:  "Try adding this block next:",
				Content:  st.Content,
				StepID:   id,
				Position: len(s.arrangement),
			}, true
		}
		return proof.Hint{}, false
	}
	s.hintsUsed++
	return res.Hints[0], true
}

// Check validates the arrangement and records the attempt. A correct
// proof moves the session to StateSolved. Recording failures are logged
// and never fail the check.
func (s *Session) Check(ctx context.Context) (proof.ValidationResult, error) {
	if err := s.guard(); err != nil {
		return proof.ValidationResult{}, err
	}

	res := s.validator.Validate(s.arrangement)
	s.checks++
	s.last = &res

	if s.opts.Recorder != nil {
		err := s.opts.Recorder.AppendAttempt(ctx, store.AttemptEventData{
			SessionID: s.id,
			PuzzleID:  s.validator.Puzzle().ID,
			Source:    s.opts.Source,
			Order:     s.Arrangement(),
			Score:     res.Score,
			Correct:   res.IsCorrect,
			HintCount: s.hintsUsed,
		})
		if err != nil {
			s.opts.Logger.WarnContext(ctx, "record attempt", "session_id", s.id, "error", err)
		}
	}
	if s.opts.OnCheck != nil {
		s.opts.OnCheck(res)
	}

	if res.IsCorrect {
		s.interp.Send(statekit.Event{Type: eventSolve})
	}
	return res, nil
}

// Abandon ends the session without solving it.
func (s *Session) Abandon() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.interp.Send(statekit.Event{Type: eventAbandon})
	return nil
}
