package store

import (
	"context"
	"time"

	"github.com/abhisek/parsons/internal/proof"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// ListOpts filters and paginates puzzle listings. Zero values disable a
// filter. Tags match when the puzzle carries any of them.
type ListOpts struct {
	Category   string
	Difficulty string
	Tags       []string
	Search     string
	Limit      int
	Offset     int
}

// PuzzleRecord is a stored puzzle with its bookkeeping fields.
type PuzzleRecord struct {
	proof.Puzzle
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PuzzleStats summarizes the active puzzles.
type PuzzleStats struct {
	Total        int            `json:"totalPuzzles"`
	ByCategory   map[string]int `json:"categoryCounts"`
	ByDifficulty map[string]int `json:"difficultyCounts"`
}

// PuzzleRepo manages the puzzle collection. Deleted puzzles are kept with
// is_active = false and are invisible to every read.
type PuzzleRepo interface {
	// List returns one page of matching puzzles and the total match count.
	List(ctx context.Context, opts ListOpts) ([]PuzzleRecord, int, error)

	// Get returns an active puzzle or ErrNotFound.
	Get(ctx context.Context, id string) (*PuzzleRecord, error)

	// Create inserts a new puzzle. It returns ErrDuplicate when the id is
	// taken, including by a deleted puzzle.
	Create(ctx context.Context, p proof.Puzzle) (*PuzzleRecord, error)

	// Update replaces the content of an active puzzle.
	Update(ctx context.Context, p proof.Puzzle) (*PuzzleRecord, error)

	// Delete deactivates a puzzle.
	Delete(ctx context.Context, id string) error

	// Stats counts active puzzles overall and per category and difficulty.
	Stats(ctx context.Context) (PuzzleStats, error)
}

// AttemptEventData captures one validation of a user ordering.
type AttemptEventData struct {
	SessionID string
	PuzzleID  string
	Source    string // api, tui, cli
	Order     []string
	Score     int
	Correct   bool
	HintCount int
}

// AttemptEvent is a stored AttemptEventData.
type AttemptEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	AttemptEventData
}

// AttemptQuery narrows QueryAttempts to one puzzle or session.
type AttemptQuery struct {
	QueryOpts
	PuzzleID  string
	SessionID string
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLMRequestEventData.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events sharing a purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendAttempt records a validation attempt.
	AppendAttempt(ctx context.Context, data AttemptEventData) error

	// QueryAttempts returns attempts, newest first.
	QueryAttempts(ctx context.Context, q AttemptQuery) ([]AttemptEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns LLM events, newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single LLM event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
}
