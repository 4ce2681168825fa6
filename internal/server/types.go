package server

import (
	"time"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	// Error is the human-readable message.
	Error string `json:"error"`

	// Code is a stable machine-readable error code.
	Code string `json:"code,omitempty"`

	// Details carries validation specifics when available.
	Details string `json:"details,omitempty"`
}

// StepRequest is one block of a puzzle in a create or update body.
type StepRequest struct {
	ID    string `json:"id" binding:"required,max=64"`
	Latex string `json:"latex"`
}

// PuzzleBody holds the editable fields of a puzzle.
type PuzzleBody struct {
	Title         string        `json:"title" binding:"required,max=500"`
	DisplayTitle  string        `json:"displayTitle" binding:"max=500"`
	Statement     string        `json:"statement"`
	Category      string        `json:"category" binding:"required,oneof=big-o induction set-theory recursion"`
	Difficulty    string        `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Tags          []string      `json:"tags" binding:"omitempty,max=20,dive,required,max=50"`
	Blocks        []StepRequest `json:"blocks" binding:"required,min=2,max=100,dive"`
	SolutionOrder []string      `json:"solutionOrder" binding:"required,min=2"`
}

// CreatePuzzleRequest is the body of POST /api/puzzles.
type CreatePuzzleRequest struct {
	ID string `json:"id" binding:"required,max=64,excludesall=/?#"`
	PuzzleBody
}

func (b PuzzleBody) toPuzzle(id string) proof.Puzzle {
	p := proof.Puzzle{
		ID:            id,
		Title:         b.Title,
		DisplayTitle:  b.DisplayTitle,
		Statement:     b.Statement,
		Category:      proof.Category(b.Category),
		Difficulty:    proof.Difficulty(b.Difficulty),
		Tags:          b.Tags,
		SolutionOrder: b.SolutionOrder,
	}
	if p.Difficulty == "" {
		p.Difficulty = proof.DifficultyMedium
	}
	for _, s := range b.Blocks {
		p.Steps = append(p.Steps, proof.Step{ID: s.ID, Content: s.Latex})
	}
	return p
}

// PuzzleResponse is a stored puzzle as returned by the API.
type PuzzleResponse struct {
	proof.Puzzle
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newPuzzleResponse(rec store.PuzzleRecord) PuzzleResponse {
	return PuzzleResponse{
		Puzzle:    rec.Puzzle,
		IsActive:  rec.Active,
		CreatedAt: rec.CreatedAt.UTC(),
		UpdatedAt: rec.UpdatedAt.UTC(),
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// ListResponse is the body of the listing endpoints.
type ListResponse struct {
	Puzzles    []PuzzleResponse `json:"puzzles"`
	Category   string           `json:"category,omitempty"`
	Pagination Pagination       `json:"pagination"`
}

// MessageResponse acknowledges an operation without a resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// OrderRequest carries a user ordering. SessionID is optional; when set
// the validation is recorded as an attempt.
type OrderRequest struct {
	Order     []string `json:"order" binding:"max=200"`
	SessionID string   `json:"sessionId" binding:"omitempty,max=64"`
}

// CanPlaceRequest asks whether a step may go at a position.
type CanPlaceRequest struct {
	StepID   string   `json:"stepId" binding:"required"`
	Position *int     `json:"position" binding:"required,min=0"`
	Order    []string `json:"order" binding:"max=200"`
}

// CanPlaceResponse answers a CanPlaceRequest.
type CanPlaceResponse struct {
	CanPlace bool `json:"canPlace"`
}

// NextResponse names the step the solver should place next.
type NextResponse struct {
	NextExpected string `json:"nextExpected,omitempty"`
	HasNext      bool   `json:"hasNext"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
