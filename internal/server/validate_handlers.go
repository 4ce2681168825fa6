package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/parsons/internal/llm"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/tutor"
)

const attemptSource = "api"

// loadValidator resolves the :id puzzle and its validator.
func (s *Server) loadValidator(c *gin.Context) (*proof.Validator, bool) {
	rec, ok := s.loadPuzzle(c)
	if !ok {
		return nil, false
	}
	v, err := s.validator(rec)
	if err != nil {
		// Stored puzzles are checked on write, so this is corruption.
		s.internalError(c, "build validator", err)
		return nil, false
	}
	return v, true
}

// HandleValidate handles POST /api/puzzles/:id/validate.
func (s *Server) HandleValidate(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}

	res := v.Validate(req.Order)
	if s.metrics != nil {
		s.metrics.ObserveValidation(attemptSource, res)
	}

	if req.SessionID != "" && s.events != nil {
		err := s.events.AppendAttempt(c.Request.Context(), store.AttemptEventData{
			SessionID: req.SessionID,
			PuzzleID:  v.Puzzle().ID,
			Source:    attemptSource,
			Order:     req.Order,
			Score:     res.Score,
			Correct:   res.IsCorrect,
			HintCount: len(res.Hints),
		})
		if err != nil {
			loggerFrom(c).Warn("record attempt", "puzzle_id", v.Puzzle().ID, "error", err)
		}
	}

	loggerFrom(c).Debug("validated order",
		"puzzle_id", v.Puzzle().ID,
		"score", res.Score,
		"correct", res.IsCorrect,
	)
	c.JSON(http.StatusOK, res)
}

// HandlePartial handles POST /api/puzzles/:id/partial.
func (s *Server) HandlePartial(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.ValidatePartial(req.Order))
}

// HandleCanPlace handles POST /api/puzzles/:id/can-place.
func (s *Server) HandleCanPlace(c *gin.Context) {
	var req CanPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CanPlaceResponse{CanPlace: v.CanPlace(req.StepID, *req.Position, req.Order)})
}

// HandleNext handles POST /api/puzzles/:id/next.
func (s *Server) HandleNext(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}
	id, has := v.NextExpected(req.Order)
	c.JSON(http.StatusOK, NextResponse{NextExpected: id, HasNext: has})
}

// HandleStatistics handles GET /api/puzzles/:id/statistics.
func (s *Server) HandleStatistics(c *gin.Context) {
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.Statistics())
}

// HandleExplain handles POST /api/puzzles/:id/explain. The order is
// validated first and the tutor explains its first hint.
func (s *Server) HandleExplain(c *gin.Context) {
	if !s.explainer.Available() {
		s.observeExplanation("unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "no LLM provider configured",
			Code:  "LLM_UNAVAILABLE",
		})
		return
	}

	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	v, ok := s.loadValidator(c)
	if !ok {
		return
	}

	res := v.Validate(req.Order)
	ex, err := s.explainer.Explain(c.Request.Context(), v.Puzzle(), req.Order, res)
	if err != nil {
		s.explainError(c, err)
		return
	}
	s.observeExplanation("ok")
	c.JSON(http.StatusOK, ex)
}

func (s *Server) explainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tutor.ErrNothingToExplain):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "NOTHING_TO_EXPLAIN"})
	case errors.Is(err, tutor.ErrUnavailable):
		s.observeExplanation("unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: "LLM_UNAVAILABLE"})
	case errors.Is(err, llm.ErrRateLimit):
		s.observeExplanation("rate_limited")
		var le *llm.Error
		if errors.As(err, &le) && le.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(le.RetryAfter.Round(time.Second).Seconds())))
		}
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "LLM provider is rate limiting requests", Code: "LLM_RATE_LIMITED"})
	default:
		s.observeExplanation("error")
		loggerFrom(c).Warn("explain failed", "error", err)
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "LLM request failed", Code: "LLM_ERROR"})
	}
}

func (s *Server) observeExplanation(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveExplanation(outcome)
	}
}
