package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// HandleHealth handles GET /api/health.
func (s *Server) HandleHealth(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			loggerFrom(c).Error("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{
				Error: "storage unavailable",
				Code:  "UNHEALTHY",
			})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// HandleListPuzzles handles GET /api/puzzles.
//
// Query parameters: category, difficulty, tags (comma separated or
// repeated), search, limit (default 50), offset.
func (s *Server) HandleListPuzzles(c *gin.Context) {
	opts, ok := listOpts(c)
	if !ok {
		return
	}
	opts.Category = c.Query("category")
	opts.Search = c.Query("search")
	opts.Tags = splitTags(c.QueryArray("tags"))
	s.list(c, opts, "")
}

// HandleListByCategory handles GET /api/puzzles/category/:category.
func (s *Server) HandleListByCategory(c *gin.Context) {
	category := c.Param("category")
	if !proof.Category(category).Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "unknown category: " + category,
			Code:  "INVALID_CATEGORY",
		})
		return
	}
	opts, ok := listOpts(c)
	if !ok {
		return
	}
	opts.Category = category
	s.list(c, opts, category)
}

func (s *Server) list(c *gin.Context, opts store.ListOpts, category string) {
	recs, total, err := s.puzzles.List(c.Request.Context(), opts)
	if err != nil {
		s.internalError(c, "list puzzles", err)
		return
	}

	out := ListResponse{
		Puzzles:  make([]PuzzleResponse, 0, len(recs)),
		Category: category,
		Pagination: Pagination{
			Total:   total,
			Limit:   opts.Limit,
			Offset:  opts.Offset,
			HasMore: total > opts.Offset+opts.Limit,
		},
	}
	for _, r := range recs {
		out.Puzzles = append(out.Puzzles, newPuzzleResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

// listOpts parses the paging and difficulty parameters shared by the
// listing endpoints.
func listOpts(c *gin.Context) (store.ListOpts, bool) {
	opts := store.ListOpts{Limit: defaultLimit, Difficulty: c.Query("difficulty")}

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			badParam(c, "limit must be between 1 and "+strconv.Itoa(maxLimit))
			return opts, false
		}
		opts.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badParam(c, "offset must be a non-negative integer")
			return opts, false
		}
		opts.Offset = n
	}
	if opts.Difficulty != "" && !proof.Difficulty(opts.Difficulty).Valid() {
		badParam(c, "unknown difficulty: "+opts.Difficulty)
		return opts, false
	}
	return opts, true
}

func splitTags(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
	}
	return out
}

// HandleGetPuzzle handles GET /api/puzzles/:id.
func (s *Server) HandleGetPuzzle(c *gin.Context) {
	rec, ok := s.loadPuzzle(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPuzzleResponse(*rec))
}

// HandleCreatePuzzle handles POST /api/puzzles.
func (s *Server) HandleCreatePuzzle(c *gin.Context) {
	var req CreatePuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := proof.NewPuzzle(req.toPuzzle(req.ID))
	if err != nil {
		s.puzzleError(c, err)
		return
	}

	rec, err := s.puzzles.Create(c.Request.Context(), p)
	if err != nil {
		s.puzzleError(c, err)
		return
	}
	loggerFrom(c).Info("puzzle created", "puzzle_id", rec.ID, "category", rec.Category)
	c.JSON(http.StatusCreated, newPuzzleResponse(*rec))
}

// HandleUpdatePuzzle handles PUT /api/puzzles/:id. The body replaces every
// editable field; the id comes from the path.
func (s *Server) HandleUpdatePuzzle(c *gin.Context) {
	var body PuzzleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		invalidRequest(c, err)
		return
	}

	p, err := proof.NewPuzzle(body.toPuzzle(c.Param("id")))
	if err != nil {
		s.puzzleError(c, err)
		return
	}

	rec, err := s.puzzles.Update(c.Request.Context(), p)
	if err != nil {
		s.puzzleError(c, err)
		return
	}
	s.validators.Delete(rec.ID)
	loggerFrom(c).Info("puzzle updated", "puzzle_id", rec.ID)
	c.JSON(http.StatusOK, newPuzzleResponse(*rec))
}

// HandleDeletePuzzle handles DELETE /api/puzzles/:id (soft delete).
func (s *Server) HandleDeletePuzzle(c *gin.Context) {
	id := c.Param("id")
	if err := s.puzzles.Delete(c.Request.Context(), id); err != nil {
		s.puzzleError(c, err)
		return
	}
	s.validators.Delete(id)
	loggerFrom(c).Info("puzzle deleted", "puzzle_id", id)
	c.JSON(http.StatusOK, MessageResponse{Message: "Puzzle deleted successfully"})
}

// HandleStats handles GET /api/puzzles/stats/summary.
func (s *Server) HandleStats(c *gin.Context) {
	stats, err := s.puzzles.Stats(c.Request.Context())
	if err != nil {
		s.internalError(c, "puzzle stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// loadPuzzle fetches the puzzle named by the :id parameter, writing the
// error response itself on failure.
func (s *Server) loadPuzzle(c *gin.Context) (*store.PuzzleRecord, bool) {
	rec, err := s.puzzles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.puzzleError(c, err)
		return nil, false
	}
	return rec, true
}

// puzzleError maps store and proof errors onto HTTP responses.
func (s *Server) puzzleError(c *gin.Context, err error) {
	var perr *proof.PuzzleError
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Puzzle not found", Code: "PUZZLE_NOT_FOUND"})
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Puzzle with this ID already exists", Code: "DUPLICATE_PUZZLE"})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Validation error",
			Code:    "INVALID_PUZZLE",
			Details: strings.Join(perr.Problems, "; "),
		})
	default:
		s.internalError(c, "puzzle operation", err)
	}
}

func (s *Server) internalError(c *gin.Context, op string, err error) {
	loggerFrom(c).Error(op+" failed", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "INTERNAL"})
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "invalid request body",
		Code:    "INVALID_REQUEST",
		Details: err.Error(),
	})
}

func badParam(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "INVALID_PARAMETER"})
}
