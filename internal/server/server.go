// Package server exposes puzzles and the proof validator over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/parsons/internal/metrics"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/tutor"
)

// Deps are the collaborators of a Server. Puzzles is required; the rest
// are optional.
type Deps struct {
	Puzzles   store.PuzzleRepo
	Events    store.EventRepo
	Explainer *tutor.Explainer
	Metrics   *metrics.Metrics
	Logger    *slog.Logger

	// Ping reports storage health for /api/health.
	Ping func(ctx context.Context) error
}

// Server holds the HTTP handlers and a validator cache keyed by puzzle id.
type Server struct {
	puzzles   store.PuzzleRepo
	events    store.EventRepo
	explainer *tutor.Explainer
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ping      func(ctx context.Context) error

	validators sync.Map // id -> cachedValidator
}

type cachedValidator struct {
	updatedAt time.Time
	v         *proof.Validator
}

// New creates a Server.
func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Server{
		puzzles:   d.Puzzles,
		events:    d.Events,
		explainer: d.Explainer,
		metrics:   d.Metrics,
		logger:    d.Logger,
		ping:      d.Ping,
	}
}

// Router builds the gin engine with middleware and every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.requestID(), s.accessLog(), gin.CustomRecovery(s.recover))

	api := r.Group("/api")
	RegisterRoutes(api, s)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	return r
}

func (s *Server) recover(c *gin.Context, err any) {
	loggerFrom(c).Error("panic in handler", "panic", fmt.Sprint(err))
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL",
	})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// validator returns a cached validator for rec, rebuilding it when the
// puzzle has been updated since it was cached.
func (s *Server) validator(rec *store.PuzzleRecord) (*proof.Validator, error) {
	if c, ok := s.validators.Load(rec.ID); ok {
		cv := c.(cachedValidator)
		if cv.updatedAt.Equal(rec.UpdatedAt) {
			return cv.v, nil
		}
	}
	v, err := proof.NewValidator(rec.Puzzle)
	if err != nil {
		return nil, err
	}
	s.validators.Store(rec.ID, cachedValidator{updatedAt: rec.UpdatedAt, v: v})
	return v, nil
}
