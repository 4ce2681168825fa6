package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/parsons/internal/catalog"
	"github.com/abhisek/parsons/internal/llm"
	"github.com/abhisek/parsons/internal/metrics"
	"github.com/abhisek/parsons/internal/proof"
	"github.com/abhisek/parsons/internal/store"
	"github.com/abhisek/parsons/internal/tutor"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var dbCounter atomic.Int64

type testEnv struct {
	store   *store.Store
	metrics *metrics.Metrics
	router  *gin.Engine
}

func newTestEnv(t *testing.T, explainer *tutor.Explainer) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:server_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	st, err := store.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat, err := catalog.Builtin()
	require.NoError(t, err)
	_, err = cat.Seed(context.Background(), st.PuzzleRepo())
	require.NoError(t, err)

	m := metrics.New()
	srv := New(Deps{
		Puzzles:   st.PuzzleRepo(),
		Events:    st.EventRepo(),
		Explainer: explainer,
		Metrics:   m,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Ping:      func(ctx context.Context) error { return st.DB().PingContext(ctx) },
	})
	return &testEnv{store: st, metrics: m, router: srv.Router()}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func proof1Order() []string {
	order := make([]string, 11)
	for i := range order {
		order[i] = fmt.Sprintf("block1-%d", i+1)
	}
	return order
}

func newPuzzleBody() CreatePuzzleRequest {
	return CreatePuzzleRequest{
		ID: "custom1",
		PuzzleBody: PuzzleBody{
			Title:      "Custom",
			Statement:  `a \le c`,
			Category:   "big-o",
			Difficulty: "easy",
			Tags:       []string{"custom"},
			Blocks: []StepRequest{
				{ID: "a", Latex: `a \le b`},
				{ID: "b", Latex: `b \le c`},
				{ID: "c", Latex: `a \le c`},
			},
			SolutionOrder: []string{"a", "b", "c"},
		},
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, w).Status)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

func TestListPuzzles(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name      string
		query     string
		wantCount int
		wantTotal int
		wantMore  bool
	}{
		{name: "all", query: "", wantCount: 10, wantTotal: 10},
		{name: "category", query: "?category=induction", wantCount: 3, wantTotal: 3},
		{name: "difficulty", query: "?difficulty=hard&category=big-o", wantCount: 1, wantTotal: 1},
		{name: "paged", query: "?limit=4&offset=0", wantCount: 4, wantTotal: 10, wantMore: true},
		{name: "last page", query: "?limit=4&offset=8", wantCount: 2, wantTotal: 10},
		{name: "search", query: "?search=fibonacci", wantCount: 1, wantTotal: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/puzzles"+tt.query, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			resp := decode[ListResponse](t, w)
			assert.Len(t, resp.Puzzles, tt.wantCount)
			assert.Equal(t, tt.wantTotal, resp.Pagination.Total)
			assert.Equal(t, tt.wantMore, resp.Pagination.HasMore)
		})
	}
}

func TestListPuzzles_BadParams(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, q := range []string{"?limit=0", "?limit=abc", "?offset=-1", "?difficulty=brutal"} {
		w := env.do(t, http.MethodGet, "/api/puzzles"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "INVALID_PARAMETER", decode[ErrorResponse](t, w).Code, q)
	}
}

func TestListByCategory(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/puzzles/category/recursion", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ListResponse](t, w)
	assert.Equal(t, "recursion", resp.Category)
	assert.Len(t, resp.Puzzles, 2)

	w = env.do(t, http.MethodGet, "/api/puzzles/category/topology", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CATEGORY", decode[ErrorResponse](t, w).Code)
}

func TestGetPuzzle(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodGet, "/api/puzzles/proof1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[PuzzleResponse](t, w)
	assert.Equal(t, "proof1", p.ID)
	assert.True(t, p.IsActive)
	assert.Len(t, p.Steps, 11)

	w = env.do(t, http.MethodGet, "/api/puzzles/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PUZZLE_NOT_FOUND", decode[ErrorResponse](t, w).Code)
}

func TestCreateUpdateDeletePuzzle(t *testing.T) {
	env := newTestEnv(t, nil)
	body := newPuzzleBody()

	w := env.do(t, http.MethodPost, "/api/puzzles", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[PuzzleResponse](t, w)
	assert.Equal(t, proof.DifficultyEasy, created.Difficulty)

	w = env.do(t, http.MethodPost, "/api/puzzles", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_PUZZLE", decode[ErrorResponse](t, w).Code)

	// Validate against the original solution so the cached validator exists.
	w = env.do(t, http.MethodPost, "/api/puzzles/custom1/validate", OrderRequest{Order: []string{"a", "b", "c"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[proof.ValidationResult](t, w).IsCorrect)

	update := body.PuzzleBody
	update.Title = "Custom v2"
	update.SolutionOrder = []string{"b", "a", "c"}
	w = env.do(t, http.MethodPut, "/api/puzzles/custom1", update)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Custom v2", decode[PuzzleResponse](t, w).Title)

	w = env.do(t, http.MethodPost, "/api/puzzles/custom1/validate", OrderRequest{Order: []string{"b", "a", "c"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[proof.ValidationResult](t, w).IsCorrect, "validator must follow the update")

	w = env.do(t, http.MethodDelete, "/api/puzzles/custom1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Puzzle deleted successfully", decode[MessageResponse](t, w).Message)

	w = env.do(t, http.MethodGet, "/api/puzzles/custom1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/puzzles/custom1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPut, "/api/puzzles/custom1", update)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreatePuzzle_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name      string
		mutate    func(*CreatePuzzleRequest)
		wantCode  string
		wantRetry string
	}{
		{
			name:     "missing title",
			mutate:   func(r *CreatePuzzleRequest) { r.Title = "" },
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "unknown category",
			mutate:   func(r *CreatePuzzleRequest) { r.Category = "topology" },
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "slash in id",
			mutate:   func(r *CreatePuzzleRequest) { r.ID = "a/b" },
			wantCode: "INVALID_REQUEST",
		},
		{
			name:     "order references unknown block",
			mutate:   func(r *CreatePuzzleRequest) { r.SolutionOrder = []string{"a", "b", "zz"} },
			wantCode: "INVALID_PUZZLE",
		},
		{
			name:     "duplicate block ids",
			mutate:   func(r *CreatePuzzleRequest) { r.Blocks[1].ID = "a" },
			wantCode: "INVALID_PUZZLE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := newPuzzleBody()
			tt.mutate(&body)
			w := env.do(t, http.MethodPost, "/api/puzzles", body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, w).Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
		})
	}
}

func TestStatsSummary(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/api/puzzles/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[store.PuzzleStats](t, w)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 3, stats.ByCategory["big-o"])
	assert.Equal(t, 2, stats.ByCategory["set-theory"])
}

func TestValidate(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/puzzles/proof1/validate", OrderRequest{
		Order:     proof1Order(),
		SessionID: "sess-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[proof.ValidationResult](t, w)
	assert.Equal(t, 100, res.Score)
	assert.True(t, res.IsCorrect)
	assert.Empty(t, res.Hints)

	w = env.do(t, http.MethodPost, "/api/puzzles/proof1/validate", OrderRequest{Order: []string{"block1-2", "block1-1"}})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[proof.ValidationResult](t, w)
	assert.False(t, res.IsCorrect)
	assert.NotEmpty(t, res.Hints)

	// Only the request carrying a session id is recorded.
	attempts, err := env.store.EventRepo().QueryAttempts(context.Background(), store.AttemptQuery{PuzzleID: "proof1"})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, "sess-1", attempts[0].SessionID)
	assert.Equal(t, "api", attempts[0].Source)
	assert.True(t, attempts[0].Correct)

	w = env.do(t, http.MethodPost, "/api/puzzles/nope/validate", OrderRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidate_EmptyOrder(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodPost, "/api/puzzles/proof2/validate", OrderRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[proof.ValidationResult](t, w)
	assert.Equal(t, 0, res.Score)
	assert.False(t, res.IsCorrect)
}

func TestValidate_EmptyListsEncodeAsArrays(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/puzzles/proof1/validate", OrderRequest{Order: proof1Order()})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"hints":[]`)
	assert.Contains(t, body, `"duplicates":[]`)
	assert.Contains(t, body, `"incorrectlyPositioned":[]`)

	w = env.do(t, http.MethodPost, "/api/puzzles/proof1/validate", OrderRequest{Order: proof1Order()[:2]})
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `"duplicates":[]`)
	assert.Contains(t, body, `"incorrectlyPositioned":[]`)
	assert.NotContains(t, body, "null")

	w = env.do(t, http.MethodPost, "/api/puzzles/proof1/validate", OrderRequest{})
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Contains(t, body, `"correctlyPositioned":[]`)
	assert.Contains(t, body, `"hints":[]`)
}

func TestValidate_MalformedBody(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/puzzles/proof1/validate", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[ErrorResponse](t, w).Code)
}

func TestPartialCanPlaceNext(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(t, http.MethodPost, "/api/puzzles/proof2/partial", OrderRequest{Order: []string{"block2-1", "block2-2"}})
	require.Equal(t, http.StatusOK, w.Code)
	partial := decode[proof.PartialResult](t, w)
	assert.True(t, partial.Valid)
	assert.Equal(t, "block2-3", partial.NextExpected)

	pos := 2
	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/can-place", CanPlaceRequest{
		StepID: "block2-3", Position: &pos, Order: []string{"block2-1", "block2-2"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[CanPlaceResponse](t, w).CanPlace)

	pos = 0
	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/can-place", CanPlaceRequest{
		StepID: "block2-3", Position: &pos,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[CanPlaceResponse](t, w).CanPlace)

	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/can-place", map[string]any{"stepId": "block2-3"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "position is required")

	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/next", OrderRequest{Order: []string{"block2-1"}})
	require.Equal(t, http.StatusOK, w.Code)
	next := decode[NextResponse](t, w)
	assert.True(t, next.HasNext)
	assert.Equal(t, "block2-2", next.NextExpected)

	all := []string{"block2-1", "block2-2", "block2-3", "block2-4", "block2-5"}
	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/next", OrderRequest{Order: all})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[NextResponse](t, w).HasNext)
}

func TestStatistics(t *testing.T) {
	env := newTestEnv(t, nil)
	w := env.do(t, http.MethodGet, "/api/puzzles/proof1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[proof.Statistics](t, w)
	assert.Equal(t, 11, stats.TotalBlocks)
	assert.Len(t, stats.Blocks, 11)
	assert.Equal(t, "Hard", stats.Difficulty)
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"explanation":"Start from the definition.","nudge":"Which inequality comes first?"}`),
	})
	env := newTestEnv(t, tutor.NewExplainer(mock, tutor.DefaultConfig()))

	w := env.do(t, http.MethodPost, "/api/puzzles/proof2/explain", OrderRequest{Order: []string{"block2-2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ex := decode[tutor.Explanation](t, w)
	assert.Equal(t, "Start from the definition.", ex.Explanation)
	require.NotNil(t, ex.Hint)
	assert.Equal(t, 1, mock.CallCount())

	correct := []string{"block2-1", "block2-2", "block2-3", "block2-4", "block2-5"}
	w = env.do(t, http.MethodPost, "/api/puzzles/proof2/explain", OrderRequest{Order: correct})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NOTHING_TO_EXPLAIN", decode[ErrorResponse](t, w).Code)
	assert.Equal(t, 1, mock.CallCount(), "correct proofs never reach the provider")
}

func TestExplain_Errors(t *testing.T) {
	tests := []struct {
		name       string
		explainer  *tutor.Explainer
		wantStatus int
		wantCode   string
		wantRetry  string
	}{
		{
			name:       "no provider",
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "LLM_UNAVAILABLE",
		},
		{
			name: "rate limited",
			explainer: tutor.NewExplainer(llm.NewMockProvider(llm.MockResponse{
				Err: &llm.Error{Kind: llm.ErrRateLimit, Status: 429, RetryAfter: time.Second, Err: errors.New("slow down")},
			}), tutor.DefaultConfig()),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "LLM_RATE_LIMITED",
			wantRetry:  "1",
		},
		{
			name: "provider failure",
			explainer: tutor.NewExplainer(llm.NewMockProvider(llm.MockResponse{
				Err: errors.New("boom"),
			}), tutor.DefaultConfig()),
			wantStatus: http.StatusBadGateway,
			wantCode:   "LLM_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.explainer)
			w := env.do(t, http.MethodPost, "/api/puzzles/proof2/explain", OrderRequest{Order: []string{"block2-2"}})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, w).Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/puzzles/proof2/validate", OrderRequest{Order: []string{"block2-1"}})

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `parsons_validator_validations_total{outcome="incorrect",source="api"} 1`)
	assert.Contains(t, body, `route="/api/puzzles/:id/validate"`)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := New(Deps{Puzzles: env.store.PuzzleRepo(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
