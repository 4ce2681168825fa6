package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrDisabled is returned by NewProvider when no provider is configured.
	ErrDisabled = errors.New("no LLM provider configured")

	ErrUnavailable   = errors.New("provider unavailable")
	ErrRateLimit     = errors.New("rate limited")
	ErrRejected      = errors.New("request rejected")
	ErrInvalidOutput = errors.New("output does not match schema")
	ErrTruncated     = errors.New("output truncated at max tokens")
)

// Error is a failed model call. Kind is one of the sentinels above, so
// callers match with errors.Is(err, llm.ErrRateLimit).
type Error struct {
	Kind       error
	Provider   string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) kind() error {
	if e.Kind == nil {
		return ErrUnavailable
	}
	return e.Kind
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("llm")
	if e.Provider != "" {
		b.WriteString(" " + e.Provider)
	}
	b.WriteString(": " + e.kind().Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, ", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.kind()}
	}
	return []error{e.kind(), e.Err}
}

// statusError classifies an HTTP failure reported by a provider SDK. 429
// is a rate limit, other 4xx responses are rejections that retrying will
// not fix, everything else counts as the provider being unavailable.
func statusError(provider string, status int, header http.Header, err error) *Error {
	e := &Error{Provider: provider, Status: status, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		e.Kind = ErrRateLimit
		e.RetryAfter = retryAfter(header)
	case status >= 400 && status < 500 && status != http.StatusRequestTimeout:
		e.Kind = ErrRejected
	default:
		e.Kind = ErrUnavailable
	}
	return e
}

// transportError wraps a failure that never produced an HTTP status.
// Context errors pass through untouched.
func transportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &Error{Kind: ErrUnavailable, Provider: provider, Err: err}
}

// retryAfter reads a Retry-After header given in seconds or as an HTTP date.
func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}
