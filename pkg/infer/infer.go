// Package infer dispatches driver queries to a language model backend and
// shapes the outcome for the voice loop. A dispatch is exactly one backend
// call bounded by a caller-side deadline: a slow backend yields a timeout
// result, never an unbounded wait.
package infer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apexlabs/apexengineer/pkg/briefing"
)

// DefaultTimeout bounds one backend call.
const DefaultTimeout = 10 * time.Second

// Status classifies the outcome of a dispatch.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimeout
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusTimeout:
		return "timeout"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Request is one driver query with the race context it was asked under.
type Request struct {
	SessionID string
	Query     string
	Context   briefing.Summary
	IssuedAt  time.Time
	Deadline  time.Time
}

// Result is the outcome of one dispatch. Text is set only on success; Err
// only on StatusError.
type Result struct {
	Status  Status
	Text    string
	Latency time.Duration
	Err     error
}

// Backend generates a response for a request. Implementations must honor
// ctx cancellation.
type Backend interface {
	Infer(ctx context.Context, req *Request) (string, error)
}

// InferFunc is an adapter to allow the use of ordinary functions as Backends.
type InferFunc func(ctx context.Context, req *Request) (string, error)

// Infer calls the underlying function.
func (f InferFunc) Infer(ctx context.Context, req *Request) (string, error) {
	return f(ctx, req)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout sets the per-dispatch deadline.
func WithTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// Dispatcher issues single bounded calls against one backend.
type Dispatcher struct {
	backend Backend
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher for backend.
func NewDispatcher(backend Backend, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		backend: backend,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Timeout returns the per-dispatch deadline.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

type outcome struct {
	text string
	err  error
}

// Dispatch sends the query with the given context summary and waits for the
// backend up to the configured timeout. When the deadline expires the call
// returns a timeout result immediately; the backend goroutine is abandoned
// with its context cancelled.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID, query string, summary briefing.Summary) Result {
	req := &Request{
		SessionID: sessionID,
		Query:     query,
		Context:   summary,
		IssuedAt:  time.Now(),
	}
	req.Deadline = req.IssuedAt.Add(d.timeout)

	cctx, cancel := context.WithDeadline(ctx, req.Deadline)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		text, err := d.backend.Infer(cctx, req)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case out := <-ch:
		latency := time.Since(req.IssuedAt)
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return Result{Status: StatusTimeout, Latency: latency}
			}
			return Result{Status: StatusError, Latency: latency, Err: out.err}
		}
		return Result{Status: StatusSuccess, Text: strings.TrimSpace(out.text), Latency: latency}
	case <-cctx.Done():
		latency := time.Since(req.IssuedAt)
		if ctx.Err() != nil {
			return Result{Status: StatusError, Latency: latency, Err: ctx.Err()}
		}
		return Result{Status: StatusTimeout, Latency: latency}
	}
}
