// Package dispatch routes protocol requests to the tool registry.
//
// The Dispatcher is transport-agnostic and holds no per-session state, so one
// instance serves every connection of every transport concurrently.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/registry"
)

// Outcome labels how a call ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeUnknown Outcome = "unknown"
	OutcomeDefect  Outcome = "defect"
)

// Observer is notified once per Call.
type Observer interface {
	ObserveCall(tool string, outcome Outcome, elapsed time.Duration)
}

// Tool is the discovery view of one registered tool.
type Tool = registry.Descriptor

// Dispatcher answers list and call requests against an immutable registry.
type Dispatcher struct {
	registry *registry.Registry
	logger   *slog.Logger
	observer Observer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for defect reports.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver registers a call observer, e.g. metrics.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// New creates a Dispatcher over reg.
func New(reg *registry.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// List returns every descriptor in registration order.
func (d *Dispatcher) List() []Tool {
	return d.registry.Descriptors()
}

// Call invokes the named tool. It always returns a well-formed response.
func (d *Dispatcher) Call(ctx context.Context, req domain.ToolRequest) (rsp domain.ToolResponse) {
	start := time.Now()
	outcome := OutcomeOK
	defer func() {
		if d.observer != nil {
			d.observer.ObserveCall(req.Name, outcome, time.Since(start))
		}
	}()

	entry, ok := d.registry.Lookup(req.Name)
	if !ok {
		outcome = OutcomeUnknown
		failure := &domain.Failure{
			Kind: domain.KindUnknownTool,
			Err:  fmt.Errorf("%w: %s", domain.ErrUnknownTool, req.Name),
		}
		return failure.Response()
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = OutcomeDefect
			d.logger.Error("tool handler panicked",
				"tool", req.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			failure := &domain.Failure{Kind: domain.KindDefect, Err: fmt.Errorf("%v", r)}
			rsp = failure.Response()
		}
	}()

	rsp = entry.Handler(ctx, req)
	if len(rsp.Content) == 0 {
		outcome = OutcomeDefect
		d.logger.Error("tool handler returned an empty response", "tool", req.Name)
		failure := &domain.Failure{Kind: domain.KindDefect, Err: fmt.Errorf("tool %s returned no content", req.Name)}
		return failure.Response()
	}
	if rsp.IsError {
		outcome = OutcomeError
	}
	return rsp
}
