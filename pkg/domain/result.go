package domain

import "fmt"

// FailureKind classifies why a tool call did not succeed.
type FailureKind int

const (
	// KindValidation means the caller supplied arguments that fail the tool schema.
	KindValidation FailureKind = iota + 1
	// KindUnknownTool means no tool is registered under the requested name.
	KindUnknownTool
	// KindUpstream means the REST collaborator failed (network, HTTP status, payload).
	KindUpstream
	// KindDefect means a handler broke its contract (panic).
	KindDefect
)

func (k FailureKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnknownTool:
		return "unknown_tool"
	case KindUpstream:
		return "upstream"
	case KindDefect:
		return "defect"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Failure is the error half of a Result.
type Failure struct {
	Kind FailureKind
	// Context prefixes upstream failures, e.g. "Error fetching region by id".
	Context string
	Err     error
}

func (f *Failure) Error() string {
	if f.Context == "" {
		return f.Err.Error()
	}
	return f.Context + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Response renders the failure as an error-flagged ToolResponse.
func (f *Failure) Response() ToolResponse {
	switch f.Kind {
	case KindValidation:
		return ErrorResponse("Invalid input: " + f.Err.Error())
	case KindUpstream:
		return ErrorResponse(f.Error())
	default:
		return ErrorResponse("Error: " + f.Err.Error())
	}
}

// Result holds either a value or a Failure, never both.
type Result[T any] struct {
	value   T
	failure *Failure
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps a failure. A nil failure is treated as a defect.
func Fail[T any](f *Failure) Result[T] {
	if f == nil {
		f = &Failure{Kind: KindDefect, Err: fmt.Errorf("nil failure")}
	}
	return Result[T]{failure: f}
}

// Get returns the value and the failure; exactly one is meaningful.
func (r Result[T]) Get() (T, *Failure) {
	return r.value, r.failure
}

// Failed reports whether the result carries a failure.
func (r Result[T]) Failed() bool {
	return r.failure != nil
}

// Then runs fn on the value of r, short-circuiting failures.
func Then[T, U any](r Result[T], fn func(T) Result[U]) Result[U] {
	if r.failure != nil {
		return Result[U]{failure: r.failure}
	}
	return fn(r.value)
}
