package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/schema"
)

var (
	// ErrDuplicateTool is returned when two entries share a name.
	ErrDuplicateTool = errors.New("duplicate tool name")
	// ErrInvalidEntry is returned for entries with a bad name or no handler.
	ErrInvalidEntry = errors.New("invalid tool entry")
)

var toolName = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Handler executes one tool. It always returns a response; failures are
// reported as error-flagged responses, never as Go errors.
type Handler func(ctx context.Context, req domain.ToolRequest) domain.ToolResponse

// Descriptor is the static metadata of a tool.
type Descriptor struct {
	Name        string
	Description string
	Input       schema.Schema

	inputSchema json.RawMessage
}

// InputSchema returns the JSON-Schema shown to clients for discovery.
func (d Descriptor) InputSchema() json.RawMessage {
	return append(json.RawMessage(nil), d.inputSchema...)
}

// Entry pairs a descriptor with its handler.
type Entry struct {
	Descriptor Descriptor
	Handler    Handler
}

// Registry is an immutable, ordered, name-keyed table of tools.
// It is safe for concurrent use since it never changes after New.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// New builds a registry from entries, keeping their order.
// Duplicate names are rejected rather than overridden.
func New(entries ...Entry) (*Registry, error) {
	r := &Registry{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for _, e := range entries {
		name := e.Descriptor.Name
		if !toolName.MatchString(name) {
			return nil, fmt.Errorf("%w: name %q is not kebab-case", ErrInvalidEntry, name)
		}
		if e.Handler == nil {
			return nil, fmt.Errorf("%w: tool %q has no handler", ErrInvalidEntry, name)
		}
		if _, exists := r.index[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}

		raw, err := json.Marshal(e.Descriptor.Input)
		if err != nil {
			return nil, fmt.Errorf("tool %s: render input schema: %w", name, err)
		}
		e.Descriptor.inputSchema = raw

		r.index[name] = len(r.entries)
		r.entries = append(r.entries, e)
	}
	return r, nil
}

// Lookup finds a tool by name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor)
	}
	return out
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Descriptor.Name)
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.entries)
}
