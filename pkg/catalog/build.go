package catalog

import (
	"fmt"

	"github.com/aretw0/colombia-mcp/pkg/registry"
	"github.com/aretw0/colombia-mcp/pkg/upstream"
)

// OperationFactory produces upstream operations. *upstream.Client implements it.
type OperationFactory interface {
	Operation(method, pathTemplate string) upstream.Operation
}

// Entries pairs every tool with a handler bound to its upstream operation.
func Entries(tools []Tool, ops OperationFactory) []registry.Entry {
	entries := make([]registry.Entry, 0, len(tools))
	for _, t := range tools {
		entries = append(entries, registry.Entry{
			Descriptor: registry.Descriptor{
				Name:        t.Name,
				Description: t.Description,
				Input:       t.Input,
			},
			Handler: t.Handler(ops.Operation(t.Method, t.Path)),
		})
	}
	return entries
}

// Build expands c and returns the immutable registry of its tools.
func Build(c *Catalog, ops OperationFactory) (*registry.Registry, error) {
	tools, err := c.Tools()
	if err != nil {
		return nil, fmt.Errorf("failed to expand catalog: %w", err)
	}
	reg, err := registry.New(Entries(tools, ops)...)
	if err != nil {
		return nil, fmt.Errorf("failed to build registry: %w", err)
	}
	return reg, nil
}
