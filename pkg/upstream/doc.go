// Package upstream is the REST collaborator the tool handlers delegate to.
//
// Each upstream operation is a plain function value:
//
//	type Operation func(ctx context.Context, p Params) (any, error)
//
// Client builds operations from path templates, styling path and query parameters the
// way oapi-codegen generated clients do. Payloads are returned as compacted
// json.RawMessage and never inspected.
package upstream
