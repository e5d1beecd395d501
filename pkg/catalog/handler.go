package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/registry"
	"github.com/aretw0/colombia-mcp/pkg/upstream"
)

// Args holds the validated arguments of a call. Absent fields stay nil.
type Args struct {
	ID            *int64  `mapstructure:"id"`
	Name          *string `mapstructure:"name"`
	Keyword       *string `mapstructure:"keyword"`
	SortBy        *string `mapstructure:"sortBy"`
	SortDirection *string `mapstructure:"sortDirection"`
	Page          *int64  `mapstructure:"page"`
	PageSize      *int64  `mapstructure:"pageSize"`
	Year          *int64  `mapstructure:"year"`
}

// Values returns the present arguments keyed by field name.
func (a Args) Values() map[string]any {
	out := make(map[string]any)
	putInt := func(key string, v *int64) {
		if v != nil {
			out[key] = *v
		}
	}
	putString := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	putInt("id", a.ID)
	putString("name", a.Name)
	putString("keyword", a.Keyword)
	putString("sortBy", a.SortBy)
	putString("sortDirection", a.SortDirection)
	putInt("page", a.Page)
	putInt("pageSize", a.PageSize)
	putInt("year", a.Year)
	return out
}

// DecodeArgs decodes validated arguments into Args.
func DecodeArgs(values map[string]any) (Args, error) {
	var args Args
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &args,
		ErrorUnused: true,
	})
	if err != nil {
		return Args{}, err
	}
	if err := dec.Decode(values); err != nil {
		return Args{}, fmt.Errorf("failed to decode arguments: %w", err)
	}
	return args, nil
}

// Handler binds the tool to an upstream operation.
func (t Tool) Handler(op upstream.Operation) registry.Handler {
	return func(ctx context.Context, req domain.ToolRequest) domain.ToolResponse {
		params := domain.Then(t.parse(req.Arguments), t.params)
		text := domain.Then(params, func(p upstream.Params) domain.Result[string] {
			return t.invoke(ctx, op, p)
		})

		out, failure := text.Get()
		if failure != nil {
			return failure.Response()
		}
		return domain.TextResponse(out)
	}
}

func (t Tool) parse(raw map[string]any) domain.Result[Args] {
	values, err := t.Input.Validate(raw)
	if err != nil {
		return domain.Fail[Args](&domain.Failure{Kind: domain.KindValidation, Err: err})
	}
	args, err := DecodeArgs(values)
	if err != nil {
		return domain.Fail[Args](&domain.Failure{Kind: domain.KindDefect, Err: err})
	}
	return domain.Ok(args)
}

func (t Tool) params(args Args) domain.Result[upstream.Params] {
	values := args.Values()
	p := upstream.Params{
		Path:  make(map[string]any, len(t.PathParams)),
		Query: make(map[string]any, len(t.Query)),
	}
	for _, name := range t.PathParams {
		v, ok := values[name]
		if !ok {
			return domain.Fail[upstream.Params](&domain.Failure{
				Kind: domain.KindDefect,
				Err:  fmt.Errorf("path parameter %s missing after validation", name),
			})
		}
		p.Path[name] = v
	}
	for field, key := range t.Query {
		if v, ok := values[field]; ok {
			p.Query[key] = v
		}
	}
	return domain.Ok(p)
}

func (t Tool) invoke(ctx context.Context, op upstream.Operation, p upstream.Params) domain.Result[string] {
	payload, err := op(ctx, p)
	if err != nil {
		return domain.Fail[string](&domain.Failure{Kind: domain.KindUpstream, Context: t.Context, Err: err})
	}
	raw, err := serialize(payload)
	if err != nil {
		return domain.Fail[string](&domain.Failure{
			Kind:    domain.KindUpstream,
			Context: t.Context,
			Err:     fmt.Errorf("%w: %v", upstream.ErrMalformedPayload, err),
		})
	}
	return domain.Ok(raw)
}

// serialize renders the upstream payload as text. Raw JSON is used as received;
// other values are encoded without escaping &, < and >.
func serialize(payload any) (string, error) {
	if raw, ok := payload.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return "", fmt.Errorf("invalid JSON")
		}
		return string(raw), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
