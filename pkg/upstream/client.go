package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

// DefaultTimeout bounds a single upstream round trip when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Params carries the path and query parameters of one upstream call.
type Params struct {
	Path  map[string]any
	Query map[string]any
}

// Operation is one upstream REST operation.
type Operation func(ctx context.Context, p Params) (any, error)

// HttpRequestDoer performs HTTP requests.
//
// The standard http.Client implements this interface.
type HttpRequestDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestEditorFn is the function signature for the RequestEditor callback function
type RequestEditorFn func(ctx context.Context, req *http.Request) error

// Client issues requests against the upstream catalog.
type Client struct {
	// The endpoint of the server conforming to this interface, with scheme,
	// https://api-colombia.com/ for example. This can contain a path relative
	// to the server, such as https://api.example.com/catalog/.
	Server string

	// Doer for performing requests, typically a *http.Client.
	Client HttpRequestDoer

	// A list of callbacks for modifying requests which are generated before sending over
	// the network.
	RequestEditors []RequestEditorFn

	logger *slog.Logger
}

// ClientOption allows setting custom parameters during construction
type ClientOption func(*Client) error

// NewClient creates a new Client, with reasonable defaults
func NewClient(server string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(server) == "" {
		return nil, fmt.Errorf("upstream server URL is required")
	}
	if _, err := url.Parse(server); err != nil {
		return nil, fmt.Errorf("invalid upstream server URL: %w", err)
	}

	client := Client{
		Server: server,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		if err := o(&client); err != nil {
			return nil, err
		}
	}
	// ensure the server URL always has a trailing slash
	if !strings.HasSuffix(client.Server, "/") {
		client.Server += "/"
	}
	if client.Client == nil {
		client.Client = &http.Client{Timeout: DefaultTimeout}
	}
	return &client, nil
}

// WithHTTPClient allows overriding the default Doer, which is
// automatically created using http.Client. This is useful for tests.
func WithHTTPClient(doer HttpRequestDoer) ClientOption {
	return func(c *Client) error {
		c.Client = doer
		return nil
	}
}

// WithRequestEditorFn allows setting up a callback function, which will be
// called right before sending the request. This can be used to mutate the request.
func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.RequestEditors = append(c.RequestEditors, fn)
		return nil
	}
}

// WithLogger configures a logger for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// Operation returns the upstream operation for method and path template.
// Template placeholders such as {id} are filled from Params.Path.
func (c *Client) Operation(method, pathTemplate string) Operation {
	return func(ctx context.Context, p Params) (any, error) {
		req, err := NewRequest(ctx, c.Server, method, pathTemplate, p)
		if err != nil {
			return nil, err
		}
		if err := c.applyEditors(ctx, req); err != nil {
			return nil, err
		}

		start := time.Now()
		rsp, err := c.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s %s: %w", method, pathTemplate, err)
		}
		defer rsp.Body.Close()

		c.logger.Debug("upstream call",
			"method", method,
			"url", req.URL.String(),
			"status", rsp.StatusCode,
			"duration", time.Since(start),
		)
		return ParseResponse(rsp)
	}
}

func (c *Client) applyEditors(ctx context.Context, req *http.Request) error {
	for _, r := range c.RequestEditors {
		if err := r(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// NewRequest builds a request for pathTemplate relative to server.
func NewRequest(ctx context.Context, server, method, pathTemplate string, p Params) (*http.Request, error) {
	serverURL, err := url.Parse(server)
	if err != nil {
		return nil, err
	}

	operationPath, err := expandPath(pathTemplate, p.Path)
	if err != nil {
		return nil, err
	}
	if operationPath[0] == '/' {
		operationPath = "." + operationPath
	}

	queryURL, err := serverURL.Parse(operationPath)
	if err != nil {
		return nil, err
	}

	if len(p.Query) > 0 {
		queryValues := queryURL.Query()
		keys := make([]string, 0, len(p.Query))
		for k := range p.Query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			queryFrag, err := runtime.StyleParamWithLocation("form", true, k, runtime.ParamLocationQuery, p.Query[k])
			if err != nil {
				return nil, fmt.Errorf("query parameter %s: %w", k, err)
			}
			parsed, err := url.ParseQuery(queryFrag)
			if err != nil {
				return nil, err
			}
			for pk, pv := range parsed {
				for _, v := range pv {
					queryValues.Add(pk, v)
				}
			}
		}
		queryURL.RawQuery = queryValues.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, queryURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// expandPath replaces {name} placeholders with simple-styled path parameters.
func expandPath(pathTemplate string, values map[string]any) (string, error) {
	if pathTemplate == "" {
		return "", fmt.Errorf("empty path template")
	}

	var b strings.Builder
	rest := pathTemplate
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("unterminated placeholder in %q", pathTemplate)
		}
		end += open

		name := rest[open+1 : end]
		value, ok := values[name]
		if !ok {
			return "", fmt.Errorf("missing path parameter %q for %q", name, pathTemplate)
		}
		styled, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
		if err != nil {
			return "", fmt.Errorf("path parameter %s: %w", name, err)
		}

		b.WriteString(rest[:open])
		b.WriteString(styled)
		rest = rest[end+1:]
	}
	return b.String(), nil
}

// ParseResponse turns an HTTP response into an opaque JSON payload.
func ParseResponse(rsp *http.Response) (any, error) {
	bodyBytes, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}

	if rsp.StatusCode < 200 || rsp.StatusCode > 299 {
		return nil, &HTTPError{
			StatusCode: rsp.StatusCode,
			Status:     rsp.Status,
			Body:       bytes.TrimSpace(bodyBytes),
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, bodyBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return json.RawMessage(compact.Bytes()), nil
}
