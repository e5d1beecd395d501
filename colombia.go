package colombia

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/colombia-mcp/internal/config"
	"github.com/aretw0/colombia-mcp/internal/logging"
	restAdapter "github.com/aretw0/colombia-mcp/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/colombia-mcp/pkg/adapters/mcp"
	"github.com/aretw0/colombia-mcp/pkg/adapters/memory"
	redisAdapter "github.com/aretw0/colombia-mcp/pkg/adapters/redis"
	"github.com/aretw0/colombia-mcp/pkg/catalog"
	"github.com/aretw0/colombia-mcp/pkg/dispatch"
	"github.com/aretw0/colombia-mcp/pkg/domain"
	"github.com/aretw0/colombia-mcp/pkg/observability"
	"github.com/aretw0/colombia-mcp/pkg/session"
	"github.com/aretw0/colombia-mcp/pkg/upstream"
)

//go:embed VERSION
var rawVersion string

// Version is the release of this module.
var Version = strings.TrimSpace(rawVersion)

// Config is the server configuration. See LoadConfig.
type Config = config.Config

// LoadConfig reads the configuration from COLOMBIA_MCP_* environment variables.
func LoadConfig() (Config, error) {
	return config.Load()
}

// App wires the catalog, the upstream client and the transports together.
type App struct {
	cfg        Config
	logger     *slog.Logger
	ops        catalog.OperationFactory
	store      session.Store
	metrics    *observability.Metrics
	dispatcher *dispatch.Dispatcher
	sessions   *session.Manager
	server     *mcpAdapter.Server
	closers    []io.Closer
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithOperations replaces the upstream client, e.g. with a stub in tests.
func WithOperations(ops catalog.OperationFactory) Option {
	return func(a *App) {
		a.ops = ops
	}
}

// WithSessionStore replaces the store selected by the configuration.
func WithSessionStore(store session.Store) Option {
	return func(a *App) {
		a.store = store
	}
}

// New validates cfg and builds the application.
// A Redis session store is pinged, so an unreachable Redis fails here.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{
		cfg:     cfg,
		logger:  logging.NewNop(),
		metrics: observability.NewMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.ops == nil {
		client, err := upstream.NewClient(cfg.UpstreamURL,
			upstream.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
			upstream.WithLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		a.ops = client
	}

	c, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	reg, err := catalog.Build(c, a.ops)
	if err != nil {
		return nil, err
	}
	a.dispatcher = dispatch.New(reg,
		dispatch.WithLogger(a.logger),
		dispatch.WithObserver(a.metrics),
	)

	if a.store == nil {
		store, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	a.sessions = session.NewManager(a.store,
		session.WithLogger(a.logger),
		session.WithObserver(a.metrics),
	)

	a.server = mcpAdapter.NewServer(a.dispatcher,
		mcpAdapter.WithLogger(a.logger),
		mcpAdapter.WithImplementation("colombia-mcp", Version),
		mcpAdapter.WithSessions(a.sessions),
		mcpAdapter.WithMetricsHandler(a.metrics.Handler()),
	)

	a.logger.Debug("application ready",
		"tools", reg.Len(),
		"transport", cfg.Transport,
		"session_store", cfg.SessionStore,
		"upstream", cfg.UpstreamURL,
	)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (session.Store, error) {
	switch a.cfg.SessionStore {
	case config.StoreRedis:
		store := redisAdapter.New(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB,
			redisAdapter.WithTTL(a.cfg.SessionTTL),
			redisAdapter.WithPrefix(a.cfg.Redis.Prefix),
		)
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis session store unreachable at %s: %w", a.cfg.Redis.Addr, err)
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return memory.NewStore(memory.WithTTL(a.cfg.SessionTTL)), nil
	}
}

// Tools returns the tool descriptors in registration order.
func (a *App) Tools() []dispatch.Tool {
	return a.dispatcher.List()
}

// Call invokes a tool in-process. It never fails: every error is an error-flagged response.
func (a *App) Call(ctx context.Context, name string, args map[string]any) domain.ToolResponse {
	return a.dispatcher.Call(ctx, domain.ToolRequest{Name: name, Arguments: args})
}

// Metrics returns the Prometheus collectors of the application.
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Server returns the MCP protocol server.
func (a *App) Server() *mcpAdapter.Server {
	return a.server
}

// Serve runs the configured transport until ctx is cancelled or, for stdio, in ends.
func (a *App) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	switch a.cfg.Transport {
	case config.TransportHTTP:
		return a.ListenAndServe(ctx)
	default:
		return a.server.ServeStdio(ctx, in, out)
	}
}

// ListenAndServe serves streamable HTTP on the configured address, with the REST
// view mounted under /api when enabled.
func (a *App) ListenAndServe(ctx context.Context) error {
	mounts, err := a.mounts()
	if err != nil {
		return err
	}
	return a.server.ListenAndServe(ctx, a.cfg.Addr(), mounts...)
}

// HTTPHandler returns the HTTP transport as a plain handler.
func (a *App) HTTPHandler() (http.Handler, error) {
	mounts, err := a.mounts()
	if err != nil {
		return nil, err
	}
	return a.server.HTTPHandler(mounts...), nil
}

func (a *App) mounts() ([]func(chi.Router), error) {
	if !a.cfg.REST {
		return nil, nil
	}
	mount, err := restAdapter.Mount(a.dispatcher, Version, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build REST view: %w", err)
	}
	return []func(chi.Router){mount}, nil
}

// Close releases the session store.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
