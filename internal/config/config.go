// Package config loads server configuration from COLOMBIA_MCP_* environment
// variables. Command-line flags override it in cmd/colombia-mcp.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aretw0/colombia-mcp/internal/logging"
)

// Transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Session stores.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the server configuration.
type Config struct {
	Transport string `env:"COLOMBIA_MCP_TRANSPORT" envDefault:"stdio"`
	Host      string `env:"COLOMBIA_MCP_HOST"`
	Port      int    `env:"COLOMBIA_MCP_PORT" envDefault:"3000"`

	UpstreamURL     string        `env:"COLOMBIA_MCP_UPSTREAM_URL" envDefault:"https://api-colombia.com"`
	UpstreamTimeout time.Duration `env:"COLOMBIA_MCP_UPSTREAM_TIMEOUT" envDefault:"30s"`

	LogLevel  string `env:"COLOMBIA_MCP_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"COLOMBIA_MCP_LOG_FORMAT" envDefault:"text"`

	SessionStore string        `env:"COLOMBIA_MCP_SESSION_STORE" envDefault:"memory"`
	SessionTTL   time.Duration `env:"COLOMBIA_MCP_SESSION_TTL" envDefault:"1h"`
	Redis        Redis         `envPrefix:"COLOMBIA_MCP_REDIS_"`

	// REST mounts the REST view of the tools under /api in HTTP mode.
	REST bool `env:"COLOMBIA_MCP_REST" envDefault:"true"`
}

// Redis configures the Redis session store.
type Redis struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
	Prefix   string `env:"PREFIX" envDefault:"colombia-mcp:session:"`
}

// Load parses the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses the given environment instead of the process one.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environment}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q (expected %s or %s)", c.Transport, TransportStdio, TransportHTTP))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if u, err := url.Parse(c.UpstreamURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("upstream url %q must be absolute", c.UpstreamURL))
	}
	if c.UpstreamTimeout < 0 {
		errs = append(errs, fmt.Errorf("upstream timeout must not be negative"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.SessionStore {
	case StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis session store requires COLOMBIA_MCP_REDIS_ADDR"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session store %q (expected %s or %s)", c.SessionStore, StoreMemory, StoreRedis))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, fmt.Errorf("session ttl must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
