package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is the YAML file read by Load when it exists.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for holocron.
// Configuration can come from a YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// APIPrefix is where the REST surface is mounted in addition to the root.
	APIPrefix string `yaml:"api_prefix" env:"API_PREFIX" env-default:"/api/starwars"`

	// ShutdownTimeoutSeconds bounds graceful HTTP shutdown.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds" env:"SHUTDOWN_TIMEOUT_SECONDS" env-default:"15"`

	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Swapi      SwapiConfig      `yaml:"swapi"`
	Pagination PaginationConfig `yaml:"pagination"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// DatabaseConfig holds PostgreSQL database configuration.
// URL, when set, wins over the discrete fields.
type DatabaseConfig struct {
	URL            string `yaml:"-" env:"DATABASE_URL"` // May embed a password - env only
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"holocron"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"holocron"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"10"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`

	// MigrateOnStart applies pending migrations when the server boots.
	MigrateOnStart bool `yaml:"migrate_on_start" env:"MIGRATE_ON_START" env-default:"true"`
}

// RedisConfig configures the optional shared fetch cache used by the importer.
// An empty host disables Redis.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether a Redis host was configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port for the Redis client.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", resolveHostForDocker(c.Host), c.Port)
}

// SwapiConfig describes the external source the importer reads from.
type SwapiConfig struct {
	BaseURL        string `yaml:"base_url" env:"SWAPI_BASE_URL" env-default:"https://swapi.dev/api"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"SWAPI_TIMEOUT_SECONDS" env-default:"10"`
	// InsecureSkipVerify disables TLS certificate checks. swapi.dev has served
	// expired certificates in the past.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" env:"SWAPI_INSECURE_SKIP_VERIFY" env-default:"false"`
	// CacheEnabled lets the importer reuse documents fetched earlier in the run.
	// Off by default so every phase re-reads the source.
	CacheEnabled    bool `yaml:"cache_enabled" env:"SWAPI_CACHE_ENABLED" env-default:"false"`
	CacheTTLMinutes int  `yaml:"cache_ttl_minutes" env:"SWAPI_CACHE_TTL_MINUTES" env-default:"60"`
}

// Timeout returns the per-request timeout as a duration.
func (c *SwapiConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the Redis cache entry lifetime.
func (c *SwapiConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// ResourceURL joins the base URL with a resource collection name, e.g. "people".
func (c *SwapiConfig) ResourceURL(resource string) string {
	return strings.TrimRight(c.BaseURL, "/") + "/" + resource + "/"
}

// PaginationConfig holds list defaults shared by REST and GraphQL.
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size" env:"DEFAULT_PAGE_SIZE" env-default:"20"`
	MaxPageSize     int `yaml:"max_page_size" env:"MAX_PAGE_SIZE" env-default:"100"`
}

// MetricsConfig toggles the Prometheus endpoint. Populate pushes its counters
// to PushgatewayURL when set.
type MetricsConfig struct {
	Enabled        bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path           string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
	PushgatewayURL string `yaml:"pushgateway_url" env:"METRICS_PUSHGATEWAY_URL"`
	PushJob        string `yaml:"push_job" env:"METRICS_PUSH_JOB" env-default:"holocron_populate"`
}

// Load reads configuration from config.yaml (when present) with environment
// variable overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultConfigPath, version)
}

// LoadFrom is Load with an explicit YAML path. A missing file is not an
// error; environment variables and defaults are used instead.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Pagination.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be at least 1")
	}
	if c.Pagination.MaxPageSize < c.Pagination.DefaultPageSize {
		return fmt.Errorf("max_page_size (%d) must be >= default_page_size (%d)",
			c.Pagination.MaxPageSize, c.Pagination.DefaultPageSize)
	}

	u, err := url.Parse(c.Swapi.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("swapi base_url %q is not an absolute URL", c.Swapi.BaseURL)
	}
	if c.Swapi.TimeoutSeconds < 1 {
		return fmt.Errorf("swapi timeout_seconds must be at least 1")
	}

	if c.Metrics.PushgatewayURL != "" {
		u, err := url.Parse(c.Metrics.PushgatewayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("metrics pushgateway_url %q is not an absolute URL", c.Metrics.PushgatewayURL)
		}
		if c.Metrics.PushJob == "" {
			return fmt.Errorf("metrics push_job is required with pushgateway_url")
		}
	}

	if !strings.HasPrefix(c.APIPrefix, "/") {
		return fmt.Errorf("api_prefix must start with /")
	}
	return nil
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.BindAddr + ":" + c.Port
}

// IsLocal reports whether the service runs in the local development environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "dev"
}

// ShutdownTimeout returns the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.PathEscape(c.User), url.PathEscape(c.Password),
		resolveHostForDocker(c.Host), c.Port, c.Database, c.SSLMode,
	)
}

var (
	inDockerOnce sync.Once
	inDocker     bool
)

// resolveHostForDocker maps loopback hosts to host.docker.internal when the
// process runs inside a container, so a local Postgres/Redis stays reachable.
func resolveHostForDocker(host string) string {
	inDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inDocker = err == nil
	})
	if inDocker && (host == "localhost" || host == "127.0.0.1") {
		return "host.docker.internal"
	}
	return host
}
