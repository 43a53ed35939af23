package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom_EnvOverridesYAML(t *testing.T) {
	path := writeConfig(t, `
port: "9000"
env: "test"
database:
  host: "db.example.com"
  port: 5432
  user: "testuser"
  database: "testdb"
swapi:
  base_url: "https://swapi.example.com/api"
pagination:
  default_page_size: 10
  max_page_size: 50
`)

	t.Setenv("PORT", "9100")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := LoadFrom(path, "test-version")
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env must override yaml")
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "db.example.com", cfg.Database.Host)
	assert.Equal(t, "testdb", cfg.Database.Database)
	assert.Equal(t, "https://swapi.example.com/api", cfg.Swapi.BaseURL)
	assert.Equal(t, 10, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 50, cfg.Pagination.MaxPageSize)
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "dev")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "/api/starwars", cfg.APIPrefix)
	assert.Equal(t, 20, cfg.Pagination.DefaultPageSize)
	assert.Equal(t, 100, cfg.Pagination.MaxPageSize)
	assert.Equal(t, "https://swapi.dev/api", cfg.Swapi.BaseURL)
	assert.False(t, cfg.Swapi.CacheEnabled)
	assert.False(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "holocron_populate", cfg.Metrics.PushJob)
	assert.True(t, cfg.IsLocal())
}

func TestLoadFrom_PasswordOnlyFromEnv(t *testing.T) {
	path := writeConfig(t, `
database:
  password: "from-yaml"
`)
	t.Setenv("PGPASSWORD", "from-env")

	cfg, err := LoadFrom(path, "v")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Password)
}

func TestLoadFrom_RejectsInvalidPagination(t *testing.T) {
	path := writeConfig(t, `
pagination:
  default_page_size: 50
  max_page_size: 10
`)
	_, err := LoadFrom(path, "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_page_size")
}

func TestLoadFrom_RejectsRelativeSwapiURL(t *testing.T) {
	t.Setenv("SWAPI_BASE_URL", "swapi.dev/api")
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"), "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "swapi base_url")
}

func TestLoadFrom_Pushgateway(t *testing.T) {
	path := writeConfig(t, `
metrics:
  pushgateway_url: "http://pushgateway:9091"
  push_job: "nightly_import"
`)
	cfg, err := LoadFrom(path, "v")
	require.NoError(t, err)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "nightly_import", cfg.Metrics.PushJob)

	t.Setenv("METRICS_PUSHGATEWAY_URL", "pushgateway:9091")
	_, err = LoadFrom(path, "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushgateway_url")
}

func TestDatabaseConfig_ConnectionStringPrefersURL(t *testing.T) {
	c := DatabaseConfig{URL: "postgres://u:p@db:5432/x", Host: "ignored"}
	assert.Equal(t, "postgres://u:p@db:5432/x", c.ConnectionString())
}

func TestSwapiConfig_ResourceURL(t *testing.T) {
	c := SwapiConfig{BaseURL: "https://swapi.dev/api/"}
	assert.Equal(t, "https://swapi.dev/api/people/", c.ResourceURL("people"))

	c.BaseURL = "https://swapi.dev/api"
	assert.Equal(t, "https://swapi.dev/api/planets/", c.ResourceURL("planets"))
}
