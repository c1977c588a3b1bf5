package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://localhost:4000")
	t.Setenv("SESSION_SECRET", "s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.PageSize)
	assert.Equal(t, int64(3000000), cfg.SaleThreshold)
	assert.Equal(t, 450*time.Millisecond, cfg.SearchDebounce)
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "Rp", cfg.PriceSymbol)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.True(t, cfg.IsDev())
}

func TestFromEnv_InvalidNumber(t *testing.T) {
	t.Setenv("PAGE_SIZE", "abc")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGE_SIZE must be number")
}

func TestFromEnv_InvalidDuration(t *testing.T) {
	t.Setenv("SEARCH_DEBOUNCE", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEARCH_DEBOUNCE")
}

func TestValidate(t *testing.T) {
	base := Config{
		Port: "8080", BackendURL: "http://x", SessionSecret: "s",
		StoreDriver: DriverPostgres, PageSize: 30, SaleThreshold: 1, SessionCacheSize: 1,
	}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"BACKEND_URL is required":    func(c *Config) { c.BackendURL = "" },
		"SESSION_SECRET is required": func(c *Config) { c.SessionSecret = "" },
		"STORE_DRIVER must be":       func(c *Config) { c.StoreDriver = "mysql" },
		"SQLITE_PATH is required":    func(c *Config) { c.StoreDriver = DriverSQLite; c.SQLitePath = "" },
		"PAGE_SIZE must be positive": func(c *Config) { c.PageSize = 0 },
	}
	for want, mutate := range cases {
		c := base
		mutate(&c)
		err := c.Validate()
		require.Error(t, err, want)
		assert.Contains(t, err.Error(), want)
	}
}

func TestPostgresDSN(t *testing.T) {
	c := Config{PostgresHost: "db", PostgresPort: 5433, PostgresUser: "u", PostgresPassword: "p", PostgresDB: "sf", PostgresSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=sf sslmode=disable", c.PostgresDSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.PostgresDSN())
}

func TestLoad_YAMLOverlay(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://from-env")
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("PAGE_SIZE", "10")

	path := filepath.Join(t.TempDir(), "storefront.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: http://from-yaml\nsearch_debounce: 1s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-yaml", cfg.BackendURL)
	assert.Equal(t, time.Second, cfg.SearchDebounce)
	assert.Equal(t, 10, cfg.PageSize)
}

func TestLoad_MissingYAML(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://x")
	t.Setenv("SESSION_SECRET", "s")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
