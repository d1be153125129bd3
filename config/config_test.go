package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/agroapi/agro"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
api:
  api_key: abc123
  timeout: 10s
logging:
  level: debug
  format: json
output:
  format: json
filters:
  clear: "Clouds < 10"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.API.Key)
	assert.Equal(t, agro.DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "agroapi", cfg.API.UserAgent)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Color)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "Clouds < 10", cfg.Filters.Expression("clear"))
	assert.Equal(t, "Clouds < 10", cfg.Filters.Expression("CLEAR"))
	assert.Equal(t, "Clouds < 50", cfg.Filters.Expression("Clouds < 50"))
}

func TestLoadEnvironment(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")
	t.Setenv("AGRO_API_KEY", "from-env")
	t.Setenv("AGRO_LOGGING_LEVEL", "warn")
	t.Setenv("AGRO_API_TIMEOUT", "45s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Key)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 45*time.Second, cfg.API.Timeout)
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AGRO_API_KEY", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.API.Key)
	assert.Equal(t, agro.DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, "table", cfg.Output.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		path := writeConfig(t, "logging:\n  level: info\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.api_key")
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API:     APIConfig{Key: "valid-api-key", BaseURL: agro.DefaultBaseURL, Timeout: time.Second},
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Output:  OutputConfig{Format: "table"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "placeholder key", mutate: func(c *Config) { c.API.Key = "your-api-key-here" }, wantErr: "api.api_key"},
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: "api.base_url"},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: "api.timeout"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "trace" }, wantErr: "invalid logging level"},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: "invalid logging format"},
		{name: "bad output format", mutate: func(c *Config) { c.Output.Format = "csv" }, wantErr: "invalid output format"},
		{name: "empty filter", mutate: func(c *Config) { c.Filters = FilterConfig{"x": " "} }, wantErr: "filter 'x'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
