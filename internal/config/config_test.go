package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads so the host environment does
// not leak into the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "PORT", "SENTINEL_MODEL", "SENTINEL_MODEL_BASE_URL",
		"SENTINEL_MODEL_TIMEOUT", "SENTINEL_CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
	// keep godotenv from picking up a developer's .env
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.Name)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
	assert.InDelta(t, 0.1, cfg.Model.Temperature, 1e-6)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.EqualValues(t, 10<<20, cfg.Upload.MaxBytes)
	assert.False(t, cfg.ModelConfigured())
}

func TestLoadYAMLOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
model:
  name: gemini-2.5-pro
  timeout: 30s
cors:
  allowedOrigins: ["https://sentinel.example"]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.Name)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, []string{"https://sentinel.example"}, cfg.CORS.AllowedOrigins)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("PORT", "7000")
	t.Setenv("SENTINEL_MODEL_TIMEOUT", "5s")
	t.Setenv("SENTINEL_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("does-not-exist.yaml")
	require.NoError(t, err)

	assert.True(t, cfg.ModelConfigured())
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Model.Timeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("GEMINI_API_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("GEMINI_API_KEY") })
	// godotenv never overrides a set variable, even an empty one
	os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Model.APIKey)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "eighty")
	_, err := Load("none.yaml")
	assert.ErrorContains(t, err, "invalid PORT")

	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestLoadMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("BAD{KEY}=1\n"), 0o600))

	_, err := Load("config.yaml")
	assert.ErrorContains(t, err, "load .env")
}

func TestLoadUnreadableDotEnv(t *testing.T) {
	clearEnv(t)
	// a directory named .env fails to read with something other than ErrNotExist
	require.NoError(t, os.Mkdir(".env", 0o700))

	_, err := Load("config.yaml")
	assert.ErrorContains(t, err, "load .env")
}
