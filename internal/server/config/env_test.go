package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_Variables(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "missing.env")}

	t.Setenv(EnvHTTPAddr, ":9000")
	t.Setenv(EnvDatabaseDSN, "postgres://x")
	t.Setenv(EnvSecretKey, "k")
	t.Setenv(EnvSessionTTL, "30m")
	t.Setenv(EnvCookieName, "sid")
	t.Setenv(EnvCookieSecure, "true")
	t.Setenv(EnvTrustForwardedFor, "false")
	t.Setenv(EnvPasswordScheme, "bcrypt")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvSeedOnStart, "1")
	t.Setenv(EnvDBMaxOpenConns, "3")
	t.Setenv(EnvAuditLogPath, "audit.log")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c)

	assert.Equal(t, ":9000", c.HTTPAddr)
	assert.Equal(t, "postgres://x", c.DatabaseDSN)
	assert.Equal(t, "k", c.SecretKey)
	assert.Equal(t, 30*time.Minute, c.SessionTTL)
	assert.Equal(t, "sid", c.CookieName)
	assert.True(t, c.CookieSecure)
	assert.False(t, c.TrustForwardedFor)
	assert.Equal(t, "bcrypt", c.PasswordScheme)
	assert.Equal(t, "warn", c.LogLevel)
	assert.True(t, c.SeedOnStart)
	assert.Equal(t, 3, c.DBMaxOpenConns)
	assert.Equal(t, "audit.log", c.AuditLogPath)
}

func TestParseEnv_DatabaseURLFallback(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "missing.env")}

	t.Setenv(EnvDatabaseURL, "postgres://from-url")

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, "postgres://from-url", c.DatabaseDSN)
}

func TestParseEnv_DotenvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ROLEBOARD_COOKIE_NAME=from_file\n"), 0o600))
	os.Args = []string{"testbin", "-env-file", path}
	t.Cleanup(func() { _ = os.Unsetenv(EnvCookieName) })

	c := &Config{}
	parseEnv(c)

	assert.Equal(t, "from_file", c.CookieName)
}

func TestParseEnv_BadValuePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-env-file", filepath.Join(t.TempDir(), "missing.env")}

	t.Setenv(EnvCookieSecure, "maybe")

	require.Panics(t, func() { parseEnv(&Config{}) })
}
