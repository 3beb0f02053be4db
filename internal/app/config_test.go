package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	c, err := ParseConfig([]byte("server:\n  http-port: \":8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.HttpPort)
	assert.Equal(t, "release", c.Server.RunMode)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.Equal(t, "memory", c.Session.Store)
	assert.Equal(t, 20, c.App.HistoryDefaultLimit)
	assert.Equal(t, 100, c.App.HistoryMaxLimit)
	assert.Equal(t, "X-Trace-ID", c.Tracer.Header)
	assert.True(t, c.Tracer.Enabled)
	assert.False(t, c.Storage.Enabled())

	tc := c.GetTokenConfig()
	assert.Equal(t, 7*24*time.Hour, tc.Expiry)

	db := c.GetDatabaseConfig()
	assert.Equal(t, 30*time.Minute, db.ConnMaxLifetime)
	assert.Equal(t, 10*time.Minute, db.ConnMaxIdleTime)
	assert.True(t, db.Tracing)

	wq := c.GetWriteQueueConfig()
	assert.Equal(t, 30*time.Second, wq.WriteTimeout)
	assert.Equal(t, 100, wq.QueueCapacity)

	svc := c.GetServiceConfig()
	assert.Equal(t, "backups", svc.Backup.KeyPrefix)
	assert.Equal(t, 2*time.Minute, svc.Backup.Timeout)
	assert.Equal(t, 8, svc.Auth.MinPasswordLength)

	assert.Equal(t, 60*time.Second, c.GetContextTimeout())
}

func TestParseConfig_Invalid(t *testing.T) {
	_, err := ParseConfig([]byte("server: [oops"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	c, err := ParseConfig(nil)
	require.NoError(t, err)

	env := map[string]string{
		"SITE_TEXT_HTTP_PORT":      ":7000",
		"SITE_TEXT_SESSION_STORE":  "redis",
		"SITE_TEXT_REDIS_URL":      "redis://localhost:6379/0",
		"SITE_TEXT_BACKUP_ENABLED": "true",
		"SITE_TEXT_DB_TYPE":        "  ",
		"SITE_TEXT_COOKIE_SECURE":  "maybe",
	}
	c.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, ":7000", c.Server.HttpPort)
	assert.Equal(t, "redis", c.Session.Store)
	assert.Equal(t, "redis://localhost:6379/0", c.Session.RedisURL)
	assert.True(t, c.Backup.Enabled)
	assert.Equal(t, "sqlite", c.Database.Type, "blank values are ignored")
	assert.False(t, c.Security.CookieSecure, "unparsable booleans are ignored")
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("app:\n  history-max-limit: 50\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITE_TEXT_LOG_LEVEL=debug\n"), 0644))
	t.Setenv("SITE_TEXT_LOG_LEVEL", "")
	os.Unsetenv("SITE_TEXT_LOG_LEVEL")

	c, realpath, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, file, realpath)
	assert.Equal(t, 50, c.App.HistoryMaxLimit)
	assert.Equal(t, "debug", c.Log.Level)

	require.NoError(t, os.WriteFile(file, []byte("app:\n  history-max-limit: 60\nlog:\n  level: \"\"\n"), 0644))
	reloaded, _, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, 60, reloaded.App.HistoryMaxLimit)

	_, _, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
