package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	c := s.Config()
	assert.Equal(t, "localhost", c.Server.Host)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, "localhost:8080", c.Server.Addr())
	assert.Equal(t, 15*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "levels", c.Levels.Dir)
	assert.True(t, c.Levels.Watch)
	assert.Equal(t, StoreFile, c.Sessions.Store)
	assert.Equal(t, 24*time.Hour, c.Sessions.MaxAge)
	assert.Equal(t, "pushbox", c.Redis.Prefix)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.False(t, c.Ngrok.Enabled)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushbox.yaml")
	content := `
server:
  port: 9090
  shutdown_timeout: 3s
levels:
  dir: /srv/levels
  default: corridor
sessions:
  store: redis
  max_age: 30m
redis:
  addr: redis:6379
  ttl: 2h
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.FileUsed())

	c := s.Config()
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 3*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "/srv/levels", c.Levels.Dir)
	assert.Equal(t, "corridor", c.Levels.Default)
	assert.Equal(t, StoreRedis, c.Sessions.Store)
	assert.Equal(t, 30*time.Minute, c.Sessions.MaxAge)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, 2*time.Hour, c.Redis.TTL)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "localhost", c.Server.Host)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("PUSHBOX_SERVER_PORT", "7070")
	t.Setenv("PUSHBOX_SESSIONS_STORE", "memory")
	t.Setenv("PUSHBOX_LOG_LEVEL", "warn")

	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	c := s.Config()
	assert.Equal(t, 7070, c.Server.Port)
	assert.Equal(t, StoreMemory, c.Sessions.Store)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad store", "sessions:\n  store: mongo\n", "sessions.store"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"no redis addr", "sessions:\n  store: redis\nredis:\n  addr: \"\"\n", "redis.addr"},
		{"zero max age", "sessions:\n  max_age: 0s\n", "sessions.max_age"},
		{"malformed yaml", "server: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "pushbox.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	c := s.Config()
	assert.NoError(t, Validate(&c))

	c.Sessions.Store = StoreFile
	c.Sessions.Dir = ""
	assert.ErrorContains(t, Validate(&c), "sessions.dir")
}

func TestSettings_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pushbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	s.Watch(func(c Config) {
		mu.Lock()
		seen = append(seen, c.Log.Level)
		mu.Unlock()
	}, nil)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	assert.Eventually(t, func() bool {
		return s.Config().Log.Level == "debug"
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen, "debug")
}

func TestSettings_WatchWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	s, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, s.FileUsed())

	// no file to watch, so this returns without starting a watcher
	s.Watch(func(Config) { t.Error("unexpected change") }, nil)
}
