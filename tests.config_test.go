package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadConfigFile(t *testing.T) {
	config, err := LoadConfigFile("./config.yml")
	require.NoError(t, err)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 15*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, zapcore.InfoLevel, config.LogLevel)
	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, 5*time.Minute, config.Database.ConnMaxLifetime)
	assert.Equal(t, "books", config.BoltDB.BucketName)
	assert.Equal(t, 10, config.Auth.BcryptCost)

	_, err = LoadConfigFile("./missing.yml")
	assert.Error(t, err)
}

func TestLoadConfigEnvs(t *testing.T) {
	config, err := LoadConfigFile("./config.yml")
	require.NoError(t, err)

	t.Setenv("LAPI_SERVER_PORT", "9090")
	t.Setenv("LAPI_DATABASE_DRIVER", "sqlite")
	t.Setenv("LAPI_OPENLIBRARY_TIMEOUT", "3s")
	require.NoError(t, LoadConfigEnvs(EnvPrefix, config))
	assert.Equal(t, "9090", config.Server.Port)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, 3*time.Second, config.OpenLibrary.Timeout)
	assert.Equal(t, "localhost", config.Redis.Host)
}

func TestInitConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Host: "0.0.0.0", Port: "8080"},
			Redis:    RedisConfig{Host: "localhost", Port: "6379"},
			Database: DatabaseConfig{Driver: "sqlite"},
			BoltDB:   BoltDBConfig{FilePath: "mirror.db", BucketName: "books"},
		}
	}

	t.Run("should set defaults and build values", func(t *testing.T) {
		config := valid()
		require.NoError(t, InitConfig(config, "abc123", "v1.0.0", "2023-07-02"))
		assert.Equal(t, "abc123", config.GitCommit)
		assert.Equal(t, "v1.0.0", config.GitTag)
		assert.Equal(t, "2023-07-02", config.BuildTime)
		assert.Equal(t, "books.db", config.Database.DSN)
		assert.Equal(t, 10, config.LogMaxSize)
		assert.Equal(t, DefaultOpenLibraryBaseURL, config.OpenLibrary.BaseURL)
		assert.Equal(t, DefaultOpenLibraryTimeout, config.OpenLibrary.Timeout)
		assert.Equal(t, DefaultAuthRealm, config.Auth.Realm)
	})

	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"missing redis host", func(c *Config) { c.Redis.Host = "" }},
		{"missing postgres dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"missing bolt bucket", func(c *Config) { c.BoltDB.BucketName = "" }},
	}
	for _, tc := range testCases {
		t.Run("should fail: "+tc.name, func(t *testing.T) {
			config := valid()
			tc.mutate(config)
			assert.Error(t, InitConfig(config, "", "", ""))
		})
	}
}

func TestRSyncWrite(t *testing.T) {
	folder := t.TempDir()
	clock := NewMockClocker()
	rsw := NewRSyncWriter(&Config{LogFolder: folder, LogMaxSize: 1}, clock)
	defer rsw.Close()

	n, err := rsw.Write([]byte("first line\n"))
	require.NoError(t, err)
	assert.Equal(t, 11, n)
	require.NoError(t, rsw.Sync())

	path := CreateLogFilePath(folder, false, clock.Now())
	assert.Equal(t, filepath.Join(folder, "20230702.000000.dev.log"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(data))

	_, err = rsw.Write(make([]byte, 2*1048576))
	assert.Error(t, err, "a single entry larger than the max size must be rejected")
}

func TestSetupLogging(t *testing.T) {
	folder := t.TempDir()
	clock := NewMockClocker()
	config := &Config{LogFolder: folder, LogMaxSize: 1, IsProduction: true, LogLevel: zapcore.InfoLevel, GitCommit: "abc123"}
	rsw := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, rsw, NewTickClock(clock))
	logger.Debug("hidden")
	logger.Info("visible")
	require.NoError(t, flusher())
	require.NoError(t, rsw.Close())

	data, err := os.ReadFile(CreateLogFilePath(folder, true, clock.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"visible"`)
	assert.Contains(t, string(data), `"app.commit":"abc123"`)
	assert.Contains(t, string(data), `"ts":"2023-07-02T00:00:00.000Z"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestIDsHandler(t *testing.T) {
	idh := NewIDsHandler()
	id := idh.Generate(RequestIDPrefix)
	assert.True(t, idh.IsValid(id, RequestIDPrefix))
	assert.False(t, idh.IsValid(id, "b"))
	assert.False(t, idh.IsValid("r:not-a-uuid", RequestIDPrefix))
	assert.NotEqual(t, id, idh.Generate(RequestIDPrefix))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err = ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidID, raw)
	}
}
