package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommand(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:  "test",
		RunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
	BindFlags(cmd, cfg)
	return cmd
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newTestCommand(cfg)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, Default(), *cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("WHAM_PORT", "9090")
	t.Setenv("WHAM_STORAGE", "sqlite")
	t.Setenv("WHAM_REDIS_DATA_TTL", "48h")

	cfg := &Config{}
	cmd := newTestCommand(cfg)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 48*time.Hour, cfg.RedisDataTTL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("WHAM_PORT", "9090")

	cfg := &Config{}
	cmd := newTestCommand(cfg)
	cmd.SetArgs([]string{"--port", "7070", "--timezone", "Europe/London"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "Europe/London", cfg.Timezone)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 0 }, true},
		{"unknown storage", func(c *Config) { c.Storage = "postgres" }, true},
		{"redis without url", func(c *Config) { c.Storage = StorageRedis; c.RedisURL = "" }, true},
		{"sqlite without path", func(c *Config) { c.Storage = StorageSQLite; c.SQLitePath = "" }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("WHAM_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("WHAM_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("WHAM_TEST_DOTENV"))
}
