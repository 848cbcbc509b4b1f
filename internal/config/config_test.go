package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	require.Equal(t, "0.0.0.0:50051", cfg.GRPCAddr())
	require.Equal(t, 10*time.Second, cfg.GRPCRequestTimeout)
	require.Equal(t, StorageDriverPostgres, cfg.StorageDriver)
	require.Equal(t, 5, cfg.SearchMaxWindowDays)
	require.Equal(t, 744, cfg.PublishMaxSlots)
	require.Equal(t, 10*time.Minute, cfg.RedisUserTTL)
	require.Empty(t, cfg.RedisURL)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INTERVIEWCAL_GRPC_ADDR", "127.0.0.1:6000")
	t.Setenv("INTERVIEWCAL_STORAGE_DRIVER", "Memory")
	t.Setenv("INTERVIEWCAL_SEARCH_MAX_WINDOW_DAYS", "7")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("INTERVIEWCAL_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "127.0.0.1", cfg.GRPCHost)
	require.Equal(t, 6000, cfg.GRPCPort)
	require.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	require.Equal(t, 7, cfg.SearchMaxWindowDays)
	require.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("INTERVIEWCAL_GRPC_REQUEST_TIMEOUT", "soon")
		_, err := Load()
		require.ErrorContains(t, err, "grpc.request_timeout")
	})
	t.Run("driver", func(t *testing.T) {
		t.Setenv("INTERVIEWCAL_STORAGE_DRIVER", "mongo")
		_, err := Load()
		require.ErrorContains(t, err, "storage.driver")
	})
	t.Run("max slots", func(t *testing.T) {
		t.Setenv("INTERVIEWCAL_PUBLISH_MAX_SLOTS", "-1")
		_, err := Load()
		require.ErrorContains(t, err, "publish.max_slots")
	})
	t.Run("window", func(t *testing.T) {
		t.Setenv("INTERVIEWCAL_SEARCH_MAX_WINDOW_DAYS", "0")
		_, err := Load()
		require.ErrorContains(t, err, "search.max_window_days")
	})
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interviewcal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  max_window_days: 3\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("INTERVIEWCAL_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.SearchMaxWindowDays)
	require.Equal(t, "debug", cfg.LogLevel)
}
