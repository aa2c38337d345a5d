package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetupDefaults(t *testing.T) {
	cfg, err := Setup()
	require.NoError(t, err)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 5, cfg.Queue.MaxRetry)
	require.Equal(t, time.Minute, cfg.Queue.RetryDelay)
	require.Equal(t, int64(50<<20), cfg.Upload.MaxSize)
	require.Equal(t, 24*time.Hour, cfg.Accounts.ActivationTTL)
	require.NotEmpty(t, cfg.App.Secret)
	require.Equal(t, cfg.Redis, cfg.Queue.Redis)
}

func TestSetupFromEnv(t *testing.T) {
	t.Setenv("APP_LOG_LEVEL", "debug")
	t.Setenv("DATABASE_REPLICAS", "replica-a, replica-b")
	t.Setenv("QUEUE_RETRY_DELAY", "30s")

	cfg, err := Setup()
	require.NoError(t, err)

	require.Equal(t, "debug", cfg.App.LogLevel)
	require.Equal(t, []string{"replica-a", "replica-b"}, cfg.Database.Replicas)
	require.Equal(t, 30*time.Second, cfg.Queue.RetryDelay)
}

func TestSetupRejectsInvalidValues(t *testing.T) {
	tests := map[string][2]string{
		"log level":    {"APP_LOG_LEVEL", "verbose"},
		"driver":       {"DATABASE_DRIVER", "oracle"},
		"storage type": {"STORAGE_TYPE", "ftp"},
		"cache store":  {"CACHE_STORE", "memcached"},
		"s3 bucket":    {"STORAGE_TYPE", "s3"},
		"rate limit":   {"SECURITY_RATE_LIMIT", "0"},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv(env[0], env[1])

			_, err := Setup()
			require.Error(t, err)
		})
	}
}

func TestHostScheme(t *testing.T) {
	require.Equal(t, "http", Host{}.Scheme())
	require.Equal(t, "https", Host{SSLEnabled: true}.Scheme())
	require.Equal(t, "https://camp.example.com", Host{SSLEnabled: true, Domain: "camp.example.com"}.BaseURL())
}
