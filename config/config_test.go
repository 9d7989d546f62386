package config_test

import (
	"testing"
	"time"

	"storefront/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PORT", "REALTIME_PORT", "APP_ENV", "DB_DRIVER", "DB_DSN", "REDIS_URL", "KV_TTL", "NOTIFY_CHANNEL", "PAYMENT_GATEWAY", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "3001", cfg.RealtimePort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "storefront.db", cfg.DBDSN)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 7*24*time.Hour, cfg.KVTTL)
	assert.Equal(t, "email", cfg.NotifyChannel)
	assert.Equal(t, "sslcommerz", cfg.PaymentGateway)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "host=localhost user=shop dbname=shop")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("KV_TTL", "30m")
	t.Setenv("NOTIFY_CHANNEL", "sms")
	t.Setenv("PAYMENT_GATEWAY", "PayPal")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.KVTTL)
	assert.Equal(t, "sms", cfg.NotifyChannel)
	assert.Equal(t, "paypal", cfg.PaymentGateway)
	assert.True(t, cfg.IsProduction())
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.ErrorContains(t, err, "DB_DRIVER")

	clearEnv(t)
	t.Setenv("KV_TTL", "forever")
	_, err = config.Load()
	assert.ErrorContains(t, err, "KV_TTL")

	clearEnv(t)
	t.Setenv("NOTIFY_CHANNEL", "pigeon")
	_, err = config.Load()
	assert.ErrorContains(t, err, "NOTIFY_CHANNEL")

	clearEnv(t)
	t.Setenv("PAYMENT_GATEWAY", "barter")
	_, err = config.Load()
	assert.ErrorContains(t, err, "PAYMENT_GATEWAY")
}
