package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	RealtimePort   string
	Env            string
	DBDriver       string
	DBDSN          string
	RedisURL       string
	KVTTL          time.Duration
	NotifyChannel  string
	PaymentGateway string
	CORSOrigins    string
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "3000"),
		RealtimePort:   getEnv("REALTIME_PORT", "3001"),
		Env:            getEnv("APP_ENV", "development"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:          getEnv("DB_DSN", "storefront.db"),
		RedisURL:       os.Getenv("REDIS_URL"),
		NotifyChannel:  strings.ToLower(getEnv("NOTIFY_CHANNEL", "email")),
		PaymentGateway: strings.ToLower(getEnv("PAYMENT_GATEWAY", "sslcommerz")),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
	}

	ttl, err := time.ParseDuration(getEnv("KV_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid KV_TTL: %w", err)
	}
	cfg.KVTTL = ttl

	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", cfg.DBDriver)
	}

	switch cfg.NotifyChannel {
	case "email", "sms":
	default:
		return nil, fmt.Errorf("unsupported NOTIFY_CHANNEL %q (want email or sms)", cfg.NotifyChannel)
	}

	switch cfg.PaymentGateway {
	case "paypal", "sslcommerz":
	default:
		return nil, fmt.Errorf("unsupported PAYMENT_GATEWAY %q (want paypal or sslcommerz)", cfg.PaymentGateway)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
