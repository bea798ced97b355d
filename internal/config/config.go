package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	WebhookSecret       string        // shared HMAC secret for the funding webhook
	SettlementURL       string        // base URL of the external settlement oracle
	SettlementTimeout   time.Duration // bounded timeout for oracle calls
	DistributionWorkers int
}

// ErrWebhookSecretMissing makes an absent WEBHOOK_SECRET a startup-time fatal
// error instead of a per-request failure.
var ErrWebhookSecretMissing = errors.New("WEBHOOK_SECRET is not configured")

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	secret := viper.GetString("WEBHOOK_SECRET")
	if secret == "" {
		return nil, ErrWebhookSecretMissing
	}

	timeout := viper.GetDuration("SETTLEMENT_TIMEOUT")
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	workers := viper.GetInt("DISTRIBUTION_WORKERS")
	if workers <= 0 {
		workers = 4
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		WebhookSecret:       secret,
		SettlementURL:       viper.GetString("SETTLEMENT_URL"),
		SettlementTimeout:   timeout,
		DistributionWorkers: workers,
	}, nil
}
