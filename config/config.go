package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config is loaded from environment variables with sensible defaults
 * A .env file is supported for local development
 */

type Config struct {
	Port          string `mapstructure:"PORT"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	MaxEndpointsPerOrg int `mapstructure:"MAX_ENDPOINTS_PER_ORG"`

	MaxAttempts        int           `mapstructure:"MAX_ATTEMPTS"`
	RetryBaseDelay     time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	RetryPollInterval  time.Duration `mapstructure:"RETRY_POLL_INTERVAL"`
	RetryBatchSize     int           `mapstructure:"RETRY_BATCH_SIZE"`
	DeliveryTimeout    time.Duration `mapstructure:"DELIVERY_TIMEOUT"`
	SignatureTolerance time.Duration `mapstructure:"SIGNATURE_TOLERANCE"`

	EventCatalogPath string `mapstructure:"EVENT_CATALOG_PATH"`
}

func GetConfig() (*Config, error) {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("MAX_ENDPOINTS_PER_ORG", 10)
	viper.SetDefault("MAX_ATTEMPTS", 5)
	viper.SetDefault("RETRY_BASE_DELAY", "30s")
	viper.SetDefault("RETRY_POLL_INTERVAL", "10s")
	viper.SetDefault("RETRY_BATCH_SIZE", 100)
	viper.SetDefault("DELIVERY_TIMEOUT", "30s")
	viper.SetDefault("SIGNATURE_TOLERANCE", "5m")
	viper.SetDefault("EVENT_CATALOG_PATH", "")

	viper.SetConfigName(".env")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// The .env file is optional; env vars and defaults cover everything
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}

	return &config, nil
}
