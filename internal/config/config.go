package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	// DatabaseURL selects the Postgres store; when empty the server runs
	// on the in-memory store (development mode).
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// KafkaBrokers enables OrderPlaced event publishing; empty disables it.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	OrderTopic   string `mapstructure:"ORDER_TOPIC"`

	LogLevel     string `mapstructure:"LOG_LEVEL"`
	SeedDemoData bool   `mapstructure:"SEED_DEMO_DATA"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	viper.SetDefault("APP_NAME", "marketplace")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("ORDER_TOPIC", "orders.placed")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SEED_DEMO_DATA", false)

	if err = viper.ReadInConfig(); err == nil {
		slog.Info("Using config file", "file", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		slog.Info("No config file found, using environment variables and defaults")
	} else {
		return config, fmt.Errorf("failed to read config file: %w", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	return config, nil
}

// Brokers splits the comma-separated broker list.
func (c Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// SlogLevel maps the configured level name onto a slog level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
