package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Config file settings
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/sentiment-monitor")
	}

	// Environment variable settings
	v.SetEnvPrefix("SENTMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "sentiment-monitor")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "30s")

	// Window defaults
	v.SetDefault("window.capacity", 100)
	v.SetDefault("window.max_age", "1h")

	// Baseline defaults, calibrated on the validation split
	v.SetDefault("baseline.negative", 0.33)
	v.SetDefault("baseline.neutral", 0.34)
	v.SetDefault("baseline.positive", 0.33)
	v.SetDefault("baseline.mean_confidence", 0.75)

	// Drift defaults
	v.SetDefault("drift.metric", "psi")
	v.SetDefault("drift.min_samples", 30)
	v.SetDefault("drift.warn_threshold", 0.10)
	v.SetDefault("drift.critical_threshold", 0.25)

	// Alert defaults
	v.SetDefault("alerts.confidence_drop_threshold", 0.10)
	v.SetDefault("alerts.cooldown", "10m")
	v.SetDefault("alerts.recent_in_report", 10)

	// Retrain defaults
	v.SetDefault("retrain.critical_alert_threshold", 3)
	v.SetDefault("retrain.evaluation_period", "24h")
	v.SetDefault("retrain.max_staleness", "168h")

	// Classifier defaults
	v.SetDefault("classifier.type", "mock")
	v.SetDefault("classifier.model", "twitter-roberta-base-sentiment-latest")
	v.SetDefault("classifier.endpoint", "http://localhost:8500")
	v.SetDefault("classifier.timeout", "5s")
	v.SetDefault("classifier.retry_attempts", 3)
	v.SetDefault("classifier.circuit_breaker.max_failures", 5)
	v.SetDefault("classifier.circuit_breaker.timeout", "30s")

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
