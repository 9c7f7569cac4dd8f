package config

import (
	"fmt"
	"time"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Window     WindowConfig     `mapstructure:"window"`
	Baseline   BaselineConfig   `mapstructure:"baseline"`
	Drift      DriftConfig      `mapstructure:"drift"`
	Alerts     AlertsConfig     `mapstructure:"alerts"`
	Retrain    RetrainConfig    `mapstructure:"retrain"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	API        APIConfig        `mapstructure:"api"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Events     EventsConfig     `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type WindowConfig struct {
	Capacity int           `mapstructure:"capacity"`
	MaxAge   time.Duration `mapstructure:"max_age"`
}

type BaselineConfig struct {
	Negative       float64 `mapstructure:"negative"`
	Neutral        float64 `mapstructure:"neutral"`
	Positive       float64 `mapstructure:"positive"`
	MeanConfidence float64 `mapstructure:"mean_confidence"`
}

// ToBaseline converts the flat config fields into the domain baseline.
func (b BaselineConfig) ToBaseline() models.Baseline {
	return models.Baseline{
		Distribution: models.LabelDistribution{
			models.LabelNegative: b.Negative,
			models.LabelNeutral:  b.Neutral,
			models.LabelPositive: b.Positive,
		},
		MeanConfidence: b.MeanConfidence,
	}
}

type DriftConfig struct {
	Metric            string  `mapstructure:"metric"`
	MinSamples        int     `mapstructure:"min_samples"`
	WarnThreshold     float64 `mapstructure:"warn_threshold"`
	CriticalThreshold float64 `mapstructure:"critical_threshold"`
}

type AlertsConfig struct {
	ConfidenceDropThreshold float64       `mapstructure:"confidence_drop_threshold"`
	Cooldown                time.Duration `mapstructure:"cooldown"`
	RecentInReport          int           `mapstructure:"recent_in_report"`
}

type RetrainConfig struct {
	CriticalAlertThreshold int           `mapstructure:"critical_alert_threshold"`
	EvaluationPeriod       time.Duration `mapstructure:"evaluation_period"`
	MaxStaleness           time.Duration `mapstructure:"max_staleness"`
}

type ClassifierConfig struct {
	Type           string               `mapstructure:"type"`
	Model          string               `mapstructure:"model"`
	Endpoint       string               `mapstructure:"endpoint"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RetryAttempts  int                  `mapstructure:"retry_attempts"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// Validate checks cross-field invariants. Called once at startup; the
// config is treated as immutable afterwards.
func (c *Config) Validate() error {
	if c.Window.Capacity <= 0 {
		return fmt.Errorf("window: capacity must be positive, got %d", c.Window.Capacity)
	}
	if c.Window.MaxAge < 0 {
		return fmt.Errorf("window: max_age must not be negative")
	}

	if err := validation.ValidateBaseline(c.Baseline.ToBaseline()); err != nil {
		return fmt.Errorf("baseline: %w", err)
	}

	if c.Drift.MinSamples <= 0 {
		return fmt.Errorf("drift: min_samples must be positive, got %d", c.Drift.MinSamples)
	}
	if c.Drift.WarnThreshold <= 0 {
		return fmt.Errorf("drift: warn_threshold must be positive")
	}
	if c.Drift.CriticalThreshold <= c.Drift.WarnThreshold {
		return fmt.Errorf("drift: critical_threshold must be greater than warn_threshold")
	}
	switch c.Drift.Metric {
	case "psi", "chi_square":
	default:
		return fmt.Errorf("drift: unknown metric %q (want psi or chi_square)", c.Drift.Metric)
	}

	if c.Alerts.ConfidenceDropThreshold <= 0 {
		return fmt.Errorf("alerts: confidence_drop_threshold must be positive")
	}
	if c.Alerts.Cooldown <= 0 {
		return fmt.Errorf("alerts: cooldown must be positive")
	}

	if c.Retrain.CriticalAlertThreshold <= 0 {
		return fmt.Errorf("retrain: critical_alert_threshold must be positive")
	}
	if c.Retrain.EvaluationPeriod <= 0 {
		return fmt.Errorf("retrain: evaluation_period must be positive")
	}
	if c.Retrain.MaxStaleness <= 0 {
		return fmt.Errorf("retrain: max_staleness must be positive")
	}

	switch c.Classifier.Type {
	case "http":
		if c.Classifier.Endpoint == "" {
			return fmt.Errorf("classifier: endpoint is required for type http")
		}
	case "mock":
	default:
		return fmt.Errorf("classifier: unknown type %q (want http or mock)", c.Classifier.Type)
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api: invalid port %d", c.API.Port)
	}

	return nil
}
