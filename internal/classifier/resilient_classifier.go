package classifier

import (
	"context"
	"time"

	"github.com/machineinnovators/sentiment-monitor/internal/logger"
	"github.com/machineinnovators/sentiment-monitor/internal/resilience"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

// ResilientClassifier wraps another classifier with retries and a circuit
// breaker so a flapping inference service cannot stall ingestion.
type ResilientClassifier struct {
	classifier     Classifier
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientClassifierConfig struct {
	Classifier    Classifier
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientClassifier(cfg ResilientClassifierConfig) *ResilientClassifier {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "classifier",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientClassifier{
		classifier:     cfg.Classifier,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

func (c *ResilientClassifier) Predict(ctx context.Context, text string) (models.ClassifierResult, error) {
	var result models.ClassifierResult
	var lastErr error

	err := c.circuitBreaker.Execute(func() error {
		for attempt := 1; attempt <= c.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			result, err = c.classifier.Predict(ctx, text)
			if err == nil {
				return nil
			}

			lastErr = err
			logger.Warnf("Prediction attempt %d/%d failed: %v", attempt, c.retryAttempts, err)

			if attempt < c.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return models.ClassifierResult{}, err
	}

	return result, nil
}

func (c *ResilientClassifier) HealthCheck(ctx context.Context) error {
	return c.classifier.HealthCheck(ctx)
}

func (c *ResilientClassifier) Close() error {
	return c.classifier.Close()
}

func (c *ResilientClassifier) CircuitState() resilience.State {
	return c.circuitBreaker.State()
}

func (c *ResilientClassifier) ResetCircuit() {
	c.circuitBreaker.Reset()
}
