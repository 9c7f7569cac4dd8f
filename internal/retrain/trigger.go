package retrain

import (
	"time"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type Config struct {
	CriticalAlertThreshold int
	EvaluationPeriod       time.Duration
	MaxStaleness           time.Duration
}

// Trigger decides whether the model should be retrained. It is stateless:
// the decision is a pure function of the alert history, the last retrain
// time and the evaluation timestamp, so repeated checks with unchanged
// inputs return identical decisions.
type Trigger struct {
	config Config
}

func NewTrigger(cfg Config) *Trigger {
	if cfg.CriticalAlertThreshold <= 0 {
		cfg.CriticalAlertThreshold = 3
	}
	if cfg.EvaluationPeriod <= 0 {
		cfg.EvaluationPeriod = 24 * time.Hour
	}
	if cfg.MaxStaleness <= 0 {
		cfg.MaxStaleness = 7 * 24 * time.Hour
	}

	return &Trigger{config: cfg}
}

// Decide evaluates the retrain policy: enough critical alerts within the
// rolling evaluation period, or the periodic-refresh staleness floor.
func (t *Trigger) Decide(history []models.Alert, lastRetrain, now time.Time) *models.RetrainDecision {
	decision := &models.RetrainDecision{
		Timestamp: now,
		Reason:    models.RetrainReasonNotNeeded,
	}

	cutoff := now.Add(-t.config.EvaluationPeriod)
	for _, alert := range history {
		if alert.Severity == models.SeverityCritical && !alert.Timestamp.Before(cutoff) {
			decision.CriticalAlerts++
		}
	}

	if !lastRetrain.IsZero() {
		decision.Staleness = now.Sub(lastRetrain)
	}

	if decision.CriticalAlerts >= t.config.CriticalAlertThreshold {
		decision.ShouldRetrain = true
		decision.Reason = models.RetrainReasonCriticalAlerts
		return decision
	}

	if decision.Staleness >= t.config.MaxStaleness {
		decision.ShouldRetrain = true
		decision.Reason = models.RetrainReasonStaleness
		return decision
	}

	return decision
}
