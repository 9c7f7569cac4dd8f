package models

import "time"

// Reasons attached to retrain decisions.
const (
	RetrainReasonCriticalAlerts = "critical_alert_threshold_exceeded"
	RetrainReasonStaleness      = "max_staleness_exceeded"
	RetrainReasonNotNeeded      = "within_normal_parameters"
)

// RetrainDecision is derived from alert history and elapsed time on each
// check. Idempotent given unchanged inputs; holds no advancing state.
type RetrainDecision struct {
	ShouldRetrain  bool          `json:"should_retrain"`
	Reason         string        `json:"reason"`
	Timestamp      time.Time     `json:"timestamp"`
	CriticalAlerts int           `json:"critical_alerts"`
	Staleness      time.Duration `json:"staleness"`
}

type RetrainRunStatus string

const (
	RetrainRunCompleted RetrainRunStatus = "completed"
	RetrainRunSkipped   RetrainRunStatus = "skipped"
)

// RetrainRun records one pass of the retraining manager.
type RetrainRun struct {
	ID           string             `json:"id"`
	Status       RetrainRunStatus   `json:"status"`
	Timestamp    time.Time          `json:"timestamp"`
	Reason       string             `json:"reason"`
	ModelVersion string             `json:"model_version,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}
