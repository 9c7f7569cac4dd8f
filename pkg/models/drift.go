package models

import "time"

// DriftStatus classifies a drift evaluation. Insufficient data is a
// status, not an error: a short window is an expected state.
type DriftStatus string

const (
	DriftNormal       DriftStatus = "normal"
	DriftWarning      DriftStatus = "warning"
	DriftCritical     DriftStatus = "critical"
	DriftInsufficient DriftStatus = "insufficient_data"
)

// DriftMetric is the outcome of comparing the current window against the
// baseline distribution.
type DriftMetric struct {
	Timestamp           time.Time         `json:"timestamp"`
	Status              DriftStatus       `json:"status"`
	Metric              string            `json:"metric"`
	Distance            float64           `json:"distance"`
	ConfidenceDelta     float64           `json:"confidence_delta"`
	SampleCount         int               `json:"sample_count"`
	CurrentDistribution LabelDistribution `json:"current_distribution,omitempty"`
	MeanConfidence      float64           `json:"mean_confidence"`
}

func (m *DriftMetric) Insufficient() bool {
	return m.Status == DriftInsufficient
}

func (m *DriftMetric) IsCritical() bool {
	return m.Status == DriftCritical
}

func (m *DriftMetric) IsWarning() bool {
	return m.Status == DriftWarning
}
