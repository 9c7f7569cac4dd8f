package models

import "time"

type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// SummaryReport is a point-in-time view of the monitor: window statistics,
// drift state and recent alert activity. Pure snapshot, no side effects.
type SummaryReport struct {
	Timestamp        time.Time         `json:"timestamp"`
	SampleCount      int               `json:"sample_count"`
	DistributionPct  map[Label]float64 `json:"sentiment_distribution_pct"`
	MeanConfidence   float64           `json:"avg_confidence"`
	MinConfidence    float64           `json:"min_confidence"`
	MaxConfidence    float64           `json:"max_confidence"`
	ConfidenceTrend  Trend             `json:"confidence_trend"`
	InsufficientData bool              `json:"insufficient_data"`
	Drift            *DriftMetric      `json:"drift,omitempty"`
	RecentAlerts     []Alert           `json:"recent_alerts"`
	TotalAlerts      int               `json:"total_alerts"`
	Retrain          *RetrainDecision  `json:"retrain,omitempty"`
}
