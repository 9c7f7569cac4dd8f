package models

import "time"

// AlertSeverity values align with EventSeverity so alerts map directly
// onto published events.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

type AlertKind string

const (
	AlertDistributionDrift AlertKind = "distribution_drift"
	AlertConfidenceDrop    AlertKind = "confidence_drop"
	AlertInsufficientData  AlertKind = "insufficient_data"
)

// Alert is one emitted monitoring alert. Value is the measurement that
// tripped the threshold (drift distance, confidence delta or sample count).
type Alert struct {
	ID        string        `json:"id"`
	Kind      AlertKind     `json:"kind"`
	Severity  AlertSeverity `json:"severity"`
	Message   string        `json:"message"`
	Value     float64       `json:"value"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewAlert(kind AlertKind, severity AlertSeverity, message string, value float64) Alert {
	return Alert{
		ID:        NewUUID(),
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		Value:     value,
		Timestamp: time.Now(),
	}
}
