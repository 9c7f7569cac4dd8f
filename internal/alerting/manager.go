package alerting

import (
	"fmt"
	"sync"
	"time"

	"github.com/machineinnovators/sentiment-monitor/internal/logger"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type Config struct {
	ConfidenceDropThreshold float64
	Cooldown                time.Duration
}

type alertKey struct {
	kind     models.AlertKind
	severity models.AlertSeverity
}

// Manager turns drift metrics into severity-tiered alerts. A repeated
// (kind, severity) pair inside the cool-down interval is suppressed so a
// sustained condition produces one alert, not one per evaluation. Emitted
// alerts go into an append-only history.
type Manager struct {
	config      Config
	history     []models.Alert
	lastEmitted map[alertKey]time.Time
	mu          sync.Mutex
}

func New(cfg Config) *Manager {
	if cfg.ConfidenceDropThreshold == 0 {
		cfg.ConfidenceDropThreshold = 0.10
	}
	if cfg.Cooldown == 0 {
		cfg.Cooldown = 10 * time.Minute
	}

	return &Manager{
		config:      cfg,
		lastEmitted: make(map[alertKey]time.Time),
	}
}

// Evaluate maps a drift metric to zero or more new alerts for this call.
func (m *Manager) Evaluate(metric *models.DriftMetric) []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	var emitted []models.Alert

	for _, candidate := range m.candidates(metric) {
		key := alertKey{kind: candidate.Kind, severity: candidate.Severity}
		if last, seen := m.lastEmitted[key]; seen && time.Since(last) < m.config.Cooldown {
			logger.Debugf("Alert suppressed by cooldown: %s/%s", candidate.Kind, candidate.Severity)
			continue
		}

		m.lastEmitted[key] = candidate.Timestamp
		m.history = append(m.history, candidate)
		emitted = append(emitted, candidate)
	}

	return emitted
}

func (m *Manager) candidates(metric *models.DriftMetric) []models.Alert {
	if metric.Insufficient() {
		return []models.Alert{models.NewAlert(
			models.AlertInsufficientData,
			models.SeverityInfo,
			fmt.Sprintf("Only %d samples in window, drift evaluation needs more data", metric.SampleCount),
			float64(metric.SampleCount),
		)}
	}

	var out []models.Alert

	switch metric.Status {
	case models.DriftCritical:
		out = append(out, models.NewAlert(
			models.AlertDistributionDrift,
			models.SeverityCritical,
			fmt.Sprintf("Sentiment distribution drift %s=%.4f above critical threshold", metric.Metric, metric.Distance),
			metric.Distance,
		))
	case models.DriftWarning:
		out = append(out, models.NewAlert(
			models.AlertDistributionDrift,
			models.SeverityWarning,
			fmt.Sprintf("Sentiment distribution drift %s=%.4f above warn threshold", metric.Metric, metric.Distance),
			metric.Distance,
		))
	}

	if metric.ConfidenceDelta >= m.config.ConfidenceDropThreshold {
		severity := models.SeverityWarning
		if metric.ConfidenceDelta >= 2*m.config.ConfidenceDropThreshold {
			severity = models.SeverityCritical
		}
		out = append(out, models.NewAlert(
			models.AlertConfidenceDrop,
			severity,
			fmt.Sprintf("Mean confidence dropped %.2f%% below baseline", metric.ConfidenceDelta*100),
			metric.ConfidenceDelta,
		))
	}

	return out
}

// History returns a copy of the full alert history in emission order.
func (m *Manager) History() []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Alert, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) HistoryLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Recent returns the most recent n alerts, newest last.
func (m *Manager) Recent(n int) []models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 || len(m.history) == 0 {
		return nil
	}
	if n > len(m.history) {
		n = len(m.history)
	}

	out := make([]models.Alert, n)
	copy(out, m.history[len(m.history)-n:])
	return out
}
