package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/machineinnovators/sentiment-monitor/internal/alerting"
	"github.com/machineinnovators/sentiment-monitor/internal/classifier"
	"github.com/machineinnovators/sentiment-monitor/internal/drift"
	"github.com/machineinnovators/sentiment-monitor/internal/events"
	"github.com/machineinnovators/sentiment-monitor/internal/logger"
	"github.com/machineinnovators/sentiment-monitor/internal/metrics"
	"github.com/machineinnovators/sentiment-monitor/internal/report"
	"github.com/machineinnovators/sentiment-monitor/internal/retrain"
	"github.com/machineinnovators/sentiment-monitor/internal/window"
	"github.com/machineinnovators/sentiment-monitor/pkg/config"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

// Monitor is the continuous-monitoring engine for a deployed sentiment
// classifier: it ingests prediction outcomes into a bounded window,
// evaluates drift against the configured baseline, raises rate-limited
// alerts and answers retrain checks. One instance per monitored model;
// all state lives on the instance.
type Monitor struct {
	config     *config.Config
	baseline   models.Baseline
	window     *window.Window
	detector   drift.Detector
	alerts     *alerting.Manager
	reporter   *report.Reporter
	trigger    *retrain.Trigger
	classifier classifier.Classifier
	publisher  *events.Publisher

	mu            sync.RWMutex
	lastRetrainAt time.Time
}

// New validates the configuration and assembles the monitor. The
// classifier is an injected capability; the monitor never constructs one.
func New(cfg *config.Config, cls classifier.Classifier, publisher *events.Publisher) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid monitor config: %w", err)
	}

	detector, err := drift.New(drift.Config{
		Metric:            cfg.Drift.Metric,
		MinSamples:        cfg.Drift.MinSamples,
		WarnThreshold:     cfg.Drift.WarnThreshold,
		CriticalThreshold: cfg.Drift.CriticalThreshold,
	})
	if err != nil {
		return nil, err
	}

	return &Monitor{
		config:   cfg,
		baseline: cfg.Baseline.ToBaseline(),
		window: window.New(window.Config{
			Capacity: cfg.Window.Capacity,
			MaxAge:   cfg.Window.MaxAge,
		}),
		detector: detector,
		alerts: alerting.New(alerting.Config{
			ConfidenceDropThreshold: cfg.Alerts.ConfidenceDropThreshold,
			Cooldown:                cfg.Alerts.Cooldown,
		}),
		reporter: report.New(report.Config{
			MinSamples:   cfg.Drift.MinSamples,
			RecentAlerts: cfg.Alerts.RecentInReport,
		}),
		trigger: retrain.NewTrigger(retrain.Config{
			CriticalAlertThreshold: cfg.Retrain.CriticalAlertThreshold,
			EvaluationPeriod:       cfg.Retrain.EvaluationPeriod,
			MaxStaleness:           cfg.Retrain.MaxStaleness,
		}),
		classifier:    cls,
		publisher:     publisher,
		lastRetrainAt: time.Now(),
	}, nil
}

// LogPrediction records one classifier outcome and returns any alerts the
// resulting drift evaluation produced. A malformed result fails without
// touching the window.
func (m *Monitor) LogPrediction(text string, result models.ClassifierResult) ([]models.Alert, error) {
	if err := validation.ValidateResult(result); err != nil {
		metrics.Get().IncValidationErrors()
		return nil, err
	}

	record := models.NewPredictionRecord(validation.SanitizeText(text), result)
	if err := m.window.Append(record); err != nil {
		metrics.Get().IncValidationErrors()
		return nil, err
	}

	metrics.Get().IncPredictions(string(record.Sentiment))
	metrics.Get().SetWindowSize(m.window.Len())

	if m.publisher != nil {
		m.publisher.PredictionLogged(record)
	}

	driftMetric := m.detector.Evaluate(m.window.Snapshot(), m.baseline)
	if !driftMetric.Insufficient() {
		metrics.Get().SetDrift(driftMetric.Distance, driftMetric.ConfidenceDelta)
		metrics.Get().SetMeanConfidence(driftMetric.MeanConfidence)
	}

	if m.publisher != nil {
		m.publisher.DriftEvaluated(driftMetric)
	}

	alerts := m.alerts.Evaluate(driftMetric)
	for _, alert := range alerts {
		metrics.Get().IncAlerts(string(alert.Kind), string(alert.Severity))
		logger.WithModel(m.config.Classifier.Model).Warnf(
			"Alert: [%s] %s", alert.Severity, alert.Message,
		)
		if m.publisher != nil {
			m.publisher.AlertRaised(alert)
		}
	}

	return alerts, nil
}

// Predict classifies a text with the injected capability and logs the
// outcome in one step.
func (m *Monitor) Predict(ctx context.Context, text string) (models.ClassifierResult, []models.Alert, error) {
	result, err := m.classifier.Predict(ctx, text)
	if err != nil {
		if m.publisher != nil {
			m.publisher.Error("Classifier prediction failed", err)
		}
		return models.ClassifierResult{}, nil, err
	}

	alerts, err := m.LogPrediction(text, result)
	if err != nil {
		return models.ClassifierResult{}, nil, err
	}

	return result, alerts, nil
}

// GetSummaryReport builds a point-in-time report over the current window
// and alert history, including a fresh drift evaluation and the current
// retrain decision.
func (m *Monitor) GetSummaryReport() *models.SummaryReport {
	snapshot := m.window.Snapshot()
	history := m.alerts.History()

	summary := m.reporter.Build(snapshot, history)
	summary.Drift = m.detector.Evaluate(snapshot, m.baseline)
	summary.Retrain = m.ShouldRetrain(time.Now())

	return summary
}

// ShouldRetrain evaluates the retrain policy at the given time. Safe to
// call repeatedly: it reads state but never advances it.
func (m *Monitor) ShouldRetrain(now time.Time) *models.RetrainDecision {
	return m.trigger.Decide(m.alerts.History(), m.lastRetrain(), now)
}

// MarkRetrained resets the staleness clock. Called by the scheduler after
// it actually acted on a positive decision.
func (m *Monitor) MarkRetrained(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRetrainAt = t
}

func (m *Monitor) lastRetrain() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRetrainAt
}

// AlertHistory returns a copy of all alerts emitted so far.
func (m *Monitor) AlertHistory() []models.Alert {
	return m.alerts.History()
}

func (m *Monitor) WindowLen() int {
	return m.window.Len()
}

func (m *Monitor) Model() string {
	return m.config.Classifier.Model
}

// HealthCheck verifies the injected classifier is reachable.
func (m *Monitor) HealthCheck(ctx context.Context) error {
	return m.classifier.HealthCheck(ctx)
}
