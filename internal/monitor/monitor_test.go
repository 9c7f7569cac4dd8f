package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machineinnovators/sentiment-monitor/internal/classifier"
	"github.com/machineinnovators/sentiment-monitor/pkg/config"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:     "sentiment-monitor-test",
			Mode:     "development",
			LogLevel: "error",
		},
		Window: config.WindowConfig{Capacity: 5, MaxAge: time.Hour},
		Baseline: config.BaselineConfig{
			Negative:       0.33,
			Neutral:        0.34,
			Positive:       0.33,
			MeanConfidence: 0.75,
		},
		Drift: config.DriftConfig{
			Metric:            "psi",
			MinSamples:        5,
			WarnThreshold:     0.10,
			CriticalThreshold: 0.25,
		},
		Alerts: config.AlertsConfig{
			ConfidenceDropThreshold: 0.10,
			Cooldown:                10 * time.Minute,
			RecentInReport:          10,
		},
		Retrain: config.RetrainConfig{
			CriticalAlertThreshold: 3,
			EvaluationPeriod:       24 * time.Hour,
			MaxStaleness:           7 * 24 * time.Hour,
		},
		Classifier: config.ClassifierConfig{Type: "mock", Model: "test-model"},
		API:        config.APIConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second},
		Events:     config.EventsConfig{BufferSize: 16},
	}
}

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()

	mon, err := New(testConfig(), classifier.NewMockClassifier(classifier.MockClassifierConfig{}), nil)
	require.NoError(t, err)
	return mon
}

func result(label models.Label, confidence float64) models.ClassifierResult {
	rest := (1 - confidence) / 2

	scores := make(models.ScoreVector, 3)
	for _, l := range models.AllLabels() {
		if l == label {
			scores[l] = confidence
		} else {
			scores[l] = rest
		}
	}

	return models.ClassifierResult{Sentiment: label, Confidence: confidence, Scores: scores}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Drift.CriticalThreshold = 0.05

	_, err := New(cfg, classifier.NewMockClassifier(classifier.MockClassifierConfig{}), nil)
	assert.Error(t, err)
}

func TestMonitor_InsufficientDataPhase(t *testing.T) {
	mon := newTestMonitor(t)

	// The first evaluation below min samples reports insufficient data once;
	// the cooldown keeps the follow-ups quiet.
	alerts, err := mon.LogPrediction("first", result(models.LabelPositive, 0.9))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertInsufficientData, alerts[0].Kind)
	assert.Equal(t, models.SeverityInfo, alerts[0].Severity)

	for i := 0; i < 3; i++ {
		alerts, err = mon.LogPrediction("more", result(models.LabelNeutral, 0.8))
		require.NoError(t, err)
		assert.Empty(t, alerts)
	}

	assert.Equal(t, 4, mon.WindowLen())
}

func TestMonitor_SkewedTrafficRaisesCriticalDrift(t *testing.T) {
	mon := newTestMonitor(t)

	var last []models.Alert
	for i := 0; i < 5; i++ {
		var err error
		last, err = mon.LogPrediction("glowing review", result(models.LabelPositive, 0.9))
		require.NoError(t, err)
	}

	// Fifth append crosses min samples with an all-positive window.
	require.NotEmpty(t, last)
	assert.Equal(t, models.AlertDistributionDrift, last[0].Kind)
	assert.Equal(t, models.SeverityCritical, last[0].Severity)
	assert.Greater(t, last[0].Value, 0.25)
}

func TestMonitor_ConfidenceDropAlert(t *testing.T) {
	mon := newTestMonitor(t)

	// Balanced labels so distribution drift stays low, confidence well
	// below the 0.75 baseline.
	labels := []models.Label{
		models.LabelNegative, models.LabelNeutral, models.LabelPositive,
		models.LabelNegative, models.LabelNeutral, models.LabelPositive,
	}

	var all []models.Alert
	for _, label := range labels {
		alerts, err := mon.LogPrediction("meh", result(label, 0.60))
		require.NoError(t, err)
		all = append(all, alerts...)
	}

	var found *models.Alert
	for i := range all {
		if all[i].Kind == models.AlertConfidenceDrop {
			found = &all[i]
			break
		}
	}
	require.NotNil(t, found, "expected a confidence drop alert")
	assert.Equal(t, models.SeverityWarning, found.Severity)
	assert.InDelta(t, 0.15, found.Value, 1e-9)
}

func TestMonitor_RejectsMalformedResult(t *testing.T) {
	mon := newTestMonitor(t)

	bad := result(models.LabelPositive, 0.9)
	bad.Confidence = 1.5

	_, err := mon.LogPrediction("broken", bad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, validation.ErrInvalidResult))
	assert.Equal(t, 0, mon.WindowLen())
}

func TestMonitor_SanitizesTextBeforeLogging(t *testing.T) {
	mon := newTestMonitor(t)

	_, err := mon.LogPrediction("  spaced out \x00 ", result(models.LabelNeutral, 0.8))
	require.NoError(t, err)

	report := mon.GetSummaryReport()
	assert.Equal(t, 1, report.SampleCount)
}

func TestMonitor_SummaryReport(t *testing.T) {
	mon := newTestMonitor(t)

	for i := 0; i < 5; i++ {
		_, err := mon.LogPrediction("review", result(models.LabelPositive, 0.9))
		require.NoError(t, err)
	}

	report := mon.GetSummaryReport()

	assert.Equal(t, 5, report.SampleCount)
	assert.False(t, report.InsufficientData)
	assert.InDelta(t, 100.0, report.DistributionPct[models.LabelPositive], 1e-9)
	assert.InDelta(t, 0.9, report.MeanConfidence, 1e-9)

	require.NotNil(t, report.Drift)
	assert.Equal(t, models.DriftCritical, report.Drift.Status)

	require.NotNil(t, report.Retrain)
	assert.False(t, report.Retrain.ShouldRetrain)

	assert.GreaterOrEqual(t, report.TotalAlerts, 1)
}

func TestMonitor_RetrainLifecycle(t *testing.T) {
	mon := newTestMonitor(t)
	now := time.Now()

	decision := mon.ShouldRetrain(now)
	assert.False(t, decision.ShouldRetrain)
	assert.Equal(t, models.RetrainReasonNotNeeded, decision.Reason)

	// Idempotent for unchanged inputs.
	assert.Equal(t, decision, mon.ShouldRetrain(now))

	// Push the staleness clock past the floor.
	mon.MarkRetrained(now.Add(-8 * 24 * time.Hour))
	stale := mon.ShouldRetrain(now)
	assert.True(t, stale.ShouldRetrain)
	assert.Equal(t, models.RetrainReasonStaleness, stale.Reason)

	// A fresh retrain resets it.
	mon.MarkRetrained(now)
	assert.False(t, mon.ShouldRetrain(now).ShouldRetrain)
}

func TestMonitor_ConcurrentIngestion(t *testing.T) {
	const (
		goroutines   = 8
		perGoroutine = 50
	)

	mon := newTestMonitor(t)

	errChan := make(chan error, goroutines*perGoroutine)
	readerDone := make(chan struct{})

	// Report reads race the writers; the snapshot they see must stay
	// within the window bound.
	go func() {
		defer close(readerDone)
		for i := 0; i < 100; i++ {
			if report := mon.GetSummaryReport(); report.SampleCount > 5 {
				errChan <- errors.New("report sample count exceeds window capacity")
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				if _, err := mon.LogPrediction("glowing review", result(models.LabelPositive, 0.9)); err != nil {
					errChan <- err
				}
			}
		}()
	}
	wg.Wait()
	<-readerDone
	close(errChan)

	for err := range errChan {
		t.Errorf("concurrent ingestion: %v", err)
	}

	// Capacity holds exactly, nothing double-counted.
	assert.Equal(t, 5, mon.WindowLen())

	// The cooldown admits the critical distribution alert exactly once
	// across all interleavings.
	var driftAlerts []models.Alert
	for _, alert := range mon.AlertHistory() {
		if alert.Kind == models.AlertDistributionDrift {
			driftAlerts = append(driftAlerts, alert)
		}
	}
	require.Len(t, driftAlerts, 1)
	assert.Equal(t, models.SeverityCritical, driftAlerts[0].Severity)

	report := mon.GetSummaryReport()
	assert.Equal(t, 5, report.SampleCount)
	assert.InDelta(t, 100.0, report.DistributionPct[models.LabelPositive], 1e-9)
}

func TestMonitor_PredictFeedsWindow(t *testing.T) {
	mon := newTestMonitor(t)

	res, _, err := mon.Predict(context.Background(), "lovely product")
	require.NoError(t, err)

	assert.True(t, res.Sentiment.Valid())
	assert.Equal(t, 1, mon.WindowLen())
}

func TestMonitor_PredictPropagatesClassifierError(t *testing.T) {
	cfg := testConfig()
	mock := classifier.NewMockClassifier(classifier.MockClassifierConfig{})
	mock.SetShouldFail(true, nil)

	mon, err := New(cfg, mock, nil)
	require.NoError(t, err)

	_, _, err = mon.Predict(context.Background(), "text")
	assert.ErrorIs(t, err, classifier.ErrPredictionFailed)
	assert.Equal(t, 0, mon.WindowLen())
}
