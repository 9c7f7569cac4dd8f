package report

import (
	"time"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type Config struct {
	MinSamples   int
	RecentAlerts int
}

// slopeEpsilon is the smallest confidence-per-sample slope treated as a
// real trend; anything flatter reports stable.
const slopeEpsilon = 1e-4

// Reporter aggregates a window snapshot and alert history into a
// point-in-time summary. Pure computation, no locks and no side effects.
type Reporter struct {
	config Config
}

func New(cfg Config) *Reporter {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 30
	}
	if cfg.RecentAlerts <= 0 {
		cfg.RecentAlerts = 10
	}

	return &Reporter{config: cfg}
}

// Build assembles the report from a snapshot (arrival order) and the full
// alert history (emission order).
func (r *Reporter) Build(snapshot []models.PredictionRecord, history []models.Alert) *models.SummaryReport {
	report := &models.SummaryReport{
		Timestamp:       time.Now(),
		SampleCount:     len(snapshot),
		DistributionPct: make(map[models.Label]float64, 3),
		ConfidenceTrend: models.TrendStable,
		TotalAlerts:     len(history),
		RecentAlerts:    recentAlerts(history, r.config.RecentAlerts),
	}

	if len(snapshot) < r.config.MinSamples {
		report.InsufficientData = true
	}

	if len(snapshot) == 0 {
		return report
	}

	counts := make(map[models.Label]int, 3)
	minConf := snapshot[0].Confidence
	maxConf := snapshot[0].Confidence
	var totalConf float64

	for _, rec := range snapshot {
		counts[rec.Sentiment]++
		totalConf += rec.Confidence
		if rec.Confidence < minConf {
			minConf = rec.Confidence
		}
		if rec.Confidence > maxConf {
			maxConf = rec.Confidence
		}
	}

	total := float64(len(snapshot))
	for _, label := range models.AllLabels() {
		report.DistributionPct[label] = float64(counts[label]) / total * 100
	}

	report.MeanConfidence = totalConf / total
	report.MinConfidence = minConf
	report.MaxConfidence = maxConf
	report.ConfidenceTrend = confidenceTrend(snapshot)

	return report
}

// confidenceTrend fits a least-squares line through the chronological
// confidence values and reports the sign of its slope.
func confidenceTrend(snapshot []models.PredictionRecord) models.Trend {
	n := len(snapshot)
	if n < 3 {
		return models.TrendStable
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, rec := range snapshot {
		x := float64(i)
		y := rec.Confidence
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return models.TrendStable
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	switch {
	case slope > slopeEpsilon:
		return models.TrendRising
	case slope < -slopeEpsilon:
		return models.TrendFalling
	default:
		return models.TrendStable
	}
}

func recentAlerts(history []models.Alert, n int) []models.Alert {
	if len(history) == 0 {
		return []models.Alert{}
	}
	if n > len(history) {
		n = len(history)
	}

	out := make([]models.Alert, n)
	copy(out, history[len(history)-n:])
	return out
}
