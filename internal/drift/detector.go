package drift

import (
	"fmt"
	"time"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type Config struct {
	Metric            string
	MinSamples        int
	WarnThreshold     float64
	CriticalThreshold float64
}

// Detector computes a distributional distance between a window snapshot
// and the fixed baseline. Implementations must return zero iff the
// distributions are identical and must never return a negative distance.
type Detector interface {
	Name() string
	Evaluate(snapshot []models.PredictionRecord, baseline models.Baseline) *models.DriftMetric
}

// New selects the configured distance metric. Unknown names and unusable
// thresholds are rejected here rather than falling back silently; zero
// fields take the package defaults.
func New(cfg Config) (Detector, error) {
	cfg = withDefaults(cfg)

	if cfg.WarnThreshold <= 0 {
		return nil, fmt.Errorf("drift warn threshold must be positive, got %v", cfg.WarnThreshold)
	}
	if cfg.CriticalThreshold <= cfg.WarnThreshold {
		return nil, fmt.Errorf("drift critical threshold %v must be greater than warn threshold %v",
			cfg.CriticalThreshold, cfg.WarnThreshold)
	}

	switch cfg.Metric {
	case "", "psi":
		cfg.Metric = "psi"
		return &psiDetector{config: cfg}, nil
	case "chi_square":
		return &chiSquareDetector{config: cfg}, nil
	default:
		return nil, fmt.Errorf("unknown drift metric %q", cfg.Metric)
	}
}

func withDefaults(cfg Config) Config {
	if cfg.MinSamples <= 0 {
		cfg.MinSamples = 30
	}
	if cfg.WarnThreshold == 0 {
		cfg.WarnThreshold = 0.10
	}
	if cfg.CriticalThreshold == 0 {
		cfg.CriticalThreshold = 0.25
	}
	return cfg
}

// evaluate holds the shared evaluation flow; only the distance function
// differs between detectors.
func evaluate(cfg Config, name string, distanceFn func(current, baseline models.LabelDistribution) float64,
	snapshot []models.PredictionRecord, baseline models.Baseline) *models.DriftMetric {

	metric := &models.DriftMetric{
		Timestamp:   time.Now(),
		Metric:      name,
		SampleCount: len(snapshot),
	}

	if len(snapshot) < cfg.MinSamples {
		metric.Status = models.DriftInsufficient
		return metric
	}

	current := labelDistribution(snapshot)
	mean := meanConfidence(snapshot)

	metric.CurrentDistribution = current
	metric.MeanConfidence = mean
	metric.Distance = distanceFn(current, baseline.Distribution)
	metric.ConfidenceDelta = baseline.MeanConfidence - mean
	metric.Status = classify(cfg, metric.Distance)

	return metric
}

func classify(cfg Config, distance float64) models.DriftStatus {
	switch {
	case distance >= cfg.CriticalThreshold:
		return models.DriftCritical
	case distance >= cfg.WarnThreshold:
		return models.DriftWarning
	default:
		return models.DriftNormal
	}
}

func labelDistribution(snapshot []models.PredictionRecord) models.LabelDistribution {
	counts := make(map[models.Label]int, 3)
	for _, rec := range snapshot {
		counts[rec.Sentiment]++
	}

	dist := make(models.LabelDistribution, 3)
	total := float64(len(snapshot))
	for _, label := range models.AllLabels() {
		dist[label] = float64(counts[label]) / total
	}
	return dist
}

func meanConfidence(snapshot []models.PredictionRecord) float64 {
	if len(snapshot) == 0 {
		return 0
	}
	var total float64
	for _, rec := range snapshot {
		total += rec.Confidence
	}
	return total / float64(len(snapshot))
}
