package drift

import (
	"math"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

// chiSquareDetector measures drift with a chi-square style statistic over
// label proportions: sum of (cur - base)^2 / base.
type chiSquareDetector struct {
	config Config
}

func (d *chiSquareDetector) Name() string {
	return "chi_square"
}

func (d *chiSquareDetector) Evaluate(snapshot []models.PredictionRecord, baseline models.Baseline) *models.DriftMetric {
	return evaluate(d.config, d.Name(), chiSquare, snapshot, baseline)
}

func chiSquare(current, baseline models.LabelDistribution) float64 {
	var total float64
	for _, label := range models.AllLabels() {
		base := math.Max(baseline[label], proportionFloor)
		diff := current[label] - base
		total += diff * diff / base
	}
	return total
}
