package drift

import (
	"math"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

// proportionFloor avoids log(0) and division by zero for empty buckets.
const proportionFloor = 1e-6

// psiDetector measures drift with the population stability index:
// PSI = sum over labels of (cur - base) * ln(cur / base).
// Conventional thresholds: < 0.1 stable, 0.1-0.25 moderate shift,
// > 0.25 significant shift.
type psiDetector struct {
	config Config
}

func (d *psiDetector) Name() string {
	return "psi"
}

func (d *psiDetector) Evaluate(snapshot []models.PredictionRecord, baseline models.Baseline) *models.DriftMetric {
	return evaluate(d.config, d.Name(), psi, snapshot, baseline)
}

func psi(current, baseline models.LabelDistribution) float64 {
	var total float64
	for _, label := range models.AllLabels() {
		cur := math.Max(current[label], proportionFloor)
		base := math.Max(baseline[label], proportionFloor)
		total += (cur - base) * math.Log(cur/base)
	}
	// Floating point noise can dip marginally below zero when the
	// distributions match.
	if total < 0 {
		return 0
	}
	return total
}
