package metrics

import (
	"net/http"
	"strconv"
	"sync"
)

// Metrics is a process-wide registry exposed in Prometheus text format.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	predictionsTotal      map[string]int64            // label -> count
	validationErrorsTotal int64
	alertsTotal           map[string]map[string]int64 // kind -> severity -> count
	retrainChecksTotal    int64
	retrainsTotal         int64

	// Gauges
	windowSize      int
	driftDistance   float64
	confidenceDelta float64
	meanConfidence  float64
	circuitState    int // 0=closed, 1=open, 2=half-open
}

var (
	instance *Metrics
	once     sync.Once
)

func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			predictionsTotal: make(map[string]int64),
			alertsTotal:      make(map[string]map[string]int64),
		}
	})
	return instance
}

func (m *Metrics) IncPredictions(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.predictionsTotal[label]++
}

func (m *Metrics) IncValidationErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validationErrorsTotal++
}

func (m *Metrics) IncAlerts(kind, severity string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alertsTotal[kind] == nil {
		m.alertsTotal[kind] = make(map[string]int64)
	}
	m.alertsTotal[kind][severity]++
}

func (m *Metrics) IncRetrainChecks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrainChecksTotal++
}

func (m *Metrics) IncRetrains() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retrainsTotal++
}

func (m *Metrics) SetWindowSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windowSize = size
}

func (m *Metrics) SetDrift(distance, confidenceDelta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driftDistance = distance
	m.confidenceDelta = confidenceDelta
}

func (m *Metrics) SetMeanConfidence(confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meanConfidence = confidence
}

func (m *Metrics) SetCircuitState(state int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.circuitState = state
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		defer m.mu.RUnlock()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		for label, count := range m.predictionsTotal {
			writeMetric(w, "sentmon_predictions_total", map[string]string{"label": label}, float64(count))
		}

		writeMetric(w, "sentmon_validation_errors_total", nil, float64(m.validationErrorsTotal))

		for kind, severities := range m.alertsTotal {
			for severity, count := range severities {
				writeMetric(w, "sentmon_alerts_total", map[string]string{"kind": kind, "severity": severity}, float64(count))
			}
		}

		writeMetric(w, "sentmon_retrain_checks_total", nil, float64(m.retrainChecksTotal))
		writeMetric(w, "sentmon_retrains_total", nil, float64(m.retrainsTotal))

		writeMetric(w, "sentmon_window_size", nil, float64(m.windowSize))
		writeMetric(w, "sentmon_drift_distance", nil, m.driftDistance)
		writeMetric(w, "sentmon_confidence_delta", nil, m.confidenceDelta)
		writeMetric(w, "sentmon_mean_confidence", nil, m.meanConfidence)
		writeMetric(w, "sentmon_classifier_circuit_state", nil, float64(m.circuitState))
	})
}

func writeMetric(w http.ResponseWriter, name string, labels map[string]string, value float64) {
	labelStr := ""
	if len(labels) > 0 {
		labelStr = "{"
		first := true
		for k, v := range labels {
			if !first {
				labelStr += ","
			}
			labelStr += k + `="` + v + `"`
			first = false
		}
		labelStr += "}"
	}
	w.Write([]byte(name + labelStr + " " + strconv.FormatFloat(value, 'f', -1, 64) + "\n"))
}
