package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/machineinnovators/sentiment-monitor/internal/metrics"
	"github.com/machineinnovators/sentiment-monitor/internal/monitor"
	"github.com/machineinnovators/sentiment-monitor/internal/retrain"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

type MonitorHandler struct {
	monitor *monitor.Monitor
	retrain *retrain.Manager
}

func NewMonitorHandler(mon *monitor.Monitor, mgr *retrain.Manager) *MonitorHandler {
	return &MonitorHandler{monitor: mon, retrain: mgr}
}

type PredictRequest struct {
	Text string `json:"text" binding:"required"`
}

type PredictResponse struct {
	Result models.ClassifierResult `json:"result"`
	Alerts []models.Alert          `json:"alerts"`
}

// Predict classifies a text and folds the outcome into the monitoring
// window in one call.
func (h *MonitorHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, alerts, err := h.monitor.Predict(c.Request.Context(), req.Text)
	if err != nil {
		if errors.Is(err, validation.ErrInvalidResult) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction failed: " + err.Error()})
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, PredictResponse{Result: result, Alerts: alerts})
}

type LogPredictionRequest struct {
	Text       string             `json:"text" binding:"required"`
	Sentiment  string             `json:"sentiment" binding:"required"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores" binding:"required"`
}

// LogPrediction ingests an outcome produced by an external serving path,
// without invoking the classifier.
func (h *MonitorHandler) LogPrediction(c *gin.Context) {
	var req LogPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text, sentiment and scores are required"})
		return
	}

	scores := make(models.ScoreVector, len(req.Scores))
	for label, score := range req.Scores {
		scores[models.Label(label)] = score
	}

	result := models.ClassifierResult{
		Sentiment:  models.Label(req.Sentiment),
		Confidence: req.Confidence,
		Scores:     scores,
	}

	alerts, err := h.monitor.LogPrediction(req.Text, result)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"logged":      true,
		"window_size": h.monitor.WindowLen(),
		"alerts":      alerts,
	})
}

func (h *MonitorHandler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.monitor.GetSummaryReport())
}

func (h *MonitorHandler) Alerts(c *gin.Context) {
	history := h.monitor.AlertHistory()
	if history == nil {
		history = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":  len(history),
		"alerts": history,
	})
}

// RetrainCheck reports the current retrain decision without acting on it.
func (h *MonitorHandler) RetrainCheck(c *gin.Context) {
	metrics.Get().IncRetrainChecks()
	c.JSON(http.StatusOK, h.monitor.ShouldRetrain(time.Now()))
}

// RetrainRun asks the manager to check and, if warranted, run retraining.
func (h *MonitorHandler) RetrainRun(c *gin.Context) {
	run := h.retrain.CheckAndRetrain(time.Now())

	status := http.StatusOK
	if run.Status == models.RetrainRunCompleted {
		metrics.Get().IncRetrains()
		status = http.StatusCreated
	}
	c.JSON(status, run)
}

func (h *MonitorHandler) RetrainHistory(c *gin.Context) {
	history := h.retrain.History()
	if history == nil {
		history = []models.RetrainRun{}
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(history),
		"runs":  history,
	})
}
