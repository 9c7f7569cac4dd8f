package events

import (
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	model   string
	traceID string
}

func NewPublisher(bus *EventBus, model string) *Publisher {
	return &Publisher{bus: bus, model: model}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		model:   p.model,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) PredictionLogged(record models.PredictionRecord) {
	event := models.NewEvent(models.EventTypePredictionLogged, p.model, "Prediction logged: "+string(record.Sentiment)).
		WithData(record)
	p.publish(event)
}

func (p *Publisher) DriftEvaluated(metric *models.DriftMetric) {
	event := models.NewEvent(models.EventTypeDriftEvaluated, p.model, "Drift evaluated: "+string(metric.Status)).
		WithData(metric)

	if metric.IsCritical() {
		event.WithSeverity(models.EventSeverityCritical)
	} else if metric.IsWarning() {
		event.WithSeverity(models.EventSeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) AlertRaised(alert models.Alert) {
	event := models.NewEvent(models.EventTypeAlertRaised, p.model, alert.Message).
		WithSeverity(models.EventSeverity(alert.Severity)).
		WithData(alert)
	p.publish(event)
}

func (p *Publisher) RetrainChecked(decision *models.RetrainDecision) {
	msg := "Retrain check: not needed"
	if decision.ShouldRetrain {
		msg = "Retrain check: triggered (" + decision.Reason + ")"
	}
	event := models.NewEvent(models.EventTypeRetrainChecked, p.model, msg).
		WithData(decision)
	p.publish(event)
}

func (p *Publisher) RetrainStarted(decision *models.RetrainDecision) {
	event := models.NewEvent(models.EventTypeRetrainStarted, p.model, "Retraining started: "+decision.Reason).
		WithData(decision)
	p.publish(event)
}

func (p *Publisher) RetrainComplete(run *models.RetrainRun) {
	event := models.NewEvent(models.EventTypeRetrainComplete, p.model, "Retraining complete: "+run.ModelVersion).
		WithData(run)
	p.publish(event)
}

func (p *Publisher) Error(message string, err error) {
	event := models.NewEvent(models.EventTypeError, p.model, message).
		WithSeverity(models.EventSeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
