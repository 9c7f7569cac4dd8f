package models

import (
	"math"
	"time"
)

// Label is a sentiment class produced by the classifier.
type Label string

const (
	LabelNegative Label = "Negative"
	LabelNeutral  Label = "Neutral"
	LabelPositive Label = "Positive"
)

// AllLabels returns the classes in canonical order.
func AllLabels() []Label {
	return []Label{LabelNegative, LabelNeutral, LabelPositive}
}

func (l Label) Valid() bool {
	switch l {
	case LabelNegative, LabelNeutral, LabelPositive:
		return true
	}
	return false
}

// ScoreVector maps each label to its predicted probability.
type ScoreVector map[Label]float64

func (s ScoreVector) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// LabelDistribution maps each label to its share of a sample, values in [0,1].
type LabelDistribution map[Label]float64

func (d LabelDistribution) Sum() float64 {
	var total float64
	for _, v := range d {
		total += v
	}
	return total
}

// Equals reports whether two distributions match within tolerance.
func (d LabelDistribution) Equals(other LabelDistribution, tolerance float64) bool {
	for _, label := range AllLabels() {
		if math.Abs(d[label]-other[label]) > tolerance {
			return false
		}
	}
	return true
}

// ClassifierResult is the output of a single classifier invocation.
type ClassifierResult struct {
	Sentiment  Label       `json:"sentiment"`
	Confidence float64     `json:"confidence"`
	Scores     ScoreVector `json:"scores"`
}

// PredictionRecord is one logged prediction outcome. Immutable once created.
type PredictionRecord struct {
	ID         string      `json:"id"`
	Timestamp  time.Time   `json:"timestamp"`
	Text       string      `json:"text"`
	Sentiment  Label       `json:"sentiment"`
	Confidence float64     `json:"confidence"`
	Scores     ScoreVector `json:"scores"`
}

// NewPredictionRecord builds a record from a classifier result. The score
// vector is copied so later mutation of the input cannot reach the record.
func NewPredictionRecord(text string, result ClassifierResult) PredictionRecord {
	scores := make(ScoreVector, len(result.Scores))
	for label, v := range result.Scores {
		scores[label] = v
	}

	return PredictionRecord{
		ID:         NewUUID(),
		Timestamp:  time.Now(),
		Text:       text,
		Sentiment:  result.Sentiment,
		Confidence: result.Confidence,
		Scores:     scores,
	}
}

// Baseline is the reference distribution a healthy model is expected to
// produce, fixed at monitor construction.
type Baseline struct {
	Distribution   LabelDistribution `json:"distribution"`
	MeanConfidence float64           `json:"mean_confidence"`
}
