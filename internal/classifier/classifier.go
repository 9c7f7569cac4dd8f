package classifier

import (
	"context"
	"errors"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

var (
	ErrPredictionFailed = errors.New("prediction failed")
	ErrTimeout          = errors.New("prediction timeout")
	ErrInvalidResponse  = errors.New("invalid response from inference service")
)

// Classifier is the injected capability producing sentiment predictions.
// The monitor treats it as a black box; it validates the result's shape
// on ingestion but never reaches into the model.
type Classifier interface {
	// Predict classifies a single text
	Predict(ctx context.Context, text string) (models.ClassifierResult, error)

	// HealthCheck verifies the backing model/service is reachable
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the classifier
	Close() error
}
