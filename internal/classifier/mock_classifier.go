package classifier

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

// MockClassifier produces synthetic predictions for tests and demos. Its
// label weights and confidence band can be shifted mid-run to simulate a
// drifting or degrading model.
type MockClassifier struct {
	weights        models.LabelDistribution
	baseConfidence float64
	variance       float64
	shouldFail     bool
	failureError   error
	rng            *rand.Rand
	mu             sync.Mutex
}

type MockClassifierConfig struct {
	Weights        models.LabelDistribution
	BaseConfidence float64
	Variance       float64
	Seed           int64
}

func NewMockClassifier(cfg MockClassifierConfig) *MockClassifier {
	weights := cfg.Weights
	if weights == nil {
		weights = models.LabelDistribution{
			models.LabelNegative: 0.33,
			models.LabelNeutral:  0.34,
			models.LabelPositive: 0.33,
		}
	}

	baseConfidence := cfg.BaseConfidence
	if baseConfidence == 0 {
		baseConfidence = 0.80
	}

	variance := cfg.Variance
	if variance == 0 {
		variance = 0.10
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}

	return &MockClassifier{
		weights:        weights,
		baseConfidence: baseConfidence,
		variance:       variance,
		rng:            rand.New(rand.NewSource(seed)),
	}
}

func (c *MockClassifier) SetWeights(weights models.LabelDistribution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.weights = weights
}

func (c *MockClassifier) SetBaseConfidence(confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseConfidence = confidence
}

func (c *MockClassifier) SetShouldFail(shouldFail bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shouldFail = shouldFail
	c.failureError = err
}

func (c *MockClassifier) Predict(ctx context.Context, text string) (models.ClassifierResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shouldFail {
		if c.failureError != nil {
			return models.ClassifierResult{}, c.failureError
		}
		return models.ClassifierResult{}, ErrPredictionFailed
	}

	sentiment := c.pickLabel()
	confidence := c.baseConfidence + (c.rng.Float64()*2-1)*c.variance

	if confidence < 0.40 {
		confidence = 0.40
	}
	if confidence > 0.99 {
		confidence = 0.99
	}

	// Split the remainder so both losing scores stay strictly below the
	// winner and the argmax matches Sentiment.
	remainder := 1 - confidence
	lo := math.Max(0, remainder-confidence+1e-9)
	hi := math.Min(remainder, confidence)
	split := lo + c.rng.Float64()*(hi-lo)

	scores := make(models.ScoreVector, 3)
	scores[sentiment] = confidence
	rest := 0
	for _, label := range models.AllLabels() {
		if label == sentiment {
			continue
		}
		if rest == 0 {
			scores[label] = split
		} else {
			scores[label] = remainder - split
		}
		rest++
	}

	return models.ClassifierResult{
		Sentiment:  sentiment,
		Confidence: confidence,
		Scores:     scores,
	}, nil
}

func (c *MockClassifier) pickLabel() models.Label {
	roll := c.rng.Float64() * c.weights.Sum()
	var cumulative float64
	for _, label := range models.AllLabels() {
		cumulative += c.weights[label]
		if roll < cumulative {
			return label
		}
	}
	return models.LabelNeutral
}

func (c *MockClassifier) HealthCheck(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.shouldFail {
		return ErrPredictionFailed
	}
	return nil
}

func (c *MockClassifier) Close() error {
	return nil
}
