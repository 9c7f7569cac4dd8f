package classifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machineinnovators/sentiment-monitor/internal/resilience"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

func TestMockClassifier_ProducesValidResults(t *testing.T) {
	mock := NewMockClassifier(MockClassifierConfig{Seed: 7})

	for i := 0; i < 50; i++ {
		result, err := mock.Predict(context.Background(), "some review text")
		require.NoError(t, err)

		assert.NoError(t, validation.ValidateResult(result))
		assert.InDelta(t, result.Confidence, result.Scores[result.Sentiment], 1e-9,
			"winning score must equal confidence")
	}
}

func TestMockClassifier_ArgmaxMatchesAtLowConfidence(t *testing.T) {
	// Base confidence below the clamp floor keeps emitted confidence
	// pinned at 0.40, where the losing scores have the most room.
	mock := NewMockClassifier(MockClassifierConfig{BaseConfidence: 0.30, Seed: 9})

	for i := 0; i < 200; i++ {
		result, err := mock.Predict(context.Background(), "ambivalent review")
		require.NoError(t, err)

		for _, label := range models.AllLabels() {
			if label == result.Sentiment {
				continue
			}
			assert.Less(t, result.Scores[label], result.Scores[result.Sentiment],
				"losing label %s must score below the winner", label)
		}
	}
}

func TestMockClassifier_DeterministicWithSeed(t *testing.T) {
	a := NewMockClassifier(MockClassifierConfig{Seed: 42})
	b := NewMockClassifier(MockClassifierConfig{Seed: 42})

	for i := 0; i < 10; i++ {
		ra, err := a.Predict(context.Background(), "text")
		require.NoError(t, err)
		rb, err := b.Predict(context.Background(), "text")
		require.NoError(t, err)

		assert.Equal(t, ra.Sentiment, rb.Sentiment)
		assert.InDelta(t, ra.Confidence, rb.Confidence, 1e-12)
	}
}

func TestMockClassifier_WeightsSkewOutput(t *testing.T) {
	mock := NewMockClassifier(MockClassifierConfig{
		Weights: models.LabelDistribution{
			models.LabelNegative: 0,
			models.LabelNeutral:  0,
			models.LabelPositive: 1,
		},
		Seed: 3,
	})

	for i := 0; i < 20; i++ {
		result, err := mock.Predict(context.Background(), "text")
		require.NoError(t, err)
		assert.Equal(t, models.LabelPositive, result.Sentiment)
	}
}

func TestMockClassifier_FailureMode(t *testing.T) {
	mock := NewMockClassifier(MockClassifierConfig{})
	mock.SetShouldFail(true, nil)

	_, err := mock.Predict(context.Background(), "text")
	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.Error(t, mock.HealthCheck(context.Background()))

	mock.SetShouldFail(false, nil)
	_, err = mock.Predict(context.Background(), "text")
	assert.NoError(t, err)
	assert.NoError(t, mock.HealthCheck(context.Background()))
}

func TestHTTPClassifier_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/predict", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"sentiment": "Positive",
			"confidence": 0.91,
			"scores": {"Negative": 0.03, "Neutral": 0.06, "Positive": 0.91}
		}`))
	}))
	defer srv.Close()

	cls := NewHTTPClassifier(HTTPClassifierConfig{Endpoint: srv.URL, Model: "test-model"})

	result, err := cls.Predict(context.Background(), "love it")
	require.NoError(t, err)

	assert.Equal(t, models.LabelPositive, result.Sentiment)
	assert.InDelta(t, 0.91, result.Confidence, 1e-9)
	assert.InDelta(t, 0.06, result.Scores[models.LabelNeutral], 1e-9)
}

func TestHTTPClassifier_RejectsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<!doctype html>`},
		{name: "unknown label", body: `{"sentiment": "Great", "confidence": 0.9, "scores": {"Negative": 0.05, "Neutral": 0.05, "Positive": 0.9}}`},
		{name: "scores do not sum", body: `{"sentiment": "Positive", "confidence": 0.9, "scores": {"Negative": 0.4, "Neutral": 0.4, "Positive": 0.9}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cls := NewHTTPClassifier(HTTPClassifierConfig{Endpoint: srv.URL})

			_, err := cls.Predict(context.Background(), "text")
			assert.ErrorIs(t, err, ErrInvalidResponse)
		})
	}
}

func TestHTTPClassifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cls := NewHTTPClassifier(HTTPClassifierConfig{Endpoint: srv.URL})

	_, err := cls.Predict(context.Background(), "text")
	assert.ErrorIs(t, err, ErrPredictionFailed)
}

func TestHTTPClassifier_HealthCheck(t *testing.T) {
	var healthy bool
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		mu.Lock()
		defer mu.Unlock()
		if healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	cls := NewHTTPClassifier(HTTPClassifierConfig{Endpoint: srv.URL})

	assert.Error(t, cls.HealthCheck(context.Background()))

	mu.Lock()
	healthy = true
	mu.Unlock()
	assert.NoError(t, cls.HealthCheck(context.Background()))
}

// flakyClassifier fails a fixed number of times before recovering.
type flakyClassifier struct {
	failures int
	calls    int
}

func (f *flakyClassifier) Predict(ctx context.Context, text string) (models.ClassifierResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return models.ClassifierResult{}, ErrPredictionFailed
	}
	return models.ClassifierResult{
		Sentiment:  models.LabelNeutral,
		Confidence: 0.7,
		Scores: models.ScoreVector{
			models.LabelNegative: 0.15,
			models.LabelNeutral:  0.7,
			models.LabelPositive: 0.15,
		},
	}, nil
}

func (f *flakyClassifier) HealthCheck(ctx context.Context) error { return nil }
func (f *flakyClassifier) Close() error                          { return nil }

func TestResilientClassifier_RetriesTransientFailures(t *testing.T) {
	flaky := &flakyClassifier{failures: 2}
	cls := NewResilientClassifier(ResilientClassifierConfig{
		Classifier:    flaky,
		MaxFailures:   5,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	})

	result, err := cls.Predict(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, models.LabelNeutral, result.Sentiment)
	assert.Equal(t, 3, flaky.calls)
}

func TestResilientClassifier_CircuitOpensOnPersistentFailure(t *testing.T) {
	flaky := &flakyClassifier{failures: 1000}
	cls := NewResilientClassifier(ResilientClassifierConfig{
		Classifier:    flaky,
		MaxFailures:   2,
		Timeout:       time.Minute,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	})

	_, err := cls.Predict(context.Background(), "text")
	require.Error(t, err)
	_, err = cls.Predict(context.Background(), "text")
	require.Error(t, err)

	assert.Equal(t, resilience.StateOpen, cls.CircuitState())

	// Once open, the wrapped classifier is no longer called.
	callsBefore := flaky.calls
	_, err = cls.Predict(context.Background(), "text")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, callsBefore, flaky.calls)
}

func TestResilientClassifier_ContextCancellation(t *testing.T) {
	flaky := &flakyClassifier{failures: 1000}
	cls := NewResilientClassifier(ResilientClassifierConfig{
		Classifier:    flaky,
		MaxFailures:   100,
		RetryAttempts: 5,
		RetryDelay:    time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := cls.Predict(ctx, "text")
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("prediction did not honor context cancellation")
	}
}
