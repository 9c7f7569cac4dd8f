package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/machineinnovators/sentiment-monitor/internal/logger"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

// HTTPClassifier calls an external inference service that hosts the
// pretrained sentiment model.
type HTTPClassifier struct {
	client   *http.Client
	endpoint string
	model    string
}

type HTTPClassifierConfig struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

func NewHTTPClassifier(cfg HTTPClassifierConfig) *HTTPClassifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &HTTPClassifier{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
	}
}

type predictRequest struct {
	Text  string `json:"text"`
	Model string `json:"model,omitempty"`
}

// predictResponse matches the inference service's prediction payload
type predictResponse struct {
	Sentiment  string             `json:"sentiment"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

func (c *HTTPClassifier) Predict(ctx context.Context, text string) (models.ClassifierResult, error) {
	url := fmt.Sprintf("%s/predict", c.endpoint)

	payload, err := json.Marshal(predictRequest{Text: text, Model: c.model})
	if err != nil {
		return models.ClassifierResult{}, fmt.Errorf("%w: failed to encode request: %v", ErrPredictionFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return models.ClassifierResult{}, fmt.Errorf("%w: failed to create request: %v", ErrPredictionFailed, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	logger.WithModel(c.model).Debugf("Requesting prediction from %s", url)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.ClassifierResult{}, ErrTimeout
		}
		return models.ClassifierResult{}, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ClassifierResult{}, fmt.Errorf("%w: unexpected status code %d", ErrPredictionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ClassifierResult{}, fmt.Errorf("%w: failed to read response body: %v", ErrPredictionFailed, err)
	}

	var predResp predictResponse
	if err := json.Unmarshal(body, &predResp); err != nil {
		return models.ClassifierResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	result := c.convertResponse(&predResp)

	if err := validation.ValidateResult(result); err != nil {
		return models.ClassifierResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return result, nil
}

func (c *HTTPClassifier) convertResponse(resp *predictResponse) models.ClassifierResult {
	scores := make(models.ScoreVector, len(resp.Scores))
	for label, score := range resp.Scores {
		scores[models.Label(label)] = score
	}

	return models.ClassifierResult{
		Sentiment:  models.Label(resp.Sentiment),
		Confidence: resp.Confidence,
		Scores:     scores,
	}
}

func (c *HTTPClassifier) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *HTTPClassifier) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
