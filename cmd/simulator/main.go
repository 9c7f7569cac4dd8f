package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/machineinnovators/sentiment-monitor/internal/logger"
)

// Streams synthetic product-review traffic at the monitor's prediction
// endpoint. Useful for watching drift evaluation and alerting on a live
// instance without a real serving path.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	target := flag.String("target", "http://localhost:8080", "monitor base URL")
	rate := flag.Duration("rate", 500*time.Millisecond, "delay between requests")
	count := flag.Int("count", 0, "number of requests to send (0 = until interrupted)")
	seed := flag.Uint64("seed", 0, "faker seed (0 = random)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Infof("Streaming synthetic reviews to %s", *target)

	faker := gofakeit.New(*seed)
	client := &http.Client{Timeout: 10 * time.Second}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sent := 0
	ticker := time.NewTicker(*rate)
	defer ticker.Stop()

	for {
		select {
		case <-sigChan:
			logger.Infof("Interrupted after %d requests", sent)
			return nil
		case <-ticker.C:
			if err := sendReview(client, *target, reviewText(faker)); err != nil {
				logger.Warnf("Request failed: %v", err)
			}
			sent++
			if *count > 0 && sent >= *count {
				logger.Infof("Sent %d requests", sent)
				return nil
			}
		}
	}
}

func reviewText(faker *gofakeit.Faker) string {
	return fmt.Sprintf("%s %s", faker.ProductName(), faker.Sentence(faker.Number(6, 18)))
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	Result struct {
		Sentiment  string  `json:"sentiment"`
		Confidence float64 `json:"confidence"`
	} `json:"result"`
	Alerts []struct {
		Kind     string `json:"kind"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
	} `json:"alerts"`
}

func sendReview(client *http.Client, target, text string) error {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := client.Post(target+"/api/v1/predictions", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post prediction: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	logger.Debugf("Predicted %s (%.2f)", parsed.Result.Sentiment, parsed.Result.Confidence)
	for _, alert := range parsed.Alerts {
		logger.Warnf("Alert from monitor: [%s] %s: %s", alert.Severity, alert.Kind, alert.Message)
	}

	return nil
}
