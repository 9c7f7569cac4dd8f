package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/machineinnovators/sentiment-monitor/api"
	"github.com/machineinnovators/sentiment-monitor/internal/classifier"
	"github.com/machineinnovators/sentiment-monitor/internal/events"
	"github.com/machineinnovators/sentiment-monitor/internal/logger"
	"github.com/machineinnovators/sentiment-monitor/internal/metrics"
	"github.com/machineinnovators/sentiment-monitor/internal/monitor"
	"github.com/machineinnovators/sentiment-monitor/internal/resilience"
	"github.com/machineinnovators/sentiment-monitor/internal/retrain"
	"github.com/machineinnovators/sentiment-monitor/pkg/config"
	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	demo := flag.Bool("demo", false, "run a drift demo against the mock classifier and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()

	eventLogger := events.NewEventLogger(bus.SubscribeAll())
	eventLogger.Start()
	defer eventLogger.Stop()

	publisher := events.NewPublisher(bus, cfg.Classifier.Model)

	cls, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	defer cls.Close()

	mon, err := monitor.New(cfg, cls, publisher)
	if err != nil {
		return fmt.Errorf("failed to build monitor: %w", err)
	}

	retrainMgr := retrain.NewManager(mon, publisher)

	if *demo {
		return runDriftDemo(mon, retrainMgr, cls)
	}

	server := api.NewServer(cfg, mon, retrainMgr)

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func buildClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch cfg.Classifier.Type {
	case "http":
		base := classifier.NewHTTPClassifier(classifier.HTTPClassifierConfig{
			Endpoint: cfg.Classifier.Endpoint,
			Model:    cfg.Classifier.Model,
			Timeout:  cfg.Classifier.Timeout,
		})
		return classifier.NewResilientClassifier(classifier.ResilientClassifierConfig{
			Classifier:    base,
			MaxFailures:   cfg.Classifier.CircuitBreaker.MaxFailures,
			Timeout:       cfg.Classifier.CircuitBreaker.Timeout,
			RetryAttempts: cfg.Classifier.RetryAttempts,
			OnStateChange: func(name string, from, to resilience.State) {
				logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
				metrics.Get().SetCircuitState(int(to))
			},
		}), nil
	case "mock":
		return classifier.NewMockClassifier(classifier.MockClassifierConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown classifier type %q", cfg.Classifier.Type)
	}
}

// runDriftDemo streams synthetic traffic through three phases: healthy,
// drifted towards positive, then low confidence. It prints the summary
// report and retrain decision after each phase.
func runDriftDemo(mon *monitor.Monitor, retrainMgr *retrain.Manager, cls classifier.Classifier) error {
	mock, ok := cls.(*classifier.MockClassifier)
	if !ok {
		return fmt.Errorf("demo requires classifier type mock")
	}

	ctx := context.Background()

	logger.Info("=== Phase 1: Balanced traffic ===")
	if err := streamPredictions(ctx, mon, mock, 40); err != nil {
		return err
	}
	printReport(mon)

	logger.Info("=== Phase 2: Positive-skewed traffic (distribution drift) ===")
	mock.SetWeights(models.LabelDistribution{
		models.LabelNegative: 0.05,
		models.LabelNeutral:  0.10,
		models.LabelPositive: 0.85,
	})
	if err := streamPredictions(ctx, mon, mock, 80); err != nil {
		return err
	}
	printReport(mon)

	logger.Info("=== Phase 3: Low-confidence traffic ===")
	mock.SetBaseConfidence(0.50)
	if err := streamPredictions(ctx, mon, mock, 60); err != nil {
		return err
	}
	printReport(mon)

	logger.Info("=== Retrain check ===")
	run := retrainMgr.CheckAndRetrain(time.Now())
	logger.Infof("Retrain run: status=%s reason=%s version=%s", run.Status, run.Reason, run.ModelVersion)

	// Give the event logger a moment to drain.
	time.Sleep(100 * time.Millisecond)

	logger.Info("Demo completed")
	return nil
}

func streamPredictions(ctx context.Context, mon *monitor.Monitor, cls classifier.Classifier, count int) error {
	for i := 0; i < count; i++ {
		result, err := cls.Predict(ctx, fmt.Sprintf("demo review %d", i))
		if err != nil {
			return fmt.Errorf("demo prediction failed: %w", err)
		}
		if _, err := mon.LogPrediction(fmt.Sprintf("demo review %d", i), result); err != nil {
			return fmt.Errorf("demo log failed: %w", err)
		}
	}
	return nil
}

func printReport(mon *monitor.Monitor) {
	report := mon.GetSummaryReport()

	logger.Infof("Window: %d samples, mean confidence %.3f (trend: %s)",
		report.SampleCount, report.MeanConfidence, report.ConfidenceTrend)

	if report.Drift != nil {
		logger.Infof("Drift: status=%s metric=%s distance=%.4f confidence_delta=%.4f",
			report.Drift.Status, report.Drift.Metric, report.Drift.Distance, report.Drift.ConfidenceDelta)
	}

	logger.Infof("Alerts so far: %d", report.TotalAlerts)
	for _, alert := range report.RecentAlerts {
		logger.Infof("  [%s] %s: %s", alert.Severity, alert.Kind, alert.Message)
	}
}
