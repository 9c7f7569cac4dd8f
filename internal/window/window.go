package window

import (
	"fmt"
	"sync"
	"time"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
	"github.com/machineinnovators/sentiment-monitor/pkg/validation"
)

type Config struct {
	Capacity int
	MaxAge   time.Duration
}

// Window is a bounded FIFO store of prediction records. Appends are
// serialized so capacity and age enforcement stay atomic; readers work on
// snapshots and never hold the lock during analysis.
type Window struct {
	config  Config
	records []models.PredictionRecord
	mu      sync.Mutex
}

func New(cfg Config) *Window {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 100
	}

	return &Window{
		config:  cfg,
		records: make([]models.PredictionRecord, 0, cfg.Capacity),
	}
}

// Append validates the record and inserts it, evicting the oldest entries
// that exceed capacity or max age. A validation failure leaves the window
// untouched.
func (w *Window) Append(record models.PredictionRecord) error {
	if err := validation.ValidateResult(models.ClassifierResult{
		Sentiment:  record.Sentiment,
		Confidence: record.Confidence,
		Scores:     record.Scores,
	}); err != nil {
		return fmt.Errorf("window append: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, record)
	w.evictLocked(record.Timestamp)
	return nil
}

// evictLocked enforces the capacity and age bounds. Records are kept in
// arrival order, so eviction always removes a prefix.
func (w *Window) evictLocked(newest time.Time) {
	if n := len(w.records); n > w.config.Capacity {
		w.records = append(w.records[:0:0], w.records[n-w.config.Capacity:]...)
	}

	if w.config.MaxAge <= 0 {
		return
	}

	cutoff := newest.Add(-w.config.MaxAge)
	firstFresh := 0
	for firstFresh < len(w.records) && w.records[firstFresh].Timestamp.Before(cutoff) {
		firstFresh++
	}
	if firstFresh > 0 {
		w.records = append(w.records[:0:0], w.records[firstFresh:]...)
	}
}

// Snapshot returns a copy of the current contents in arrival order.
func (w *Window) Snapshot() []models.PredictionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	snapshot := make([]models.PredictionRecord, len(w.records))
	copy(snapshot, w.records)
	return snapshot
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}

func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.records = w.records[:0]
}
