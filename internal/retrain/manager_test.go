package retrain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machineinnovators/sentiment-monitor/pkg/models"
)

type stubMonitor struct {
	decision *models.RetrainDecision
	markedAt []time.Time
}

func (s *stubMonitor) ShouldRetrain(now time.Time) *models.RetrainDecision {
	return s.decision
}

func (s *stubMonitor) MarkRetrained(t time.Time) {
	s.markedAt = append(s.markedAt, t)
}

func TestManager_SkipsWhenNotNeeded(t *testing.T) {
	stub := &stubMonitor{decision: &models.RetrainDecision{
		ShouldRetrain: false,
		Reason:        models.RetrainReasonNotNeeded,
	}}
	mgr := NewManager(stub, nil)

	run := mgr.CheckAndRetrain(time.Now())

	assert.Equal(t, models.RetrainRunSkipped, run.Status)
	assert.Equal(t, models.RetrainReasonNotNeeded, run.Reason)
	assert.Empty(t, run.ModelVersion)
	assert.Empty(t, stub.markedAt, "staleness clock must not move on a skipped run")
}

func TestManager_RunsWhenTriggered(t *testing.T) {
	stub := &stubMonitor{decision: &models.RetrainDecision{
		ShouldRetrain:  true,
		Reason:         models.RetrainReasonCriticalAlerts,
		CriticalAlerts: 3,
	}}
	mgr := NewManager(stub, nil)
	now := time.Now()

	run := mgr.CheckAndRetrain(now)

	assert.Equal(t, models.RetrainRunCompleted, run.Status)
	assert.Equal(t, models.RetrainReasonCriticalAlerts, run.Reason)
	assert.Equal(t, "v"+now.Format("20060102_150405"), run.ModelVersion)
	assert.InDelta(t, 0.75, run.Metrics["accuracy_after"], 1e-9)

	require.Len(t, stub.markedAt, 1)
	assert.Equal(t, now, stub.markedAt[0])
}

func TestManager_History(t *testing.T) {
	stub := &stubMonitor{decision: &models.RetrainDecision{
		ShouldRetrain: false,
		Reason:        models.RetrainReasonNotNeeded,
	}}
	mgr := NewManager(stub, nil)

	mgr.CheckAndRetrain(time.Now())
	stub.decision = &models.RetrainDecision{
		ShouldRetrain: true,
		Reason:        models.RetrainReasonStaleness,
	}
	mgr.CheckAndRetrain(time.Now())

	history := mgr.History()
	require.Len(t, history, 2)
	assert.Equal(t, models.RetrainRunSkipped, history[0].Status)
	assert.Equal(t, models.RetrainRunCompleted, history[1].Status)
}
