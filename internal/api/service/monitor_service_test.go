package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upkeep/internal/api/models"
)

func escalatedJob(id, techID string) models.Job {
	return models.Job{
		ID:         id,
		Title:      "Burst pipe in unit 4B",
		Status:     models.JobStatusAssigned,
		Priority:   models.JobPriorityHigh,
		AssignedTo: techID,
	}
}

func newTestMonitor(jobs ...models.Job) (*HighPriorityMonitor, *fakeSource, *fakeStore, *fakeGateway) {
	source := &fakeSource{}
	source.set(jobs...)
	store := newFakeStore(jobs...)
	gateway := &fakeGateway{}
	mon := NewHighPriorityMonitor(source, store, gateway, nil, zerolog.Nop())
	return mon, source, store, gateway
}

// Repeated sweeps over an unchanged escalated job raise exactly one alert.
func TestSweepAlertsOncePerEpisode(t *testing.T) {
	mon, _, store, gateway := newTestMonitor(escalatedJob("j1", "tech-1"))

	mon.Sweep()
	mon.Sweep()
	mon.Sweep()

	require.Equal(t, 1, gateway.count())
	assert.Equal(t, "tech-1", gateway.notified[0].UserID)
	assert.Equal(t, "j1", gateway.notified[0].N.Tag)
	assert.Equal(t, []string{"j1"}, store.alertMarks)
}

// Accepting ends the episode; a later fresh escalation alerts again.
func TestSweepReAlertsAfterEpisodeReset(t *testing.T) {
	job := escalatedJob("j1", "tech-1")
	mon, source, _, gateway := newTestMonitor(job)

	mon.Sweep()
	require.Equal(t, 1, gateway.count())

	// Technician accepts: the job no longer qualifies and its episode ends.
	job.Accepted = true
	job.AlertShown = true
	source.set(job)
	mon.Sweep()
	require.Equal(t, 1, gateway.count())

	// Re-escalation resets the episode flags; the monitor must fire again.
	job.ResetEpisode()
	source.set(job)
	mon.Sweep()
	assert.Equal(t, 2, gateway.count())
}

// A persisted AlertShown flag suppresses the alert across restarts.
func TestSweepHonorsPersistedAlertMark(t *testing.T) {
	job := escalatedJob("j1", "tech-1")
	job.AlertShown = true
	mon, _, store, gateway := newTestMonitor(job)

	mon.Sweep()

	assert.Zero(t, gateway.count())
	assert.Empty(t, store.alertMarks)
}

func TestSweepIgnoresNonEscalatedJobs(t *testing.T) {
	cases := []models.Job{
		{ID: "low", Status: models.JobStatusAssigned, AssignedTo: "t1", Priority: models.JobPriorityLow},
		{ID: "unassigned-high", Status: models.JobStatusUnassigned, Priority: models.JobPriorityHigh},
		{ID: "in-progress-high", Status: models.JobStatusInProgress, AssignedTo: "t1", Priority: models.JobPriorityHigh},
		{ID: "accepted", Status: models.JobStatusAssigned, AssignedTo: "t1", Priority: models.JobPriorityHigh, Accepted: true},
	}
	mon, _, _, gateway := newTestMonitor(cases...)

	mon.Sweep()

	assert.Zero(t, gateway.count())
}

// Alert-mark persistence failure is tolerated: the in-memory episode still
// suppresses repeats for this session.
func TestSweepSurvivesMarkFailure(t *testing.T) {
	source := &fakeSource{}
	source.set(escalatedJob("ghost", "tech-1"))
	store := newFakeStore() // job missing from store, MarkAlertShown errors
	gateway := &fakeGateway{}
	mon := NewHighPriorityMonitor(source, store, gateway, nil, zerolog.Nop())

	mon.Sweep()
	mon.Sweep()

	assert.Equal(t, 1, gateway.count())
}

func TestCurrentAlertsFiltersByCaller(t *testing.T) {
	mine := escalatedJob("j1", "tech-1")
	other := escalatedJob("j2", "tech-2")
	accepted := escalatedJob("j3", "tech-1")
	accepted.Accepted = true
	mon, _, _, _ := newTestMonitor(mine, other, accepted)

	alerts := mon.CurrentAlerts("tech-1")

	require.Len(t, alerts, 1)
	assert.Equal(t, "j1", alerts[0].ID)
	assert.Empty(t, mon.CurrentAlerts("tech-9"))
}

func TestMonitorStartStopWiresBusTrigger(t *testing.T) {
	source := &fakeSource{}
	changeBus := &fakeBus{}
	mon := NewHighPriorityMonitor(source, newFakeStore(), &fakeGateway{}, changeBus, zerolog.Nop())

	require.NoError(t, mon.Start())
	mon.Stop()

	changeBus.mu.Lock()
	defer changeBus.mu.Unlock()
	assert.Equal(t, 1, changeBus.unsubCalls)
}
