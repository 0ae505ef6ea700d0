package service

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upkeep/internal/api/models"
)

// newTestEngine builds an engine with a controllable clock and no goroutines
// running; tests drive Load directly.
func newTestEngine(store JobStore, jobCache JobCache, changeBus ChangeBus, gateway Notifier) (*SyncEngine, *time.Time) {
	engine := NewSyncEngine(store, jobCache, changeBus, gateway, zerolog.Nop())
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }
	return engine, &now
}

func TestLoadDebounce(t *testing.T) {
	store := newFakeStore(models.Job{ID: "j1", Status: models.JobStatusUnassigned, Priority: models.JobPriorityLow})
	engine, now := newTestEngine(store, &fakeCache{}, nil, &fakeGateway{})

	first := engine.Load()
	require.Len(t, first, 1)
	assert.Equal(t, 1, store.calls())

	// Inside the window: served from memory, no second fetch
	second := engine.Load()
	assert.Len(t, second, 1)
	assert.Equal(t, 1, store.calls())

	*now = now.Add(2 * time.Second)
	engine.Load()
	assert.Equal(t, 2, store.calls())
}

func TestLoadNormalizesPartialRows(t *testing.T) {
	store := newFakeStore(models.Job{ID: "j1", Status: "weird", Priority: ""})
	engine, _ := newTestEngine(store, &fakeCache{}, nil, &fakeGateway{})

	jobs := engine.Load()
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobStatusUnassigned, jobs[0].Status)
	assert.Equal(t, models.JobPriorityMedium, jobs[0].Priority)
}

func TestLoadWritesThroughToCache(t *testing.T) {
	store := newFakeStore(
		models.Job{ID: "j1", Status: models.JobStatusUnassigned, Priority: models.JobPriorityHigh},
		models.Job{ID: "j2", Status: models.JobStatusUnassigned, Priority: models.JobPriorityLow},
	)
	jobCache := &fakeCache{}
	engine, _ := newTestEngine(store, jobCache, nil, &fakeGateway{})

	engine.Load()
	cached, ok := jobCache.ReadJobs()
	require.True(t, ok)
	assert.Len(t, cached, 2)
	assert.Equal(t, 1, jobCache.writes)
}

func TestLoadFallsBackToCacheOnRemoteError(t *testing.T) {
	store := newFakeStore()
	store.failFindAll = true
	jobCache := &fakeCache{}
	jobCache.WriteJobs([]models.Job{{ID: "cached", Status: models.JobStatusAssigned, AssignedTo: "tech-1", Priority: models.JobPriorityLow}})

	engine, _ := newTestEngine(store, jobCache, nil, &fakeGateway{})

	jobs := engine.Load()
	require.Len(t, jobs, 1)
	assert.Equal(t, "cached", jobs[0].ID)
}

func TestLoadKeepsLiveStateOverCacheOnRemoteError(t *testing.T) {
	store := newFakeStore(models.Job{ID: "live", Status: models.JobStatusUnassigned, Priority: models.JobPriorityLow})
	jobCache := &fakeCache{}
	engine, now := newTestEngine(store, jobCache, nil, &fakeGateway{})

	engine.Load()

	// Stale mirror must not clobber the state we already synced
	jobCache.WriteJobs([]models.Job{{ID: "stale"}})
	store.failFindAll = true
	*now = now.Add(2 * time.Second)

	jobs := engine.Load()
	require.Len(t, jobs, 1)
	assert.Equal(t, "live", jobs[0].ID)
}

func TestFirstLoadNotifiesUnmarkedHighPriority(t *testing.T) {
	store := newFakeStore(
		models.Job{ID: "j1", Status: models.JobStatusAssigned, AssignedTo: "tech-1", Priority: models.JobPriorityHigh},
		models.Job{ID: "j2", Status: models.JobStatusAssigned, AssignedTo: "tech-2", Priority: models.JobPriorityHigh, NotificationSent: true},
		models.Job{ID: "j3", Status: models.JobStatusUnassigned, Priority: models.JobPriorityHigh},
		models.Job{ID: "j4", Status: models.JobStatusAssigned, AssignedTo: "tech-1", Priority: models.JobPriorityLow},
	)
	gateway := &fakeGateway{}
	engine, now := newTestEngine(store, &fakeCache{}, nil, gateway)

	engine.Load()

	// j1 targeted, j3 broadcast (no owner yet), j2 already marked, j4 not high
	require.Equal(t, 1, gateway.count())
	assert.Equal(t, "tech-1", gateway.notified[0].UserID)
	assert.Equal(t, "j1", gateway.notified[0].N.Tag)
	require.Len(t, gateway.broadcasts, 1)
	assert.Equal(t, "j3", gateway.broadcasts[0].Tag)
	assert.ElementsMatch(t, []string{"j1", "j3"}, store.notified)

	// The sweep is once per session, not once per load
	*now = now.Add(2 * time.Second)
	engine.Load()
	assert.Equal(t, 1, gateway.count())
	assert.Len(t, gateway.broadcasts, 1)
}

func TestSignalCoalesces(t *testing.T) {
	engine, _ := newTestEngine(newFakeStore(), &fakeCache{}, nil, &fakeGateway{})

	// Never blocks, even with nothing draining the channel
	for i := 0; i < 10; i++ {
		engine.Signal()
	}
	assert.Len(t, engine.trigger, 1)
}

func TestStopTearsDownSynchronously(t *testing.T) {
	store := newFakeStore()
	changeBus := &fakeBus{}
	engine, _ := newTestEngine(store, &fakeCache{}, changeBus, &fakeGateway{})

	require.NoError(t, engine.Start())
	engine.Stop()

	assert.Equal(t, 2, changeBus.unsubCalls)

	// A straggling load after teardown must not touch state
	calls := store.calls()
	assert.Nil(t, engine.Load())
	assert.Equal(t, calls, store.calls())
}

func TestApplyLocalReplacesAndAppends(t *testing.T) {
	store := newFakeStore(models.Job{ID: "j1", Status: models.JobStatusUnassigned, Priority: models.JobPriorityLow})
	engine, _ := newTestEngine(store, &fakeCache{}, nil, &fakeGateway{})
	engine.Load()

	updated := models.Job{ID: "j1", Status: models.JobStatusAssigned, AssignedTo: "tech-1", Priority: models.JobPriorityLow}
	engine.ApplyLocal(updated)

	got, ok := engine.Get("j1")
	require.True(t, ok)
	assert.Equal(t, models.JobStatusAssigned, got.Status)

	engine.ApplyLocal(models.Job{ID: "j2"})
	assert.Len(t, engine.Jobs(), 2)
}
