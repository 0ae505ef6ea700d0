package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
	"upkeep/internal/notify"
)

const (
	// Minimum interval between two effective remote fetches. Bursts of
	// change signals inside the window collapse into one load.
	defaultDebounce = time.Second

	// Safety-net poll against missed push events.
	defaultSyncPoll = 10 * time.Second
)

// SyncEngine keeps the in-memory job set consistent with the authoritative
// store and mirrors it into the local cache. Three independent producers
// (row-change push, the manual jobs-changed signal, a coarse timer) feed one
// consumer goroutine, so concurrent triggers cannot race each other into
// parallel loads.
type SyncEngine struct {
	store   JobStore
	cache   JobCache
	bus     ChangeBus
	gateway Notifier
	logger  zerolog.Logger

	debounce   time.Duration
	pollPeriod time.Duration
	now        func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	trigger chan struct{}
	unsubs  []func() error

	mu         sync.RWMutex
	jobs       []models.Job
	lastFetch  time.Time
	loadedOnce bool
	active     bool
}

func NewSyncEngine(store JobStore, cache JobCache, changeBus ChangeBus, gateway Notifier, logger zerolog.Logger) *SyncEngine {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyncEngine{
		store:      store,
		cache:      cache,
		bus:        changeBus,
		gateway:    gateway,
		logger:     logger,
		debounce:   defaultDebounce,
		pollPeriod: defaultSyncPoll,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		trigger:    make(chan struct{}, 1),
		active:     true,
	}
}

// Start subscribes the trigger sources and launches the consumer loop.
func (slf *SyncEngine) Start() error {
	if slf.bus != nil {
		unsub, err := slf.bus.SubscribeJobsChanged(slf.Signal)
		if err != nil {
			return err
		}
		slf.unsubs = append(slf.unsubs, unsub)

		unsub, err = slf.bus.SubscribeRowChanges(func(string, models.Job) { slf.Signal() })
		if err != nil {
			slf.teardownSubscriptions()
			return err
		}
		slf.unsubs = append(slf.unsubs, unsub)
	}

	slf.wg.Add(1)
	go slf.run()
	slf.logger.Info().Dur("debounce", slf.debounce).Dur("poll", slf.pollPeriod).Msg("Job sync engine started")
	return nil
}

// Stop tears everything down synchronously: after it returns, no further
// load will touch shared state.
func (slf *SyncEngine) Stop() {
	slf.mu.Lock()
	slf.active = false
	slf.mu.Unlock()

	slf.teardownSubscriptions()
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("Job sync engine stopped")
}

func (slf *SyncEngine) teardownSubscriptions() {
	for _, unsub := range slf.unsubs {
		if err := unsub(); err != nil {
			slf.logger.Warn().Err(err).Msg("Error unsubscribing sync trigger")
		}
	}
	slf.unsubs = nil
}

// Signal requests a reconciling load. Non-blocking: while one request is
// already pending, further signals coalesce into it.
func (slf *SyncEngine) Signal() {
	select {
	case slf.trigger <- struct{}{}:
	default:
	}
}

func (slf *SyncEngine) run() {
	defer slf.wg.Done()

	// Initial load before entering the loop
	slf.Load()

	ticker := time.NewTicker(slf.pollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-slf.ctx.Done():
			return
		case <-slf.trigger:
			slf.Load()
		case <-ticker.C:
			slf.Load()
		}
	}
}

// Load reconciles with the authoritative store and returns the current
// synced set. It never fails to the caller: on a remote error it serves the
// last known good state, falling back to the cache mirror when the session
// has no state yet. Calls inside the debounce window skip the remote fetch.
func (slf *SyncEngine) Load() []models.Job {
	slf.mu.Lock()
	if !slf.active {
		slf.mu.Unlock()
		return nil
	}
	if slf.now().Sub(slf.lastFetch) < slf.debounce {
		out := snapshot(slf.jobs)
		slf.mu.Unlock()
		return out
	}
	slf.lastFetch = slf.now()
	slf.mu.Unlock()

	rows, err := slf.store.FindAll()
	if err != nil {
		slf.logger.Warn().Err(err).Msg("Remote job fetch failed, serving local state")
		slf.fallbackToCache()
		return slf.Jobs()
	}

	for i := range rows {
		rows[i].Normalize()
	}

	slf.mu.Lock()
	if !slf.active {
		slf.mu.Unlock()
		return nil
	}
	slf.jobs = rows
	first := !slf.loadedOnce
	slf.loadedOnce = true
	out := snapshot(rows)
	slf.mu.Unlock()

	if slf.cache != nil {
		slf.cache.WriteJobs(out)
	}
	if first {
		slf.notifyPending(out)
	}
	return out
}

// fallbackToCache seeds the in-memory set from the mirror, but only when the
// session has nothing yet: live state is always at least as fresh.
func (slf *SyncEngine) fallbackToCache() {
	if slf.cache == nil {
		return
	}
	cached, ok := slf.cache.ReadJobs()
	if !ok {
		return
	}
	slf.mu.Lock()
	if slf.active && len(slf.jobs) == 0 {
		slf.jobs = cached
	}
	slf.mu.Unlock()
}

// notifyPending runs once per session, on the first successful load: every
// high priority job that was never notification-marked gets an alert, then
// the mark is persisted. Marking after delivery means a failed mark costs a
// duplicate next session, never a lost notification.
func (slf *SyncEngine) notifyPending(jobs []models.Job) {
	for _, j := range jobs {
		if j.Priority != models.JobPriorityHigh || j.NotificationSent {
			continue
		}

		n := notify.Notification{
			Title:              "High priority job",
			Body:               j.Title,
			Priority:           models.JobPriorityHigh,
			Tag:                j.ID,
			RequireInteraction: true,
		}
		if j.AssignedTo != "" {
			slf.gateway.Notify(j.AssignedTo, n)
		} else {
			slf.gateway.Broadcast(n)
		}

		if err := slf.store.MarkNotified(j.ID); err != nil {
			slf.logger.Warn().Err(err).Str("jobID", j.ID).Msg("Failed to persist notification mark")
			continue
		}
		slf.markNotifiedLocal(j.ID)
	}
}

func (slf *SyncEngine) markNotifiedLocal(id string) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	for i := range slf.jobs {
		if slf.jobs[i].ID == id {
			slf.jobs[i].NotificationSent = true
			return
		}
	}
}

// Jobs returns a copy of the current synced set.
func (slf *SyncEngine) Jobs() []models.Job {
	slf.mu.RLock()
	defer slf.mu.RUnlock()
	return snapshot(slf.jobs)
}

// Get returns the synced record for one job.
func (slf *SyncEngine) Get(id string) (models.Job, bool) {
	slf.mu.RLock()
	defer slf.mu.RUnlock()
	for _, j := range slf.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}

// ApplyLocal replaces (or appends) one record in the in-memory set. This is
// the optimistic half of a mutation; the cache mirror is deliberately not
// touched, the next reconciling load rewrites it from remote truth.
func (slf *SyncEngine) ApplyLocal(job models.Job) {
	slf.mu.Lock()
	defer slf.mu.Unlock()
	if !slf.active {
		return
	}
	for i := range slf.jobs {
		if slf.jobs[i].ID == job.ID {
			slf.jobs[i] = job
			return
		}
	}
	slf.jobs = append(slf.jobs, job)
}

func snapshot(jobs []models.Job) []models.Job {
	out := make([]models.Job, len(jobs))
	copy(out, jobs)
	return out
}
