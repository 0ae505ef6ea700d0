package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
	"upkeep/internal/notify"
)

const defaultMonitorPoll = 10 * time.Second

// JobSource provides the reconciled job set. *SyncEngine satisfies it.
type JobSource interface {
	Load() []models.Job
}

// AlertMarker persists the alert bookkeeping flag. *repo.JobRepository
// satisfies it.
type AlertMarker interface {
	MarkAlertShown(id string) error
}

// HighPriorityMonitor watches the synced set for jobs that need urgent
// attention (high priority, assigned, not yet accepted) and raises exactly
// one alert per escalation episode. Dedup wins over delivery: a job is
// marked shown the instant the monitor decides to alert, before any delivery
// I/O, so an interleaved sweep can never double-fire.
type HighPriorityMonitor struct {
	source  JobSource
	store   AlertMarker
	gateway Notifier
	bus     ChangeBus
	logger  zerolog.Logger

	tick time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	trigger chan struct{}
	unsubs  []func() error

	mu    sync.Mutex
	shown map[string]bool
}

func NewHighPriorityMonitor(source JobSource, store AlertMarker, gateway Notifier, changeBus ChangeBus, logger zerolog.Logger) *HighPriorityMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &HighPriorityMonitor{
		source:  source,
		store:   store,
		gateway: gateway,
		bus:     changeBus,
		logger:  logger,
		tick:    defaultMonitorPoll,
		ctx:     ctx,
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
		shown:   make(map[string]bool),
	}
}

func (slf *HighPriorityMonitor) Start() error {
	if slf.bus != nil {
		unsub, err := slf.bus.SubscribeJobsChanged(slf.Signal)
		if err != nil {
			return err
		}
		slf.unsubs = append(slf.unsubs, unsub)
	}

	slf.wg.Add(1)
	go slf.run()
	slf.logger.Info().Dur("tick", slf.tick).Msg("High priority monitor started")
	return nil
}

func (slf *HighPriorityMonitor) Stop() {
	for _, unsub := range slf.unsubs {
		if err := unsub(); err != nil {
			slf.logger.Warn().Err(err).Msg("Error unsubscribing monitor trigger")
		}
	}
	slf.unsubs = nil
	slf.cancel()
	slf.wg.Wait()
	slf.logger.Info().Msg("High priority monitor stopped")
}

// Signal requests a sweep outside the regular tick. Non-blocking.
func (slf *HighPriorityMonitor) Signal() {
	select {
	case slf.trigger <- struct{}{}:
	default:
	}
}

func (slf *HighPriorityMonitor) run() {
	defer slf.wg.Done()

	slf.Sweep()

	ticker := time.NewTicker(slf.tick)
	defer ticker.Stop()

	for {
		select {
		case <-slf.ctx.Done():
			return
		case <-slf.trigger:
			slf.Sweep()
		case <-ticker.C:
			slf.Sweep()
		}
	}
}

// CurrentAlerts returns the jobs that currently demand userID's attention,
// in synced order.
func (slf *HighPriorityMonitor) CurrentAlerts(userID string) []models.Job {
	jobs := slf.source.Load()
	alerts := make([]models.Job, 0)
	for _, j := range jobs {
		if j.NeedsAttention(userID) {
			alerts = append(alerts, j)
		}
	}
	return alerts
}

// Sweep recomputes the escalated set and alerts every job not yet covered
// by its current episode.
func (slf *HighPriorityMonitor) Sweep() {
	jobs := slf.source.Load()

	slf.mu.Lock()
	escalated := make(map[string]bool, len(jobs))
	var due []models.Job
	for _, j := range jobs {
		if !j.Escalated() {
			continue
		}
		escalated[j.ID] = true
		if j.AlertShown || slf.shown[j.ID] {
			continue
		}
		// Mark before delivery: the dedup decision must not sit on the far
		// side of an awaited gap another sweep could slip through.
		slf.shown[j.ID] = true
		due = append(due, j)
	}
	// Episodes end when the job stops qualifying (accepted, reassigned,
	// de-escalated); forget them so a fresh escalation alerts again.
	for id := range slf.shown {
		if !escalated[id] {
			delete(slf.shown, id)
		}
	}
	slf.mu.Unlock()

	for _, j := range due {
		slf.gateway.Notify(j.AssignedTo, notify.Notification{
			Title:              "Job needs your attention",
			Body:               j.Title,
			Priority:           models.JobPriorityHigh,
			Tag:                j.ID,
			RequireInteraction: true,
		})
		if err := slf.store.MarkAlertShown(j.ID); err != nil {
			slf.logger.Warn().Err(err).Str("jobID", j.ID).Msg("Failed to persist alert mark")
		}
	}
}
