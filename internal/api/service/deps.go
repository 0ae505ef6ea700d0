package service

import (
	"upkeep/internal/api/models"
	"upkeep/internal/notify"
)

// JobStore is the authoritative record store (Postgres in production).
// *repo.JobRepository satisfies it.
type JobStore interface {
	FindAll() ([]models.Job, error)
	FindByID(id string) (models.Job, error)
	Insert(job *models.Job) error
	Save(job *models.Job) error
	MarkNotified(id string) error
	MarkAlertShown(id string) error
}

// JobCache mirrors the synced job set for resilience and fast reads.
// *cache.Store satisfies it.
type JobCache interface {
	ReadJobs() ([]models.Job, bool)
	WriteJobs(jobs []models.Job)
}

// ChangeBus carries the cross-component signals. *bus.Bus satisfies it.
type ChangeBus interface {
	PublishJobsChanged()
	SubscribeJobsChanged(fn func()) (func() error, error)
	SubscribeRowChanges(fn func(op string, job models.Job)) (func() error, error)
}

// Notifier delivers alerts to humans. *notify.Gateway satisfies it.
type Notifier interface {
	Notify(userID string, n notify.Notification)
	Broadcast(n notify.Notification)
}
