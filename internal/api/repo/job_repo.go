package repo

import (
	"fmt"

	"gorm.io/gorm"

	"upkeep"
	"upkeep/internal/api/models"
	"upkeep/internal/bus"
)

// JobRepository owns the authoritative job table. Every successful write
// also publishes a row-level change notification on the bus, which is the
// push half of the sync engine's trigger set.
type JobRepository struct {
	Db  *gorm.DB
	Bus *bus.Bus
}

func NewJobRepository() *JobRepository {
	return &JobRepository{Db: upkeep.DB, Bus: upkeep.Bus}
}

// FindAll retrieves all jobs, oldest report first.
func (slf *JobRepository) FindAll() ([]models.Job, error) {
	var jobs []models.Job
	err := slf.Db.Order("reported_at ASC").Find(&jobs).Error
	return jobs, err
}

// FindByID retrieves a job by ID
func (slf *JobRepository) FindByID(id string) (models.Job, error) {
	var job models.Job
	err := slf.Db.Where("id = ?", id).First(&job).Error
	return job, err
}

func (slf *JobRepository) Insert(job *models.Job) error {
	if err := slf.Db.Create(job).Error; err != nil {
		return err
	}
	slf.publish("insert", *job)
	return nil
}

// Save persists the full row. Callers always hand over a fully-formed
// record, never a delta, so concurrent savers degrade to last-write-wins
// instead of interleaving field-level state.
func (slf *JobRepository) Save(job *models.Job) error {
	if err := slf.Db.Save(job).Error; err != nil {
		return err
	}
	slf.publish("update", *job)
	return nil
}

// MarkNotified flips the delivery bookkeeping flag without touching the
// rest of the row.
func (slf *JobRepository) MarkNotified(id string) error {
	return slf.markFlag(id, "notification_sent")
}

// MarkAlertShown flips the alert bookkeeping flag without touching the
// rest of the row.
func (slf *JobRepository) MarkAlertShown(id string) error {
	return slf.markFlag(id, "alert_shown")
}

func (slf *JobRepository) markFlag(id string, column string) error {
	res := slf.Db.Model(&models.Job{}).Where("id = ?", id).Update(column, true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s not found", id)
	}
	return nil
}

func (slf *JobRepository) publish(op string, job models.Job) {
	if slf.Bus == nil {
		return
	}
	slf.Bus.PublishRowChange(op, job)
}
