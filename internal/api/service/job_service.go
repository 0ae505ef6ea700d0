package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
	"upkeep/internal/notify"
)

// SyncedJobs is the in-memory synced state mutations operate against.
// *SyncEngine satisfies it.
type SyncedJobs interface {
	Get(id string) (models.Job, bool)
	ApplyLocal(job models.Job)
}

// JobService applies state transitions to jobs. Every mutation validates its
// precondition, applies optimistically to the synced in-memory set, persists
// the full record to the authoritative store, and emits the jobs-changed
// signal. When persistence fails the optimistic copy is rolled back to the
// pre-mutation snapshot and no signal is emitted; the next reconciling load
// would repair any divergence regardless.
type JobService struct {
	store   JobStore
	state   SyncedJobs
	bus     ChangeBus
	gateway Notifier
	logger  zerolog.Logger
}

func NewJobService(store JobStore, state SyncedJobs, changeBus ChangeBus, gateway Notifier, logger zerolog.Logger) *JobService {
	return &JobService{
		store:   store,
		state:   state,
		bus:     changeBus,
		gateway: gateway,
		logger:  logger,
	}
}

// ReportJob is the intake payload from the reporter flow.
type ReportJob struct {
	Title         string
	Description   string
	PropertyID    string
	Priority      models.JobPriority
	ReporterPhoto string
}

// Report creates a new unassigned job from the reporter flow.
func (slf *JobService) Report(req ReportJob) (models.Job, error) {
	job := models.Job{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		PropertyID:    req.PropertyID,
		Priority:      req.Priority,
		Status:        models.JobStatusUnassigned,
		ReporterPhoto: req.ReporterPhoto,
		ReportedAt:    time.Now(),
		Comments:      models.CommentList{},
	}
	job.Normalize()

	if err := slf.store.Insert(&job); err != nil {
		slf.logger.Error().Err(err).Str("title", req.Title).Msg("Error creating job")
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}

	slf.state.ApplyLocal(job)
	slf.bus.PublishJobsChanged()
	slf.logger.Info().Str("jobID", job.ID).Str("priority", string(job.Priority)).Msg("Job reported")
	return job, nil
}

// Assign hands an unassigned job to a technician, optionally setting its
// priority. A high priority assignment immediately notifies the technician
// and starts a fresh escalation episode.
func (slf *JobService) Assign(jobID, techID string, priority models.JobPriority) (models.Job, error) {
	if techID == "" {
		return models.Job{}, ErrTechnicianRequired
	}

	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, err
	}
	if job.Status != models.JobStatusUnassigned {
		return prev, ErrAlreadyAssigned
	}

	job.Status = models.JobStatusAssigned
	job.AssignedTo = techID
	if priority.Valid() {
		job.Priority = priority
	}
	job.ResetEpisode()

	job, err = slf.commit(prev, job)
	if err != nil {
		return prev, err
	}

	if job.Priority == models.JobPriorityHigh {
		slf.gateway.Notify(techID, notify.Notification{
			Title:              "New high priority job",
			Body:               job.Title,
			Priority:           models.JobPriorityHigh,
			Tag:                job.ID,
			RequireInteraction: true,
		})
		if err := slf.store.MarkNotified(job.ID); err != nil {
			slf.logger.Warn().Err(err).Str("jobID", job.ID).Msg("Failed to persist notification mark")
		} else {
			job.NotificationSent = true
			slf.state.ApplyLocal(job)
		}
	}
	return job, nil
}

// ChangeStatus moves a job through the workflow. Completing requires the
// after photo; any non-unassigned status requires an assignee. Moving back
// to unassigned clears the assignee.
func (slf *JobService) ChangeStatus(jobID string, newStatus models.JobStatus) (models.Job, error) {
	if !newStatus.Valid() {
		return models.Job{}, ErrInvalidStatus
	}

	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, err
	}
	if newStatus == models.JobStatusCompleted && job.AfterPhoto == "" {
		return prev, ErrAfterPhotoRequired
	}
	if newStatus != models.JobStatusUnassigned && job.AssignedTo == "" {
		return prev, ErrNotAssigned
	}

	job.Status = newStatus
	if newStatus == models.JobStatusUnassigned {
		job.AssignedTo = ""
		job.ResetEpisode()
	}
	return slf.commit(prev, job)
}

// ChangePriority re-prioritizes a job. Escalating to high starts a fresh
// episode so the monitor alerts again.
func (slf *JobService) ChangePriority(jobID string, priority models.JobPriority) (models.Job, error) {
	if !priority.Valid() {
		return models.Job{}, ErrInvalidPriority
	}

	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, err
	}
	if priority == models.JobPriorityHigh && job.Priority != models.JobPriorityHigh {
		job.ResetEpisode()
	}
	job.Priority = priority
	return slf.commit(prev, job)
}

// AttachPhoto sets one photo slot. The second return value hints that the
// job just became completable: the after photo landed while work was in
// progress.
func (slf *JobService) AttachPhoto(jobID string, slot models.PhotoSlot, url string) (models.Job, bool, error) {
	if url == "" {
		return models.Job{}, false, ErrEmptyPhotoURL
	}

	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, false, err
	}

	switch slot {
	case models.PhotoSlotBefore:
		job.BeforePhoto = url
	case models.PhotoSlotAfter:
		job.AfterPhoto = url
	default:
		return prev, false, ErrInvalidPhotoSlot
	}

	job, err = slf.commit(prev, job)
	if err != nil {
		return prev, false, err
	}
	completable := slot == models.PhotoSlotAfter && job.Status == models.JobStatusInProgress
	return job, completable, nil
}

// Accept records that the assigned technician acknowledged a high priority
// job, which ends its escalation episode.
func (slf *JobService) Accept(jobID, callerID string) (models.Job, error) {
	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, err
	}
	if job.Priority != models.JobPriorityHigh {
		return prev, ErrNotHighPriority
	}
	if job.Status != models.JobStatusAssigned || job.AssignedTo != callerID {
		return prev, ErrNotEligible
	}

	job.Accepted = true
	return slf.commit(prev, job)
}

// AddComment appends one free-text comment.
func (slf *JobService) AddComment(jobID, text string) (models.Job, error) {
	if strings.TrimSpace(text) == "" {
		return models.Job{}, ErrEmptyComment
	}

	job, prev, err := slf.get(jobID)
	if err != nil {
		return models.Job{}, err
	}
	job.Comments = append(job.Comments, text)
	return slf.commit(prev, job)
}

// get resolves the working copy from synced state, falling back to the
// store when the engine has not seen the job yet. Returns the copy to
// mutate and the pre-mutation snapshot for rollback.
func (slf *JobService) get(jobID string) (models.Job, models.Job, error) {
	if job, ok := slf.state.Get(jobID); ok {
		return job, job, nil
	}
	job, err := slf.store.FindByID(jobID)
	if err != nil {
		slf.logger.Error().Err(err).Str("jobID", jobID).Msg("Job not found")
		return models.Job{}, models.Job{}, ErrJobNotFound
	}
	job.Normalize()
	return job, job, nil
}

// commit is the write path shared by all mutations: optimistic apply,
// persist the full snapshot, then signal — or roll back.
func (slf *JobService) commit(prev, next models.Job) (models.Job, error) {
	slf.state.ApplyLocal(next)

	if err := slf.store.Save(&next); err != nil {
		slf.state.ApplyLocal(prev)
		slf.logger.Error().Err(err).Str("jobID", next.ID).Msg("Error persisting job, rolled back optimistic state")
		return prev, fmt.Errorf("persist job %s: %w", next.ID, err)
	}

	slf.bus.PublishJobsChanged()
	return next, nil
}
