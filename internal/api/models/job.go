package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type JobStatus string

const (
	JobStatusUnassigned JobStatus = "unassigned"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusOnHold     JobStatus = "on_hold"
	JobStatusCompleted  JobStatus = "completed"
)

func (slf JobStatus) Valid() bool {
	switch slf {
	case JobStatusUnassigned, JobStatusAssigned, JobStatusInProgress, JobStatusOnHold, JobStatusCompleted:
		return true
	}
	return false
}

type JobPriority string

const (
	JobPriorityLow    JobPriority = "low"
	JobPriorityMedium JobPriority = "medium"
	JobPriorityHigh   JobPriority = "high"
)

func (slf JobPriority) Valid() bool {
	switch slf {
	case JobPriorityLow, JobPriorityMedium, JobPriorityHigh:
		return true
	}
	return false
}

type PhotoSlot string

const (
	PhotoSlotBefore PhotoSlot = "before"
	PhotoSlotAfter  PhotoSlot = "after"
)

// CommentList is an append-only sequence of free-text comments, stored as jsonb.
type CommentList []string

func (slf CommentList) Value() (driver.Value, error) {
	if slf == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(slf))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (slf *CommentList) Scan(value any) error {
	if value == nil {
		*slf = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported comment list type %T", value)
	}
	return json.Unmarshal(data, (*[]string)(slf))
}

// Job is a maintenance work item tracked through the status workflow.
// The authoritative copy lives in Postgres; the Redis mirror is best-effort.
type Job struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	PropertyID  string    `gorm:"index" json:"propertyId"`
	ReportedAt  time.Time `json:"reportedAt"`

	Status     JobStatus   `gorm:"index" json:"status"`
	Priority   JobPriority `gorm:"index" json:"priority"`
	AssignedTo string      `gorm:"index" json:"assignedTo"`
	Accepted   bool        `json:"accepted"`

	// Delivery bookkeeping only, never business state. Once set for an
	// escalation episode these stay set; a fresh assignment or a fresh
	// escalation to high resets them (see ResetEpisode).
	NotificationSent bool `json:"notificationSent"`
	AlertShown       bool `json:"alertShown"`

	ReporterPhoto string `json:"reporterPhoto"`
	BeforePhoto   string `json:"beforePhoto"`
	AfterPhoto    string `json:"afterPhoto"`

	Comments CommentList `gorm:"type:jsonb" json:"comments"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Job) TableName() string {
	return "jobs"
}

// Normalize coerces a partial backend row into a usable record: unknown
// priority becomes medium, unknown status becomes unassigned. The UI must
// stay resilient to incomplete remote data.
func (slf *Job) Normalize() {
	if !slf.Priority.Valid() {
		slf.Priority = JobPriorityMedium
	}
	if !slf.Status.Valid() {
		slf.Status = JobStatusUnassigned
	}
}

// Escalated reports whether the job is in an active escalation episode:
// high priority, assigned to somebody, and not yet accepted.
func (slf *Job) Escalated() bool {
	return slf.Priority == JobPriorityHigh &&
		slf.Status == JobStatusAssigned &&
		slf.AssignedTo != "" &&
		!slf.Accepted
}

// NeedsAttention reports whether the job is an active alert for the given user.
func (slf *Job) NeedsAttention(userID string) bool {
	return slf.Escalated() && slf.AssignedTo == userID
}

// ResetEpisode starts a new escalation episode: the job becomes eligible for
// exactly one more notification and one more alert.
func (slf *Job) ResetEpisode() {
	slf.Accepted = false
	slf.NotificationSent = false
	slf.AlertShown = false
}
