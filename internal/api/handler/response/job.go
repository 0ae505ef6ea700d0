package response

import (
	"time"

	"upkeep/internal/api/models"
)

type Job struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	PropertyID  string             `json:"propertyId"`
	ReportedAt  time.Time          `json:"reportedAt"`
	Status      models.JobStatus   `json:"status"`
	Priority    models.JobPriority `json:"priority"`
	AssignedTo  string             `json:"assignedTo,omitempty"`
	Accepted    bool               `json:"accepted"`

	ReporterPhoto string `json:"reporterPhoto,omitempty"`
	BeforePhoto   string `json:"beforePhoto,omitempty"`
	AfterPhoto    string `json:"afterPhoto,omitempty"`

	Comments []string `json:"comments"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttachPhotoResult carries the completable hint next to the updated job.
type AttachPhotoResult struct {
	Job         Job    `json:"job"`
	Completable bool   `json:"completable"`
	Hint        string `json:"hint,omitempty"`
}
