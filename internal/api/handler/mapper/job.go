package mapper

import (
	"upkeep/internal/api/handler/response"
	"upkeep/internal/api/models"
)

func ToJobResponse(j models.Job) response.Job {
	comments := []string(j.Comments)
	if comments == nil {
		comments = []string{}
	}
	return response.Job{
		ID:            j.ID,
		Title:         j.Title,
		Description:   j.Description,
		PropertyID:    j.PropertyID,
		ReportedAt:    j.ReportedAt,
		Status:        j.Status,
		Priority:      j.Priority,
		AssignedTo:    j.AssignedTo,
		Accepted:      j.Accepted,
		ReporterPhoto: j.ReporterPhoto,
		BeforePhoto:   j.BeforePhoto,
		AfterPhoto:    j.AfterPhoto,
		Comments:      comments,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

func ToJobResponses(entities []models.Job) []response.Job {
	jobs := make([]response.Job, len(entities))
	for i, j := range entities {
		jobs[i] = ToJobResponse(j)
	}
	return jobs
}
