package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		job          Job
		wantStatus   JobStatus
		wantPriority JobPriority
	}{
		{"empty row", Job{}, JobStatusUnassigned, JobPriorityMedium},
		{"unknown priority", Job{Status: JobStatusAssigned, Priority: "urgent"}, JobStatusAssigned, JobPriorityMedium},
		{"unknown status", Job{Status: "done", Priority: JobPriorityLow}, JobStatusUnassigned, JobPriorityLow},
		{"valid row untouched", Job{Status: JobStatusInProgress, Priority: JobPriorityHigh}, JobStatusInProgress, JobPriorityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.job.Normalize()
			assert.Equal(t, tt.wantStatus, tt.job.Status)
			assert.Equal(t, tt.wantPriority, tt.job.Priority)
		})
	}
}

func TestEscalated(t *testing.T) {
	base := Job{
		Priority:   JobPriorityHigh,
		Status:     JobStatusAssigned,
		AssignedTo: "tech-1",
	}

	assert.True(t, base.Escalated())
	assert.True(t, base.NeedsAttention("tech-1"))
	assert.False(t, base.NeedsAttention("tech-2"))

	accepted := base
	accepted.Accepted = true
	assert.False(t, accepted.Escalated())

	medium := base
	medium.Priority = JobPriorityMedium
	assert.False(t, medium.Escalated())

	inProgress := base
	inProgress.Status = JobStatusInProgress
	assert.False(t, inProgress.Escalated())
}

func TestResetEpisode(t *testing.T) {
	job := Job{Accepted: true, NotificationSent: true, AlertShown: true}
	job.ResetEpisode()
	assert.False(t, job.Accepted)
	assert.False(t, job.NotificationSent)
	assert.False(t, job.AlertShown)
}

// A job written to the cache and reloaded must come back structurally
// identical, simulating a page reload served from the mirror.
func TestJobSnapshotRoundTrip(t *testing.T) {
	reported := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	original := Job{
		ID:               "job-1",
		Title:            "Leaking radiator",
		Description:      "Second floor, unit 4B",
		PropertyID:       "prop-9",
		ReportedAt:       reported,
		Status:           JobStatusAssigned,
		Priority:         JobPriorityHigh,
		AssignedTo:       "tech-1",
		Accepted:         false,
		NotificationSent: true,
		AlertShown:       true,
		ReporterPhoto:    "https://img.example/r.jpg",
		BeforePhoto:      "https://img.example/b.jpg",
		Comments:         CommentList{"reported by tenant", "parts ordered"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var reloaded Job
	require.NoError(t, json.Unmarshal(data, &reloaded))
	assert.Equal(t, original, reloaded)
}

func TestCommentListScan(t *testing.T) {
	var list CommentList
	require.NoError(t, list.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, CommentList{"a", "b"}, list)

	require.NoError(t, list.Scan(`["c"]`))
	assert.Equal(t, CommentList{"c"}, list)

	require.NoError(t, list.Scan(nil))
	assert.Nil(t, list)

	assert.Error(t, list.Scan(42))
}

func TestCommentListValue(t *testing.T) {
	v, err := CommentList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = CommentList{"x"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["x"]`, v.(string))
}
