package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkMessageUnmarshal(t *testing.T) {
	t.Run("current field names with unknown extras", func(t *testing.T) {
		var m WorkMessage
		body := `{"job_id":"j1","video_id":"v1","storage_key":"videos/v1.mp4","storage_bucket":"b","priority":3}`
		require.NoError(t, json.Unmarshal([]byte(body), &m))
		assert.Equal(t, WorkMessage{JobID: "j1", VideoID: "v1", StorageKey: "videos/v1.mp4", StorageBucket: "b"}, m)
	})

	t.Run("legacy field names", func(t *testing.T) {
		var m WorkMessage
		body := `{"job_id":"j1","video_id":"v1","s3_key":"videos/v1.mp4","s3_bucket":"b"}`
		require.NoError(t, json.Unmarshal([]byte(body), &m))
		assert.Equal(t, "videos/v1.mp4", m.StorageKey)
		assert.Equal(t, "b", m.StorageBucket)
	})

	t.Run("invalid json", func(t *testing.T) {
		var m WorkMessage
		require.Error(t, json.Unmarshal([]byte(`{"job_id":`), &m))
	})
}

func TestJobApplyTransition(t *testing.T) {
	msg := "boom"
	frames := 25

	job := &Job{ID: "j1", Status: JobStatusPending}
	require.NoError(t, job.ApplyTransition(JobStatusProcessing, TransitionFields{ErrorMessage: &msg}))
	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.Nil(t, job.ErrorMessage)

	require.NoError(t, job.ApplyTransition(JobStatusCompleted, TransitionFields{FramesProcessed: &frames}))
	assert.Equal(t, 25, *job.FramesProcessed)

	err := job.ApplyTransition(JobStatusProcessing, TransitionFields{})
	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, JobStatusCompleted, job.Status)
}

func TestJobStatusTransitions(t *testing.T) {
	all := []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed}
	for _, from := range all {
		for _, to := range all {
			if to == JobStatusPending {
				assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
			}
			if from.IsTerminal() {
				assert.False(t, from.CanTransitionTo(to), "%s -> %s", from, to)
			}
		}
	}
	assert.True(t, JobStatusPending.CanTransitionTo(JobStatusProcessing))
	assert.True(t, JobStatusProcessing.CanTransitionTo(JobStatusFailed))
	assert.False(t, JobStatusPending.CanTransitionTo(JobStatusCompleted))
}
