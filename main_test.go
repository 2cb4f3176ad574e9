package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvIntFallbackAndParse(t *testing.T) {
	t.Setenv("DOCTRANS_TEST_INT", "")
	assert.Equal(t, 42, envInt("DOCTRANS_TEST_INT", 42))

	t.Setenv("DOCTRANS_TEST_INT", "7")
	assert.Equal(t, 7, envInt("DOCTRANS_TEST_INT", 42))
}

func TestEnvFloatFallbackAndParse(t *testing.T) {
	t.Setenv("DOCTRANS_TEST_FLOAT", "")
	assert.Equal(t, 1.5, envFloat("DOCTRANS_TEST_FLOAT", 1.5))

	t.Setenv("DOCTRANS_TEST_FLOAT", "30")
	assert.Equal(t, 30.0, envFloat("DOCTRANS_TEST_FLOAT", 1.5))
}

func TestGetJobReturnsSnapshot(t *testing.T) {
	job := &Job{ID: generateJobID(), Status: "pending", CreatedAt: time.Now()}
	jobStore.addJob(job)

	snap, ok := jobStore.getJob(job.ID)
	require.True(t, ok)

	// A worker updating the stored record must not reach through a handler's
	// already-fetched copy.
	jobStore.updateJobStatus(job.ID, "in_progress", "")
	assert.Equal(t, "pending", snap.Status)

	current, ok := jobStore.getJob(job.ID)
	require.True(t, ok)
	assert.Equal(t, "in_progress", current.Status)
}

func TestJobStoreOrdering(t *testing.T) {
	a := &Job{ID: generateJobID(), Status: "pending"}
	b := &Job{ID: generateJobID(), Status: "pending"}
	a.CreatedAt = a.CreatedAt.Add(1)
	b.CreatedAt = a.CreatedAt.Add(1)
	jobStore.addJob(a)
	jobStore.addJob(b)

	jobs := jobStore.GetAllJobs()
	assert.GreaterOrEqual(t, len(jobs), 2)
	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i].CreatedAt.After(jobs[i-1].CreatedAt), "jobs sorted newest first")
	}
}
