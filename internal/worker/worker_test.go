package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/worker"
)

func testLogger() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func setupQueue(t *testing.T) (*redis.Client, *worker.Worker, *worker.JobQueue) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	w := worker.NewWorker(client, "notifications", testLogger())
	q := worker.NewJobQueue(client, "notifications")
	return client, w, q
}

func TestEnqueueAndProcessJob(t *testing.T) {
	_, w, q := setupQueue(t)

	var processed []*worker.Job
	w.RegisterHandler(worker.JobTypeStatusChangeEmail, func(ctx context.Context, job *worker.Job) error {
		processed = append(processed, job)
		return nil
	})

	err := q.Enqueue(context.Background(), worker.JobTypeStatusChangeEmail, map[string]interface{}{
		"to_email":   "user1@example.com",
		"task_title": "Test task",
		"old_status": "TODO",
		"new_status": "In progress",
	})
	require.NoError(t, err)

	size, err := q.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	require.NoError(t, w.ProcessNextJob())

	require.Len(t, processed, 1)
	assert.Equal(t, worker.JobTypeStatusChangeEmail, processed[0].Type)
	assert.Equal(t, "user1@example.com", processed[0].Payload["to_email"])
	assert.NotEmpty(t, processed[0].ID)

	size, err = q.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestFailedJobIsRequeuedWithAttemptCount(t *testing.T) {
	client, w, q := setupQueue(t)

	w.RegisterHandler(worker.JobTypeStatusChangeEmail, func(ctx context.Context, job *worker.Job) error {
		return errors.New("smtp unavailable")
	})

	err := q.Enqueue(context.Background(), worker.JobTypeStatusChangeEmail, map[string]interface{}{
		"to_email": "user1@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessNextJob())

	raw, err := client.LIndex(context.Background(), "notifications", 0).Result()
	require.NoError(t, err)

	var requeued worker.Job
	require.NoError(t, json.Unmarshal([]byte(raw), &requeued))
	assert.Equal(t, 1, requeued.Attempts)
	assert.Equal(t, 3, requeued.MaxTries)
}

func TestJobWithoutHandlerFails(t *testing.T) {
	_, w, q := setupQueue(t)

	err := q.Enqueue(context.Background(), worker.JobType("unknown"), nil)
	require.NoError(t, err)

	err = w.ProcessNextJob()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no handler registered")
}

func TestPermanentFailureIsDropped(t *testing.T) {
	_, w, q := setupQueue(t)

	attempts := 0
	w.RegisterHandler(worker.JobTypeStatusChangeEmail, func(ctx context.Context, job *worker.Job) error {
		attempts++
		return errors.New("still broken")
	})

	err := q.Enqueue(context.Background(), worker.JobTypeStatusChangeEmail, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, w.ProcessNextJob())
	}

	assert.Equal(t, 3, attempts)
	size, err := q.Size(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
