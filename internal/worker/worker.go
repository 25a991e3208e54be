// Package worker runs the background consumers for fire-and-forget jobs.
// Jobs are plain JSON payloads pushed onto a Redis list; delivery is
// best-effort and a failed job never affects the request that produced it.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type JobType string

const (
	JobTypeStatusChangeEmail JobType = "status_change_email"
)

type Job struct {
	ID        string                 `json:"id"`
	Type      JobType                `json:"type"`
	Payload   map[string]interface{} `json:"payload"`
	Attempts  int                    `json:"attempts"`
	MaxTries  int                    `json:"max_tries"`
	CreatedAt time.Time              `json:"created_at"`
}

type JobHandler func(ctx context.Context, job *Job) error

type Worker struct {
	client   *redis.Client
	log      *logrus.Entry
	handlers map[JobType]JobHandler
	queue    string
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewWorker(client *redis.Client, queue string, log *logrus.Entry) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		client:   client,
		log:      log,
		handlers: make(map[JobType]JobHandler),
		queue:    queue,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (w *Worker) RegisterHandler(jobType JobType, handler JobHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[jobType] = handler
}

func (w *Worker) Start(concurrency int) {
	w.log.WithField("concurrency", concurrency).Info("Starting notification worker")

	for i := 0; i < concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop()
	}
}

func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.log.Info("Notification worker stopped")
}

func (w *Worker) workerLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			if err := w.ProcessNextJob(); err != nil {
				w.log.WithError(err).Error("Error processing job")
				time.Sleep(time.Second)
			}
		}
	}
}

// ProcessNextJob blocks on the queue for up to five seconds and executes one
// job if available. An empty queue is not an error.
func (w *Worker) ProcessNextJob() error {
	result, err := w.client.BLPop(w.ctx, 5*time.Second, w.queue).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("failed to pop job: %w", err)
	}

	if len(result) < 2 {
		return fmt.Errorf("invalid job result")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return w.executeJob(&job)
}

func (w *Worker) executeJob(job *Job) error {
	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		return fmt.Errorf("no handler registered for job type: %s", job.Type)
	}

	ctx, cancel := context.WithTimeout(w.ctx, 30*time.Second)
	defer cancel()

	if err := handler(ctx, job); err != nil {
		job.Attempts++
		if job.Attempts < job.MaxTries {
			w.log.WithError(err).WithFields(logrus.Fields{
				"job_id":  job.ID,
				"attempt": job.Attempts,
			}).Warn("Job failed, retrying")
			return w.enqueueJob(job)
		}
		// Best-effort delivery: log and drop after the final attempt.
		w.log.WithError(err).WithField("job_id", job.ID).Error("Job failed permanently")
		return nil
	}

	return nil
}

func (w *Worker) enqueueJob(job *Job) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return w.client.RPush(w.ctx, w.queue, jobData).Err()
}

// JobQueue is the producer side used by request handlers.
type JobQueue struct {
	client *redis.Client
	queue  string
}

func NewJobQueue(client *redis.Client, queue string) *JobQueue {
	return &JobQueue{client: client, queue: queue}
}

func (q *JobQueue) Enqueue(ctx context.Context, jobType JobType, payload map[string]interface{}) error {
	jobID, err := uuid.NewV4()
	if err != nil {
		return err
	}

	job := &Job{
		ID:        jobID.String(),
		Type:      jobType,
		Payload:   payload,
		Attempts:  0,
		MaxTries:  3,
		CreatedAt: time.Now(),
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return q.client.RPush(ctx, q.queue, jobData).Err()
}

func (q *JobQueue) Size(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return q.client.LLen(ctx, q.queue).Result()
}
