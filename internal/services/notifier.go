package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"task-tracker/internal/models"
	"task-tracker/internal/worker"
)

// Notifier delivers the responsible person a notification when a task's
// status changes. Delivery is fire-and-forget: implementations must never
// report a failure to the caller beyond logging it.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, task *models.Task, responsiblePerson *models.User, oldStatus, newStatus models.TaskStatus)
}

// QueueNotifier hands the notification to the background email worker via
// the Redis job queue.
type QueueNotifier struct {
	queue *worker.JobQueue
	log   *logrus.Entry
}

func NewQueueNotifier(queue *worker.JobQueue, log *logrus.Entry) *QueueNotifier {
	return &QueueNotifier{queue: queue, log: log}
}

func (n *QueueNotifier) NotifyStatusChange(ctx context.Context, task *models.Task, responsiblePerson *models.User, oldStatus, newStatus models.TaskStatus) {
	payload := map[string]interface{}{
		"to_email":   responsiblePerson.Email,
		"task_title": task.Title,
		"old_status": string(oldStatus),
		"new_status": string(newStatus),
	}

	if err := n.queue.Enqueue(ctx, worker.JobTypeStatusChangeEmail, payload); err != nil {
		n.log.WithError(err).WithField("task_id", task.ID).Warn("Failed to enqueue status change notification")
	}
}

// StatusChangeEmailHandler returns the worker handler that sends the status
// change email. Sending is mocked with a log line.
func StatusChangeEmailHandler(log *logrus.Entry) worker.JobHandler {
	return func(ctx context.Context, job *worker.Job) error {
		log.WithFields(logrus.Fields{
			"to_email":   job.Payload["to_email"],
			"task_title": job.Payload["task_title"],
			"old_status": job.Payload["old_status"],
			"new_status": job.Payload["new_status"],
		}).Infof("Mock email sent to %v: Task '%v' status changed from '%v' to '%v'",
			job.Payload["to_email"], job.Payload["task_title"], job.Payload["old_status"], job.Payload["new_status"])
		return nil
	}
}
