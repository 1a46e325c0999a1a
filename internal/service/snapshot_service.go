package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/mchic/setlist/internal/model"
)

const (
	TaskTypeSnapshot = "setlist:snapshot"
	QueueSnapshots   = "snapshots"
)

// SnapshotService queues background snapshots of the setlist
type SnapshotService struct {
	asynqClient *asynq.Client
}

func NewSnapshotService(asynqClient *asynq.Client) *SnapshotService {
	return &SnapshotService{asynqClient: asynqClient}
}

// ScheduleSnapshot enqueues a snapshot task tagged with the triggering reason
func (s *SnapshotService) ScheduleSnapshot(ctx context.Context, reason string) error {
	task, err := NewSnapshotTask(reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.EnqueueContext(ctx, task,
		asynq.Queue(QueueSnapshots),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// NewSnapshotTask builds the asynq task processed by the snapshot worker
func NewSnapshotTask(reason string, at time.Time) (*asynq.Task, error) {
	data, err := json.Marshal(model.SnapshotPayload{
		Reason:      reason,
		RequestedAt: at,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSnapshot, data), nil
}
