package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/pkg/jobs"
)

type eventPublisher interface {
	Publish(ctx context.Context, topic, key string, message interface{}) error
}

// NewNotificationEventHandler returns the queue handler publishing notification events to topic,
// keyed by recipient so one user's events share a partition. Publish order is not guaranteed
// since the queue runs several workers and failed jobs are re-enqueued.
func NewNotificationEventHandler(publisher eventPublisher, topic string, metrics *MetricsService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(dto.NotificationEvent)
		if !ok {
			logger.Error("unexpected notification job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
			return nil
		}
		err := publisher.Publish(ctx, topic, event.UserID, event)
		metrics.RecordPublish(err)
		if err != nil {
			return fmt.Errorf("publish notification %s: %w", event.ID, err)
		}
		logger.Debug("notification event published", zap.String("notification_id", event.ID), zap.Int("attempt", job.Attempt))
		return nil
	}
}
