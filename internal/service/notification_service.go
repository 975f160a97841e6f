package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
	"github.com/noah-isme/saberpro-api/pkg/jobs"
)

// NotificationEventJob is the job type carrying a dto.NotificationEvent payload.
const NotificationEventJob = "notification.created"

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type notificationUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type eventQueue interface {
	Enqueue(job jobs.Job) error
}

// Notifier is the side-effect surface the lifecycle managers depend on.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string)
	NotifyMany(ctx context.Context, userIDs []string, title, message string)
}

// NotificationService stores user notifications and hands each one to the event queue.
type NotificationService struct {
	store     notificationStore
	users     notificationUserReader
	queue     eventQueue
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService constructs the service. queue may be nil when event publishing is off.
func NewNotificationService(store notificationStore, users notificationUserReader, queue eventQueue, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, users: users, queue: queue, metrics: metrics, validator: validate, logger: logger}
}

// Notify stores one notification. Failures are logged and never surface to the caller.
func (s *NotificationService) Notify(ctx context.Context, userID, title, message string) {
	ctx = context.WithoutCancel(ctx)
	notification := &models.Notification{UserID: userID, Title: title, Message: message}
	if err := s.store.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create notification", zap.String("user_id", userID), zap.String("title", title), zap.Error(err))
		return
	}
	s.dispatched(*notification)
}

// NotifyMany stores one notification per recipient in a single transaction.
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []string, title, message string) {
	if len(userIDs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	batch := make([]models.Notification, len(userIDs))
	for i, id := range userIDs {
		batch[i] = models.Notification{UserID: id, Title: title, Message: message}
	}
	if err := s.store.CreateBatch(ctx, batch); err != nil {
		s.logger.Warn("failed to create notification batch", zap.Int("recipients", len(userIDs)), zap.String("title", title), zap.Error(err))
		return
	}
	for _, n := range batch {
		s.dispatched(n)
	}
}

// Create sends a notification on behalf of staff.
func (s *NotificationService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateNotificationRequest) (*models.Notification, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleTeacher && !claims.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can send notifications")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid notification payload")
	}
	if _, err := s.users.FindByID(ctx, req.UserID); err != nil {
		return nil, notFoundOr(err, "user not found", "failed to load user")
	}

	notification := &models.Notification{UserID: req.UserID, Title: req.Title, Message: req.Message}
	if err := s.store.Create(ctx, notification); err != nil {
		return nil, appErrors.Internal(err, "failed to create notification")
	}
	s.dispatched(*notification)
	return notification, nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Notification, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	items, err := s.store.ListByUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notifications")
	}
	return items, nil
}

// MarkRead flags one notification owned by the caller, or any notification for admins.
func (s *NotificationService) MarkRead(ctx context.Context, claims *models.JWTClaims, id string) error {
	if _, err := s.authorize(ctx, claims, id); err != nil {
		return err
	}
	if err := s.store.MarkRead(ctx, id); err != nil {
		return notFoundOr(err, "notification not found", "failed to mark notification read")
	}
	return nil
}

// MarkAllRead flags every unread notification of the caller and returns the count.
func (s *NotificationService) MarkAllRead(ctx context.Context, claims *models.JWTClaims) (int64, error) {
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	count, err := s.store.MarkAllRead(ctx, claims.UserID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to mark notifications read")
	}
	return count, nil
}

// Delete removes a notification owned by the caller, or any notification for admins.
func (s *NotificationService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if _, err := s.authorize(ctx, claims, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return notFoundOr(err, "notification not found", "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) authorize(ctx context.Context, claims *models.JWTClaims, id string) (*models.Notification, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	notification, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "notification not found", "failed to load notification")
	}
	if notification.UserID != claims.UserID && !claims.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "notification belongs to another user")
	}
	return notification, nil
}

func (s *NotificationService) dispatched(n models.Notification) {
	s.metrics.RecordLifecycle(EventNotificationCreated)
	if s.queue == nil {
		return
	}
	event := dto.NotificationEvent{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
	if err := s.queue.Enqueue(jobs.Job{ID: n.ID, Type: NotificationEventJob, Payload: event}); err != nil {
		s.logger.Warn("failed to enqueue notification event", zap.String("notification_id", n.ID), zap.Error(err))
	}
}
