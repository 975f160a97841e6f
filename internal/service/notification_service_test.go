package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
	"github.com/noah-isme/saberpro-api/pkg/jobs"
)

type mockNotificationRepo struct {
	items     map[string]*models.Notification
	createErr error
	created   []models.Notification
	read      []string
	deleted   []string
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.createErr != nil {
		return m.createErr
	}
	n.ID = idNotification
	n.CreatedAt = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	m.created = append(m.created, *n)
	return nil
}

func (m *mockNotificationRepo) CreateBatch(ctx context.Context, batch []models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, batch...)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	if n, ok := m.items[id]; ok {
		return n, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error {
	m.read = append(m.read, id)
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 3, nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type fakeUsers struct {
	items map[string]*models.User
}

func (f fakeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.items[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type fakeQueue struct {
	jobs []jobs.Job
	err  error
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func newNotificationServiceForTest(repo *mockNotificationRepo, queue eventQueue) *NotificationService {
	users := fakeUsers{items: map[string]*models.User{uidStudent: {ID: uidStudent, Role: models.RoleStudent}}}
	return NewNotificationService(repo, users, queue, nil, validator.New(), zap.NewNop())
}

func TestNotifyStoresAndEnqueuesEvent(t *testing.T) {
	repo := &mockNotificationRepo{}
	queue := &fakeQueue{}
	svc := newNotificationServiceForTest(repo, queue)

	svc.Notify(context.Background(), uidStudent, "Homework graded", "Score: 90")

	require.Len(t, repo.created, 1)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, NotificationEventJob, queue.jobs[0].Type)
	event, ok := queue.jobs[0].Payload.(dto.NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, uidStudent, event.UserID)
	assert.Equal(t, "2026-03-01T08:00:00Z", event.CreatedAt)
}

func TestNotifySurvivesCancelledRequest(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Notify(ctx, uidStudent, "Submission received", "ok")
	assert.Len(t, repo.created, 1)
}

func TestNotifyFailuresAreSwallowed(t *testing.T) {
	repo := &mockNotificationRepo{createErr: errors.New("db down")}
	queue := &fakeQueue{}
	svc := newNotificationServiceForTest(repo, queue)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), uidStudent, "t", "m")
		svc.NotifyMany(context.Background(), []string{uidStudent, uidOtherStudent}, "t", "m")
	})
	assert.Empty(t, queue.jobs)

	full := newNotificationServiceForTest(&mockNotificationRepo{}, &fakeQueue{err: jobs.ErrQueueFull})
	assert.NotPanics(t, func() { full.Notify(context.Background(), uidStudent, "t", "m") })
}

func TestNotifyManyOnePerRecipient(t *testing.T) {
	repo := &mockNotificationRepo{}
	queue := &fakeQueue{}
	svc := newNotificationServiceForTest(repo, queue)

	svc.NotifyMany(context.Background(), []string{uidStudent, uidOtherStudent}, "New homework", "due soon")
	assert.Len(t, repo.created, 2)
	assert.Len(t, queue.jobs, 2)

	svc.NotifyMany(context.Background(), nil, "ignored", "ignored")
	assert.Len(t, repo.created, 2)
}

func TestNotificationCreateByStaff(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationServiceForTest(repo, nil)
	req := dto.CreateNotificationRequest{UserID: uidStudent, Title: "Reminder", Message: "Bring your lab notes"}

	_, err := svc.Create(context.Background(), studentClaims(), req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	n, err := svc.Create(context.Background(), teacherClaims(), req)
	require.NoError(t, err)
	assert.Equal(t, idNotification, n.ID)

	req.UserID = idMissing
	_, err = svc.Create(context.Background(), adminClaims(), req)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestNotificationOwnership(t *testing.T) {
	repo := &mockNotificationRepo{items: map[string]*models.Notification{
		idNotification: {ID: idNotification, UserID: uidStudent},
	}}
	svc := newNotificationServiceForTest(repo, nil)
	ctx := context.Background()

	assert.ErrorIs(t, svc.MarkRead(ctx, otherStudentClaims(), idNotification), appErrors.ErrForbidden)
	assert.ErrorIs(t, svc.MarkRead(ctx, studentClaims(), idMissing), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.MarkRead(ctx, studentClaims(), "bogus"), appErrors.ErrValidation)
	require.NoError(t, svc.MarkRead(ctx, studentClaims(), idNotification))
	assert.Equal(t, []string{idNotification}, repo.read)

	assert.ErrorIs(t, svc.Delete(ctx, teacherClaims(), idNotification), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminClaims(), idNotification))
	assert.Equal(t, []string{idNotification}, repo.deleted)

	count, err := svc.MarkAllRead(ctx, studentClaims())
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}
