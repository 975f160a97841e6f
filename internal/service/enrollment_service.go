package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/internal/repository"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type enrollmentStore interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error)
	Exists(ctx context.Context, studentID, subjectID string) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

type studentDirectory interface {
	studentProfileReader
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
}

// EnrollmentService manages the PENDING → APPROVED | REJECTED enrollment lifecycle.
type EnrollmentService struct {
	repo      enrollmentStore
	students  studentDirectory
	subjects  subjectFinder
	actors    actorResolver
	notifier  Notifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentStore, students studentDirectory, teachers teacherProfileReader, subjects subjectFinder, notifier Notifier, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		students:  students,
		subjects:  subjects,
		actors:    actorResolver{students: students, teachers: teachers},
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create requests (students) or directly creates (staff) an enrollment.
func (s *EnrollmentService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateEnrollmentRequest) (*models.Enrollment, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid enrollment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		return nil, notFoundOr(err, "subject not found", "failed to load subject")
	}

	status := req.Status
	switch a.role {
	case models.RoleStudent:
		if !a.ownsStudent(student.ID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only enroll themselves")
		}
		status = models.EnrollmentStatusPending
	case models.RoleTeacher:
		if !a.teachesSubject(subject.TeacherID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
		}
	}
	if status == "" {
		status = models.EnrollmentStatusPending
	}

	exists, err := s.repo.Exists(ctx, student.ID, subject.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled or pending for this subject")
	}

	now := s.now().UTC()
	enrollment := &models.Enrollment{
		StudentID:  student.ID,
		SubjectID:  subject.ID,
		Status:     status,
		EnrolledAt: now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student already enrolled or pending for this subject")
		}
		return nil, appErrors.Internal(err, "failed to create enrollment")
	}
	if status == models.EnrollmentStatusApproved {
		_ = s.cache.Invalidate(ctx, statsPattern(student.ID))
	}

	switch {
	case a.role == models.RoleStudent:
		s.metrics.RecordLifecycle(EventEnrollmentRequested)
		s.notifier.Notify(ctx, subject.TeacherUserID, "New enrollment request",
			fmt.Sprintf("%s requested to join %s.", student.FullName, subject.Name))
	case status == models.EnrollmentStatusApproved:
		s.metrics.RecordLifecycle(EventEnrollmentApproved)
		s.notifier.Notify(ctx, student.UserID, "Enrollment approved",
			fmt.Sprintf("You have been enrolled in %s.", subject.Name))
	default:
		s.metrics.RecordLifecycle(EventEnrollmentRequested)
	}

	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("status", string(status)),
		zap.String("actor_role", string(a.role)))
	return enrollment, nil
}

// List returns enrollments visible to the caller.
func (s *EnrollmentService) List(ctx context.Context, claims *models.JWTClaims, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid enrollment filter")
	}
	if query.SubjectID != "" {
		if _, err := s.subjects.FindByID(ctx, query.SubjectID); err != nil {
			return nil, notFoundOr(err, "subject not found", "failed to load subject")
		}
	}
	if query.StudentID != "" {
		if _, err := s.students.FindByID(ctx, query.StudentID); err != nil {
			return nil, notFoundOr(err, "student not found", "failed to load student")
		}
	}

	filter := scopeEnrollmentFilter(a, models.EnrollmentFilter{
		StudentID: query.StudentID,
		SubjectID: query.SubjectID,
		Status:    query.Status,
	})
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list enrollments")
	}
	return items, nil
}

// SetStatus approves or rejects an enrollment and always notifies the student.
func (s *EnrollmentService) SetStatus(ctx context.Context, claims *models.JWTClaims, req dto.SetEnrollmentStatusRequest) (*models.EnrollmentDetail, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if a.role == models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students cannot change enrollment status")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid enrollment status payload")
	}

	enrollment, err := s.repo.FindByID(ctx, req.EnrollmentID)
	if err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	if !a.teachesSubject(enrollment.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, enrollment.ID, req.Status, now); err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to update enrollment status")
	}
	enrollment.Status = req.Status
	enrollment.UpdatedAt = now
	_ = s.cache.Invalidate(ctx, statsPattern(enrollment.StudentID))

	title, message := enrollmentDecisionMessage(enrollment.SubjectName, req.Status, req.Reason)
	if req.Status == models.EnrollmentStatusApproved {
		s.metrics.RecordLifecycle(EventEnrollmentApproved)
	} else {
		s.metrics.RecordLifecycle(EventEnrollmentRejected)
	}
	s.notifier.Notify(ctx, enrollment.StudentUserID, title, message)
	return enrollment, nil
}

// Delete withdraws (students, pending only) or removes (staff) an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	enrollment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}

	switch a.role {
	case models.RoleStudent:
		if !a.ownsStudent(enrollment.StudentID) {
			return appErrors.Clone(appErrors.ErrForbidden, "enrollment belongs to another student")
		}
		if enrollment.Status != models.EnrollmentStatusPending {
			return appErrors.Clone(appErrors.ErrConflict, "only pending enrollments can be withdrawn")
		}
	case models.RoleTeacher:
		if !a.teachesSubject(enrollment.TeacherID) {
			return appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "enrollment not found", "failed to delete enrollment")
	}
	_ = s.cache.Invalidate(ctx, statsPattern(enrollment.StudentID))
	return nil
}

func enrollmentDecisionMessage(subject string, status models.EnrollmentStatus, reason string) (string, string) {
	if status == models.EnrollmentStatusApproved {
		return "Enrollment approved", fmt.Sprintf("Your enrollment in %s was approved.", subject)
	}
	message := fmt.Sprintf("Your enrollment in %s was rejected.", subject)
	if reason != "" {
		message += " Reason: " + reason
	}
	return "Enrollment rejected", message
}
