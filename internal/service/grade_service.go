package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type gradeStore interface {
	Upsert(ctx context.Context, grade *models.Grade) (bool, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
}

type submissionFinder interface {
	FindByID(ctx context.Context, id string) (*models.SubmissionDetail, error)
}

// GradeConfig tunes grading side effects.
type GradeConfig struct {
	NotifyOnRegrade bool
}

// GradeService writes the single grade of a submission and lists grades.
type GradeService struct {
	repo        gradeStore
	submissions submissionFinder
	students    studentDirectory
	subjects    subjectFinder
	homeworks   homeworkFinder
	actors      actorResolver
	notifier    Notifier
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         GradeConfig
	now         func() time.Time
}

// NewGradeService constructs GradeService.
func NewGradeService(
	repo gradeStore,
	submissions submissionFinder,
	students studentDirectory,
	teachers teacherProfileReader,
	subjects subjectFinder,
	homeworks homeworkFinder,
	notifier Notifier,
	cache *CacheService,
	metrics *MetricsService,
	cfg GradeConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		repo:        repo,
		submissions: submissions,
		students:    students,
		subjects:    subjects,
		homeworks:   homeworks,
		actors:      actorResolver{students: students, teachers: teachers},
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Grade creates the grade of a submission or replaces its score and feedback in place.
func (s *GradeService) Grade(ctx context.Context, claims *models.JWTClaims, req dto.GradeRequest) (*models.Grade, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if a.role == models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students cannot grade")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade payload")
	}
	if a.role == models.RoleTeacher && a.teacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers can only grade as themselves")
	}

	submission, err := s.submissions.FindByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, notFoundOr(err, "submission not found", "failed to load submission")
	}
	if submission.TeacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
	}
	if submission.StudentID != req.StudentID {
		return nil, appErrors.Field("studentId", "eqfield", "studentId does not match the submission")
	}

	grade := &models.Grade{
		SubmissionID: submission.ID,
		TeacherID:    req.TeacherID,
		StudentID:    submission.StudentID,
		Score:        *req.Score,
		Feedback:     req.Feedback,
		GradedAt:     s.now().UTC(),
	}
	created, err := s.repo.Upsert(ctx, grade)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save grade")
	}
	_ = s.cache.Invalidate(ctx, statsPattern(submission.StudentID))

	if created {
		s.metrics.RecordLifecycle(EventGradeCreated)
		s.notifier.Notify(ctx, submission.StudentUserID, "Homework graded",
			fmt.Sprintf("Your homework %s was graded. Score: %s", submission.HomeworkTitle, formatScore(grade.Score)))
	} else {
		s.metrics.RecordLifecycle(EventGradeUpdated)
		if s.cfg.NotifyOnRegrade {
			s.notifier.Notify(ctx, submission.StudentUserID, "Grade updated",
				fmt.Sprintf("Your grade for %s was updated. Score: %s", submission.HomeworkTitle, formatScore(grade.Score)))
		}
	}

	s.logger.Info("submission graded",
		zap.String("submission_id", submission.ID),
		zap.String("teacher_id", req.TeacherID),
		zap.Bool("created", created))
	return grade, nil
}

// List returns grades visible to the caller.
func (s *GradeService) List(ctx context.Context, claims *models.JWTClaims, query dto.GradeQuery) ([]models.GradeDetail, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid grade filter")
	}
	if err := s.ensureFilterTargets(ctx, query); err != nil {
		return nil, err
	}

	filter := scopeGradeFilter(a, models.GradeFilter{
		StudentID:    query.StudentID,
		SubmissionID: query.SubmissionID,
		HomeworkID:   query.HomeworkID,
		SubjectID:    query.SubjectID,
	})
	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list grades")
	}
	return grades, nil
}

func (s *GradeService) ensureFilterTargets(ctx context.Context, query dto.GradeQuery) error {
	if query.StudentID != "" {
		if _, err := s.students.FindByID(ctx, query.StudentID); err != nil {
			return notFoundOr(err, "student not found", "failed to load student")
		}
	}
	if query.SubmissionID != "" {
		if _, err := s.submissions.FindByID(ctx, query.SubmissionID); err != nil {
			return notFoundOr(err, "submission not found", "failed to load submission")
		}
	}
	if query.HomeworkID != "" {
		if _, err := s.homeworks.FindByID(ctx, query.HomeworkID); err != nil {
			return notFoundOr(err, "homework not found", "failed to load homework")
		}
	}
	if query.SubjectID != "" {
		if _, err := s.subjects.FindByID(ctx, query.SubjectID); err != nil {
			return notFoundOr(err, "subject not found", "failed to load subject")
		}
	}
	return nil
}

func formatScore(score float64) string {
	return fmt.Sprintf("%g", score)
}
