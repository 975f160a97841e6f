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

const statsPatternAll = "stats:student:*"

func statsKey(studentID, subjectID string) string {
	if subjectID == "" {
		subjectID = "all"
	}
	return fmt.Sprintf("stats:student:%s:subject:%s", studentID, subjectID)
}

func statsPattern(studentID string) string {
	return fmt.Sprintf("stats:student:%s:*", studentID)
}

type homeworkLister interface {
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, error)
}

// StatsService counts a student's homeworks by derived status.
type StatsService struct {
	homeworks homeworkLister
	progress  submissionProgress
	students  studentDirectory
	subjects  subjectFinder
	actors    actorResolver
	cache     *CacheService
	ttl       time.Duration
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStatsService constructs StatsService.
func NewStatsService(homeworks homeworkLister, progress submissionProgress, students studentDirectory, teachers teacherProfileReader, subjects subjectFinder, cache *CacheService, ttl time.Duration, validate *validator.Validate, logger *zap.Logger) *StatsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		homeworks: homeworks,
		progress:  progress,
		students:  students,
		subjects:  subjects,
		actors:    actorResolver{students: students, teachers: teachers},
		cache:     cache,
		ttl:       ttl,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns progress counts. Students always see their own; teachers must name a subject they
// own; staff must name the student.
func (s *StatsService) Get(ctx context.Context, claims *models.JWTClaims, query dto.StatsQuery) (*dto.HomeworkStats, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid stats filter")
	}

	studentID := query.StudentID
	if a.role == models.RoleStudent {
		studentID = a.studentID
	}
	if studentID == "" {
		return nil, appErrors.Field("studentId", "required", "studentId is required")
	}
	if a.role == models.RoleTeacher && query.SubjectID == "" {
		return nil, appErrors.Field("subjectId", "required", "subjectId is required")
	}
	if query.SubjectID != "" {
		subject, err := s.subjects.FindByID(ctx, query.SubjectID)
		if err != nil {
			return nil, notFoundOr(err, "subject not found", "failed to load subject")
		}
		if a.role == models.RoleTeacher && !a.teachesSubject(subject.TeacherID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
		}
	}
	if a.role != models.RoleStudent {
		if _, err := s.students.FindByID(ctx, studentID); err != nil {
			return nil, notFoundOr(err, "student not found", "failed to load student")
		}
	}

	key := statsKey(studentID, query.SubjectID)
	var cached dto.HomeworkStats
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	homeworks, err := s.homeworks.List(ctx, models.HomeworkFilter{StudentID: studentID, SubjectID: query.SubjectID})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list homeworks")
	}
	progress, err := s.progress.ProgressByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load submission progress")
	}

	now := s.now()
	stats := countStatuses(homeworks, progress, now)
	stats.StudentID = studentID
	stats.SubjectID = query.SubjectID
	_ = s.cache.Set(ctx, key, stats, statsTTL(homeworks, progress, now, s.ttl))
	return &stats, nil
}

// statsTTL caps ttl so a cached entry expires once the earliest unsubmitted homework turns
// overdue.
func statsTTL(homeworks []models.Homework, progress map[string]bool, now time.Time, ttl time.Duration) time.Duration {
	for _, hw := range homeworks {
		if _, submitted := progress[hw.ID]; submitted || now.After(hw.DueDate) {
			continue
		}
		if until := hw.DueDate.Sub(now) + time.Millisecond; ttl <= 0 || until < ttl {
			ttl = until
		}
	}
	return ttl
}

func countStatuses(homeworks []models.Homework, progress map[string]bool, now time.Time) dto.HomeworkStats {
	stats := dto.HomeworkStats{Total: len(homeworks)}
	for _, hw := range homeworks {
		graded, submitted := progress[hw.ID]
		switch DeriveHomeworkStatus(submitted, graded, hw.DueDate, now) {
		case models.HomeworkStatusGraded:
			stats.Graded++
			stats.Completed++
		case models.HomeworkStatusSubmitted:
			stats.Completed++
		case models.HomeworkStatusOverdue:
			stats.Overdue++
		default:
			stats.Pending++
		}
	}
	return stats
}
