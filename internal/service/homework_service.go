package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type homeworkStore interface {
	Create(ctx context.Context, homework *models.Homework) error
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, error)
}

type approvedRoster interface {
	ListApprovedStudentUserIDs(ctx context.Context, subjectID string) ([]string, error)
}

type submissionProgress interface {
	ProgressByStudent(ctx context.Context, studentID string) (map[string]bool, error)
}

// HomeworkService creates homeworks and lists them with per-student status.
type HomeworkService struct {
	repo      homeworkStore
	subjects  subjectFinder
	roster    approvedRoster
	progress  submissionProgress
	actors    actorResolver
	notifier  Notifier
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewHomeworkService constructs HomeworkService.
func NewHomeworkService(
	repo homeworkStore,
	subjects subjectFinder,
	roster approvedRoster,
	progress submissionProgress,
	students studentProfileReader,
	teachers teacherProfileReader,
	notifier Notifier,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *HomeworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeworkService{
		repo:      repo,
		subjects:  subjects,
		roster:    roster,
		progress:  progress,
		actors:    actorResolver{students: students, teachers: teachers},
		notifier:  notifier,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Create persists a homework with its questions and notifies every approved student of the subject.
func (s *HomeworkService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateHomeworkRequest) (*models.Homework, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if a.role == models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students cannot create homework")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid homework payload")
	}
	if err := validateQuestions(req.Questions); err != nil {
		return nil, err
	}
	if a.role == models.RoleTeacher && a.teacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "teachers can only assign homework as themselves")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		return nil, notFoundOr(err, "subject not found", "failed to load subject")
	}
	if subject.TeacherID != req.TeacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "subject is not taught by this teacher")
	}

	homework := &models.Homework{
		Title:           req.Title,
		Description:     req.Description,
		SubjectID:       subject.ID,
		TeacherID:       req.TeacherID,
		DueDate:         req.DueDate.UTC(),
		AllowFileUpload: req.AllowFileUpload,
		CreatedAt:       s.now().UTC(),
		Questions:       make([]models.Question, len(req.Questions)),
	}
	sum := 0
	for i, q := range req.Questions {
		homework.Questions[i] = models.Question{
			Order:         q.Order,
			Text:          q.Text,
			Type:          q.Type,
			Points:        q.Points,
			Options:       models.StringList(q.Options),
			CorrectAnswer: q.CorrectAnswer,
		}
		sum += q.Points
	}
	homework.TotalPoints = sum
	if req.TotalPoints != nil {
		homework.TotalPoints = *req.TotalPoints
	}

	if err := s.repo.Create(ctx, homework); err != nil {
		return nil, appErrors.Internal(err, "failed to create homework")
	}
	s.metrics.RecordLifecycle(EventHomeworkCreated)
	_ = s.cache.Invalidate(ctx, statsPatternAll)

	recipients, err := s.roster.ListApprovedStudentUserIDs(ctx, subject.ID)
	if err != nil {
		s.logger.Warn("failed to load homework recipients", zap.String("subject_id", subject.ID), zap.Error(err))
	} else {
		s.notifier.NotifyMany(ctx, recipients, "New homework: "+homework.Title,
			fmt.Sprintf("%s has new homework due %s.", subject.Name, homework.DueDate.Format(time.RFC1123)))
	}
	return homework, nil
}

// List returns homeworks visible to the caller. Students get a derived status and no correct answers
// until they submit or the deadline passes.
func (s *HomeworkService) List(ctx context.Context, claims *models.JWTClaims, query dto.HomeworkQuery) ([]dto.HomeworkView, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid homework filter")
	}
	if query.HomeworkID != "" {
		if _, err := s.repo.FindByID(ctx, query.HomeworkID); err != nil {
			return nil, notFoundOr(err, "homework not found", "failed to load homework")
		}
	}

	filter := scopeHomeworkFilter(a, models.HomeworkFilter{HomeworkID: query.HomeworkID, SubjectID: query.SubjectID})
	homeworks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list homeworks")
	}

	views := make([]dto.HomeworkView, len(homeworks))
	if a.role != models.RoleStudent {
		for i, hw := range homeworks {
			views[i] = dto.HomeworkView{Homework: hw}
		}
		return views, nil
	}

	progress, err := s.progress.ProgressByStudent(ctx, a.studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load submission progress")
	}
	now := s.now()
	for i, hw := range homeworks {
		graded, submitted := progress[hw.ID]
		if !answersVisible(submitted, hw.DueDate, now) {
			hw.Questions = maskAnswers(hw.Questions)
		}
		views[i] = dto.HomeworkView{
			Homework: hw,
			Status:   DeriveHomeworkStatus(submitted, graded, hw.DueDate, now),
		}
	}
	return views, nil
}

func maskAnswers(questions []models.Question) []models.Question {
	masked := make([]models.Question, len(questions))
	for i, q := range questions {
		q.CorrectAnswer = nil
		masked[i] = q
	}
	return masked
}

func validateQuestions(questions []dto.QuestionInput) error {
	seen := make(map[int]struct{}, len(questions))
	for i, q := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if _, dup := seen[q.Order]; dup {
			return appErrors.Field(field+".order", "unique", fmt.Sprintf("question order %d is used more than once", q.Order))
		}
		seen[q.Order] = struct{}{}
		if q.Type == models.QuestionMultipleChoice {
			if len(q.Options) == 0 {
				return appErrors.Field(field+".options", "required", "multiple choice questions need options")
			}
			for _, opt := range q.Options {
				if strings.TrimSpace(opt) == "" {
					return appErrors.Field(field+".options", "required", "options cannot be blank")
				}
			}
		}
	}
	return nil
}
