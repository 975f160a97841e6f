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

type submissionStore interface {
	Exists(ctx context.Context, studentID, homeworkID string) (bool, error)
	Create(ctx context.Context, submission *models.Submission) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error)
}

type homeworkFinder interface {
	FindByID(ctx context.Context, id string) (*models.Homework, error)
}

type enrollmentChecker interface {
	HasApproved(ctx context.Context, studentID, subjectID string) (bool, error)
}

type gradeMapper interface {
	MapBySubmission(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error)
}

// SubmissionService accepts one submission per student and homework before the deadline.
type SubmissionService struct {
	repo        submissionStore
	homeworks   homeworkFinder
	students    studentDirectory
	enrollments enrollmentChecker
	grades      gradeMapper
	actors      actorResolver
	notifier    Notifier
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService constructs SubmissionService.
func NewSubmissionService(
	repo submissionStore,
	homeworks homeworkFinder,
	students studentDirectory,
	teachers teacherProfileReader,
	enrollments enrollmentChecker,
	grades gradeMapper,
	notifier Notifier,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *SubmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		repo:        repo,
		homeworks:   homeworks,
		students:    students,
		enrollments: enrollments,
		grades:      grades,
		actors:      actorResolver{students: students, teachers: teachers},
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit stores the caller's answers for a homework.
func (s *SubmissionService) Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitHomeworkRequest) (*models.Submission, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if a.role != models.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit homework")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid submission payload")
	}
	if !a.ownsStudent(req.StudentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students can only submit for themselves")
	}

	homework, err := s.homeworks.FindByID(ctx, req.HomeworkID)
	if err != nil {
		return nil, notFoundOr(err, "homework not found", "failed to load homework")
	}
	now := s.now().UTC()
	if !now.Before(homework.DueDate) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "deadline passed")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, homework.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check submission")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already submitted")
	}

	approved, err := s.enrollments.HasApproved(ctx, req.StudentID, homework.SubjectID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to check enrollment")
	}
	if !approved {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not enrolled in this subject")
	}

	answers, err := buildAnswers(homework, req.Answers)
	if err != nil {
		return nil, err
	}
	if req.FileURL != nil && !homework.AllowFileUpload {
		return nil, appErrors.Field("fileUrl", "not_allowed", "this homework does not accept file uploads")
	}

	submission := &models.Submission{
		StudentID:   req.StudentID,
		HomeworkID:  homework.ID,
		FileURL:     req.FileURL,
		SubmittedAt: now,
		Answers:     answers,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already submitted")
		}
		return nil, appErrors.Internal(err, "failed to create submission")
	}

	s.metrics.RecordLifecycle(EventSubmissionCreated)
	_ = s.cache.Invalidate(ctx, statsPattern(req.StudentID))
	s.notifier.Notify(ctx, a.userID, "Submission received",
		fmt.Sprintf("Your submission for %s was received.", homework.Title))
	return submission, nil
}

// List returns submissions visible to the caller with their grade and derived status.
func (s *SubmissionService) List(ctx context.Context, claims *models.JWTClaims, query dto.SubmissionQuery) ([]dto.SubmissionView, error) {
	a, err := s.actors.resolve(ctx, claims)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Validation(err, "invalid submission filter")
	}
	if query.StudentID != "" {
		if _, err := s.students.FindByID(ctx, query.StudentID); err != nil {
			return nil, notFoundOr(err, "student not found", "failed to load student")
		}
	}
	if query.HomeworkID != "" {
		if _, err := s.homeworks.FindByID(ctx, query.HomeworkID); err != nil {
			return nil, notFoundOr(err, "homework not found", "failed to load homework")
		}
	}

	filter := scopeSubmissionFilter(a, models.SubmissionFilter{StudentID: query.StudentID, HomeworkID: query.HomeworkID})
	submissions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list submissions")
	}

	ids := make([]string, len(submissions))
	for i, sb := range submissions {
		ids[i] = sb.ID
	}
	grades, err := s.grades.MapBySubmission(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load grades")
	}

	now := s.now()
	views := make([]dto.SubmissionView, len(submissions))
	for i, sb := range submissions {
		view := dto.SubmissionView{SubmissionDetail: sb}
		if g, ok := grades[sb.ID]; ok {
			grade := g
			view.Grade = &grade
		}
		view.DerivedStatus = DeriveHomeworkStatus(true, view.Grade != nil, sb.DueDate, now)
		views[i] = view
	}
	return views, nil
}

// buildAnswers checks every answer targets a distinct question of the homework and carries
// exactly one of answerText or answerOption, matching the question type.
func buildAnswers(homework *models.Homework, inputs []dto.AnswerInput) ([]models.Answer, error) {
	questions := make(map[string]models.Question, len(homework.Questions))
	for _, q := range homework.Questions {
		questions[q.ID] = q
	}

	seen := make(map[string]struct{}, len(inputs))
	answers := make([]models.Answer, 0, len(inputs))
	for i, in := range inputs {
		question, ok := questions[in.QuestionID]
		if _, dup := seen[in.QuestionID]; !ok || dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "questions do not belong to this assignment")
		}
		seen[in.QuestionID] = struct{}{}

		field := fmt.Sprintf("answers[%d]", i)
		if (in.AnswerText == nil) == (in.AnswerOption == nil) {
			return nil, appErrors.Field(field, "xor", "provide either answerText or answerOption")
		}
		if question.Type == models.QuestionOpenText && in.AnswerText == nil {
			return nil, appErrors.Field(field+".answerText", "required", "open text questions take answerText")
		}
		if question.Type != models.QuestionOpenText && in.AnswerOption == nil {
			return nil, appErrors.Field(field+".answerOption", "required", "choice questions take answerOption")
		}
		if question.Type == models.QuestionMultipleChoice && !containsOption(question.Options, *in.AnswerOption) {
			return nil, appErrors.Field(field+".answerOption", "oneof", "answerOption is not one of the question options")
		}

		answers = append(answers, models.Answer{
			QuestionID:   in.QuestionID,
			AnswerText:   in.AnswerText,
			AnswerOption: in.AnswerOption,
		})
	}
	return answers, nil
}

func containsOption(options []string, value string) bool {
	for _, opt := range options {
		if opt == value {
			return true
		}
	}
	return false
}
