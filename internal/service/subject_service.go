package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/internal/repository"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.SubjectDetail, error)
	Create(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
}

// SubjectService manages the subject catalogue.
type SubjectService struct {
	repo      subjectRepository
	teachers  teacherFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, teachers teacherFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, teachers: teachers, cache: cache, validator: validate, logger: logger}
}

// List returns subjects with pagination metadata.
func (s *SubjectService) List(ctx context.Context, query dto.SubjectQuery) ([]models.SubjectDetail, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Validation(err, "invalid subject filter")
	}
	filter := models.SubjectFilter{TeacherID: query.TeacherID, Search: query.Search, Page: query.Page, PageSize: query.PageSize}
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list subjects")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "subject not found", "failed to load subject")
	}
	return subject, nil
}

// Create validates and stores a subject owned by an existing teacher.
func (s *SubjectService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateSubjectRequest) (*models.SubjectDetail, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can create subjects")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid subject payload")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		return nil, notFoundOr(err, "teacher not found", "failed to load teacher")
	}

	subject := &models.Subject{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		TeacherID:   req.TeacherID,
	}
	if err := s.repo.Create(ctx, subject); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists")
		}
		return nil, appErrors.Internal(err, "failed to create subject")
	}
	return s.Get(ctx, subject.ID)
}

// Delete removes a subject and everything that depends on it. SUPERADMIN only.
func (s *SubjectService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "subject not found", "failed to delete subject")
	}
	_ = s.cache.Invalidate(ctx, statsPatternAll)
	s.logger.Warn("subject hard-deleted", zap.String("subject_id", id), zap.String("deleted_by", claims.UserID))
	return nil
}
