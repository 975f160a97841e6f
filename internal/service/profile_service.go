package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/internal/repository"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type profileUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, fullName string, image *string, updatedAt time.Time) error
	CreateTeacherAccount(ctx context.Context, user *models.User, teacher *models.Teacher) error
}

type studentAccounts interface {
	studentDirectory
	Delete(ctx context.Context, id string) error
}

type teacherAccounts interface {
	teacherProfileReader
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	Delete(ctx context.Context, id string) error
}

// ProfileService manages the current user's profile, teacher provisioning and hard deletes.
type ProfileService struct {
	users     profileUserRepository
	students  studentAccounts
	teachers  teacherAccounts
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs ProfileService.
func NewProfileService(users profileUserRepository, students studentAccounts, teachers teacherAccounts, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{users: users, students: students, teachers: teachers, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Me returns the caller with their role profile.
func (s *ProfileService) Me(ctx context.Context, claims *models.JWTClaims) (*dto.AccountResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account no longer exists")
		}
		return nil, appErrors.Internal(err, "failed to load user")
	}
	resp := &dto.AccountResponse{User: *user}

	switch user.Role {
	case models.RoleStudent:
		student, err := s.students.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load student profile")
		}
		resp.Student = student
	case models.RoleTeacher:
		teacher, err := s.teachers.FindByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Internal(err, "failed to load teacher profile")
		}
		resp.Teacher = teacher
	}
	return resp, nil
}

// UpdateProfile stores name and image and marks the account onboarded.
func (s *ProfileService) UpdateProfile(ctx context.Context, claims *models.JWTClaims, req dto.UpdateProfileRequest) (*dto.AccountResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid profile payload")
	}
	if err := s.users.UpdateProfile(ctx, claims.UserID, strings.TrimSpace(req.FullName), req.Image, s.now().UTC()); err != nil {
		return nil, notFoundOr(err, "user not found", "failed to update profile")
	}
	return s.Me(ctx, claims)
}

// CreateTeacher provisions a TEACHER account and profile.
func (s *ProfileService) CreateTeacher(ctx context.Context, claims *models.JWTClaims, req dto.CreateTeacherRequest) (*dto.AccountResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !claims.Role.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can create teachers")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid teacher payload")
	}
	email := strings.ToLower(req.Email)
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Internal(err, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	user := &models.User{Email: email, PasswordHash: string(hash), FullName: req.FullName}
	teacher := &models.Teacher{Department: req.Department, Bio: req.Bio}
	if err := s.users.CreateTeacherAccount(ctx, user, teacher); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
		}
		return nil, appErrors.Internal(err, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.String("created_by", claims.UserID))
	return &dto.AccountResponse{User: *user, Teacher: teacher}, nil
}

// DeleteStudent hard-deletes a student with all dependent rows. SUPERADMIN only.
func (s *ProfileService) DeleteStudent(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return notFoundOr(err, "student not found", "failed to delete student")
	}
	_ = s.cache.Invalidate(ctx, statsPattern(id))
	s.logger.Warn("student hard-deleted", zap.String("student_id", id), zap.String("deleted_by", claims.UserID))
	return nil
}

// DeleteTeacher hard-deletes a teacher, their subjects and all dependent rows. SUPERADMIN only.
func (s *ProfileService) DeleteTeacher(ctx context.Context, claims *models.JWTClaims, id string) error {
	if err := requireSuperAdmin(claims); err != nil {
		return err
	}
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.teachers.Delete(ctx, id); err != nil {
		return notFoundOr(err, "teacher not found", "failed to delete teacher")
	}
	_ = s.cache.Invalidate(ctx, statsPatternAll)
	s.logger.Warn("teacher hard-deleted", zap.String("teacher_id", id), zap.String("deleted_by", claims.UserID))
	return nil
}

func requireSuperAdmin(claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleSuperAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only superadmins can hard-delete records")
	}
	return nil
}
