package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type studentProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type teacherProfileReader interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

// actor is the resolved caller: role plus the Student or Teacher profile the session owns.
type actor struct {
	userID    string
	role      models.UserRole
	studentID string
	teacherID string
}

func (a *actor) isAdmin() bool { return a.role.IsAdmin() }

// ownsStudent reports whether the actor may act for the given student profile.
func (a *actor) ownsStudent(studentID string) bool {
	return a.isAdmin() || (a.role == models.RoleStudent && a.studentID == studentID)
}

// teachesSubject reports whether the actor may act on a subject owned by teacherID.
func (a *actor) teachesSubject(teacherID string) bool {
	return a.isAdmin() || (a.role == models.RoleTeacher && a.teacherID == teacherID)
}

type actorResolver struct {
	students studentProfileReader
	teachers teacherProfileReader
}

func (r actorResolver) resolve(ctx context.Context, claims *models.JWTClaims) (*actor, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	a := &actor{userID: claims.UserID, role: claims.Role}
	switch claims.Role {
	case models.RoleStudent:
		student, err := r.students.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "student profile not found")
			}
			return nil, appErrors.Internal(err, "failed to resolve student profile")
		}
		a.studentID = student.ID
	case models.RoleTeacher:
		teacher, err := r.teachers.FindByUserID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrForbidden, "teacher profile not found")
			}
			return nil, appErrors.Internal(err, "failed to resolve teacher profile")
		}
		a.teacherID = teacher.ID
	case models.RoleAdmin, models.RoleSuperAdmin:
	default:
		return nil, appErrors.ErrForbidden
	}
	return a, nil
}

func scopeEnrollmentFilter(a *actor, filter models.EnrollmentFilter) models.EnrollmentFilter {
	switch a.role {
	case models.RoleStudent:
		filter.StudentID = a.studentID
	case models.RoleTeacher:
		filter.TeacherID = a.teacherID
	}
	return filter
}

func scopeHomeworkFilter(a *actor, filter models.HomeworkFilter) models.HomeworkFilter {
	switch a.role {
	case models.RoleStudent:
		filter.StudentID = a.studentID
	case models.RoleTeacher:
		filter.TeacherID = a.teacherID
	}
	return filter
}

func scopeSubmissionFilter(a *actor, filter models.SubmissionFilter) models.SubmissionFilter {
	switch a.role {
	case models.RoleStudent:
		filter.StudentID = a.studentID
	case models.RoleTeacher:
		filter.TeacherID = a.teacherID
	}
	return filter
}

func scopeGradeFilter(a *actor, filter models.GradeFilter) models.GradeFilter {
	switch a.role {
	case models.RoleStudent:
		filter.StudentID = a.studentID
	case models.RoleTeacher:
		filter.TeacherID = a.teacherID
	}
	return filter
}

// notFoundOr maps sql.ErrNoRows to a NOT_FOUND error carrying msg, anything else to INTERNAL_ERROR.
func notFoundOr(err error, msg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, msg)
	}
	return appErrors.Internal(err, internalMsg)
}

// requireID rejects path and query identifiers that are not UUIDs before they reach the store.
func requireID(field, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return appErrors.Field(field, "uuid", field+" must be a valid id")
	}
	return nil
}
