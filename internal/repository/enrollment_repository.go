package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/saberpro-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.id, e.student_id, e.subject_id, e.status, e.enrolled_at, e.updated_at,
        u.full_name AS student_name, s.student_code, s.user_id AS student_user_id,
        sj.name AS subject_name, sj.code AS subject_code, sj.teacher_id
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        JOIN subjects sj ON sj.id = e.subject_id`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments filtered by the provided criteria, newest first.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sj.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("e.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	query := enrollmentDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY e.enrolled_at DESC"

	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment with student and subject context.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.EnrollmentDetail, error) {
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, enrollmentDetailSelect+" WHERE e.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &detail, nil
}

// Exists reports whether any enrollment, whatever its status, binds the student to the subject.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND subject_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// HasApproved reports whether the student holds an APPROVED enrollment in the subject.
func (r *EnrollmentRepository) HasApproved(ctx context.Context, studentID, subjectID string) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE student_id = $1 AND subject_id = $2 AND status = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID, models.EnrollmentStatusApproved); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check approved enrollment: %w", err)
	}
	return true, nil
}

// Create persists a new enrollment. The (student_id, subject_id) constraint surfaces as ErrDuplicate.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.UpdatedAt.IsZero() {
		enrollment.UpdatedAt = enrollment.EnrolledAt
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusPending
	}
	const query = `INSERT INTO enrollments (id, student_id, subject_id, status, enrolled_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :status, :enrolled_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// UpdateStatus sets the status and bumps updated_at.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus, updatedAt time.Time) error {
	const query = `UPDATE enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListApprovedStudentUserIDs returns the user accounts of students approved in the subject.
func (r *EnrollmentRepository) ListApprovedStudentUserIDs(ctx context.Context, subjectID string) ([]string, error) {
	const query = `SELECT s.user_id FROM enrollments e JOIN students s ON s.id = e.student_id
        WHERE e.subject_id = $1 AND e.status = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectID, models.EnrollmentStatusApproved); err != nil {
		return nil, fmt.Errorf("list approved students: %w", err)
	}
	return ids, nil
}
