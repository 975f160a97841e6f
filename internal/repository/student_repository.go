package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/saberpro-api/internal/models"
)

// StudentRepository manages student profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns the student profile joined with its user account.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.user_id, s.student_code, s.is_activated, s.joined_at, u.full_name, u.email
FROM students s JOIN users u ON u.id = s.user_id WHERE s.id = $1`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// FindByUserID returns the profile owned by a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT id, user_id, student_code, is_activated, joined_at FROM students WHERE user_id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by user: %w", err)
	}
	return &student, nil
}

// Delete hard-deletes the student, every row that depends on it, and its user account.
func (r *StudentRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	steps := []cascadeStep{
		{"grades", `DELETE FROM grades WHERE student_id = $1`},
		{"answers", `DELETE FROM answers WHERE submission_id IN (SELECT id FROM submissions WHERE student_id = $1)`},
		{"submissions", `DELETE FROM submissions WHERE student_id = $1`},
		{"enrollments", `DELETE FROM enrollments WHERE student_id = $1`},
		{"notifications", `DELETE FROM notifications WHERE user_id = (SELECT user_id FROM students WHERE id = $1)`},
	}
	if err = runCascade(ctx, tx, steps, id); err != nil {
		return err
	}
	if err = deleteOwned(ctx, tx, "student account", `DELETE FROM users WHERE id = (SELECT user_id FROM students WHERE id = $1)`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}
