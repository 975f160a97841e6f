package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/saberpro-api/internal/models"
)

// TeacherRepository manages teacher profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID returns the teacher profile joined with its user account.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.department, t.bio, u.full_name, u.email
FROM teachers t JOIN users u ON u.id = t.user_id WHERE t.id = $1`
	var teacher models.TeacherDetail
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &teacher, nil
}

// FindByUserID returns the profile owned by a user account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, department, bio FROM teachers WHERE user_id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher by user: %w", err)
	}
	return &teacher, nil
}

// Delete hard-deletes the teacher with every subject they own and the subjects' dependents.
func (r *TeacherRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete teacher: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	steps := subjectTreeSteps(`SELECT id FROM subjects WHERE teacher_id = $1`)
	steps = append(steps,
		cascadeStep{"subjects", `DELETE FROM subjects WHERE teacher_id = $1`},
		cascadeStep{"grades", `DELETE FROM grades WHERE teacher_id = $1`},
		cascadeStep{"notifications", `DELETE FROM notifications WHERE user_id = (SELECT user_id FROM teachers WHERE id = $1)`},
	)
	if err = runCascade(ctx, tx, steps, id); err != nil {
		return err
	}
	if err = deleteOwned(ctx, tx, "teacher account", `DELETE FROM users WHERE id = (SELECT user_id FROM teachers WHERE id = $1)`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete teacher: %w", err)
	}
	return nil
}
