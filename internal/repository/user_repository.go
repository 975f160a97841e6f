package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/saberpro-api/internal/models"
)

const userColumns = `id, email, password_hash, full_name, role, image, onboarded, created_at, updated_at`

// UserRepository provides database access for user accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateProfile stores the display name and image and marks the account onboarded.
func (r *UserRepository) UpdateProfile(ctx context.Context, id, fullName string, image *string, updatedAt time.Time) error {
	const query = `UPDATE users SET full_name = $2, image = $3, onboarded = TRUE, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, fullName, image, updatedAt)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// StudentCodeExists reports whether a student code is already taken.
func (r *UserRepository) StudentCodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE student_code = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student code: %w", err)
	}
	return true, nil
}

// CreateStudentAccount inserts a STUDENT user and its profile in one transaction.
func (r *UserRepository) CreateStudentAccount(ctx context.Context, user *models.User, student *models.Student) (err error) {
	prepareUser(user, models.RoleStudent)
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.UserID = user.ID
	if student.JoinedAt.IsZero() {
		student.JoinedAt = user.CreatedAt
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student account: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertUser(ctx, tx, user); err != nil {
		return err
	}
	const query = `INSERT INTO students (id, user_id, student_code, is_activated, joined_at)
VALUES (:id, :user_id, :student_code, :is_activated, :joined_at)`
	if _, err = tx.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create student: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create student account: %w", err)
	}
	return nil
}

// CreateTeacherAccount inserts a TEACHER user and its profile in one transaction.
func (r *UserRepository) CreateTeacherAccount(ctx context.Context, user *models.User, teacher *models.Teacher) (err error) {
	prepareUser(user, models.RoleTeacher)
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	teacher.UserID = user.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create teacher account: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = insertUser(ctx, tx, user); err != nil {
		return err
	}
	const query = `INSERT INTO teachers (id, user_id, department, bio) VALUES (:id, :user_id, :department, :bio)`
	if _, err = tx.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create teacher account: %w", err)
	}
	return nil
}

func prepareUser(user *models.User, role models.UserRole) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Role = role
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = user.CreatedAt
}

func insertUser(ctx context.Context, tx *sqlx.Tx, user *models.User) error {
	const query = `INSERT INTO users (id, email, password_hash, full_name, role, image, onboarded, created_at, updated_at)
VALUES (:id, :email, :password_hash, :full_name, :role, :image, :onboarded, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}
