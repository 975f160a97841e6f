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

const subjectDetailSelect = `SELECT sj.id, sj.name, sj.code, sj.description, sj.start_date, sj.end_date, sj.teacher_id, sj.created_at,
        t.user_id AS teacher_user_id, u.full_name AS teacher_name
        FROM subjects sj
        JOIN teachers t ON t.id = sj.teacher_id
        JOIN users u ON u.id = t.user_id`

// SubjectRepository handles subject persistence.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository instantiates the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List subjects with optional teacher and search filters.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	var conditions []string
	var args []interface{}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sj.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(sj.name) LIKE $%d OR LOWER(sj.code) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s%s ORDER BY sj.name ASC LIMIT %d OFFSET %d", subjectDetailSelect, clause, size, offset)
	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subjects sj"+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID fetches a subject with its teacher.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	var subject models.SubjectDetail
	if err := r.db.GetContext(ctx, &subject, subjectDetailSelect+" WHERE sj.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}
	return &subject, nil
}

// Create inserts a subject; a taken code yields ErrDuplicate.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subjects (id, name, code, description, start_date, end_date, teacher_id, created_at)
VALUES (:id, :name, :code, :description, :start_date, :end_date, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Delete removes the subject and its homeworks, questions, submissions, answers, grades and
// enrollments in one transaction.
func (r *SubjectRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete subject: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = runCascade(ctx, tx, subjectTreeSteps(`SELECT $1::uuid`), id); err != nil {
		return err
	}
	if err = deleteOwned(ctx, tx, "subject", `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subject: %w", err)
	}
	return nil
}
