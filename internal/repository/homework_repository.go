package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/saberpro-api/internal/models"
)

const (
	homeworkColumns = `h.id, h.title, h.description, h.subject_id, h.teacher_id, h.due_date, h.allow_file_upload, h.total_points, h.created_at`
	questionColumns = `id, homework_id, position, text, type, points, options, correct_answer`
)

// HomeworkRepository persists homeworks and their questions.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs the repository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// Create inserts the homework and all of its questions in one transaction.
func (r *HomeworkRepository) Create(ctx context.Context, homework *models.Homework) (err error) {
	if homework.ID == "" {
		homework.ID = uuid.NewString()
	}
	if homework.CreatedAt.IsZero() {
		homework.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create homework: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const homeworkQuery = `INSERT INTO homeworks (id, title, description, subject_id, teacher_id, due_date, allow_file_upload, total_points, created_at)
VALUES (:id, :title, :description, :subject_id, :teacher_id, :due_date, :allow_file_upload, :total_points, :created_at)`
	if _, err = tx.NamedExecContext(ctx, homeworkQuery, homework); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}

	const questionQuery = `INSERT INTO questions (id, homework_id, position, text, type, points, options, correct_answer)
VALUES (:id, :homework_id, :position, :text, :type, :points, :options, :correct_answer)`
	for i := range homework.Questions {
		question := &homework.Questions[i]
		if question.ID == "" {
			question.ID = uuid.NewString()
		}
		question.HomeworkID = homework.ID
		if _, err = tx.NamedExecContext(ctx, questionQuery, question); err != nil {
			return fmt.Errorf("create question %d: %w", question.Order, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create homework: %w", err)
	}
	return nil
}

// FindByID returns a homework with its questions ordered by position.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	var homework models.Homework
	if err := r.db.GetContext(ctx, &homework, `SELECT `+homeworkColumns+` FROM homeworks h WHERE h.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find homework: %w", err)
	}
	questions, err := r.questionsFor(ctx, []string{homework.ID})
	if err != nil {
		return nil, err
	}
	homework.Questions = questions[homework.ID]
	return &homework, nil
}

// List returns homeworks matching the filter, each with its questions, soonest due first.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, error) {
	var conditions []string
	var args []interface{}
	if filter.HomeworkID != "" {
		conditions = append(conditions, fmt.Sprintf("h.id = $%d", len(args)+1))
		args = append(args, filter.HomeworkID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("h.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("h.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("h.subject_id IN (SELECT subject_id FROM enrollments WHERE student_id = $%d AND status = $%d)", len(args)+1, len(args)+2))
		args = append(args, filter.StudentID, models.EnrollmentStatusApproved)
	}

	query := `SELECT ` + homeworkColumns + ` FROM homeworks h`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY h.due_date ASC"

	var homeworks []models.Homework
	if err := r.db.SelectContext(ctx, &homeworks, query, args...); err != nil {
		return nil, fmt.Errorf("list homeworks: %w", err)
	}
	if len(homeworks) == 0 {
		return homeworks, nil
	}

	ids := make([]string, len(homeworks))
	for i, hw := range homeworks {
		ids[i] = hw.ID
	}
	questions, err := r.questionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range homeworks {
		homeworks[i].Questions = questions[homeworks[i].ID]
	}
	return homeworks, nil
}

func (r *HomeworkRepository) questionsFor(ctx context.Context, homeworkIDs []string) (map[string][]models.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE homework_id = ANY($1) ORDER BY homework_id, position`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, query, pq.Array(homeworkIDs)); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	grouped := make(map[string][]models.Question, len(homeworkIDs))
	for _, q := range questions {
		grouped[q.HomeworkID] = append(grouped[q.HomeworkID], q)
	}
	return grouped, nil
}
