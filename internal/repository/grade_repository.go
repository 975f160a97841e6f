package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/saberpro-api/internal/models"
)

const gradeDetailSelect = `SELECT g.id, g.submission_id, g.teacher_id, g.student_id, g.score, g.feedback, g.graded_at,
        h.id AS homework_id, h.title AS homework_title, sj.id AS subject_id, sj.name AS subject_name
        FROM grades g
        JOIN submissions sb ON sb.id = g.submission_id
        JOIN homeworks h ON h.id = sb.homework_id
        JOIN subjects sj ON sj.id = h.subject_id`

// GradeRepository persists grades.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a new repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert writes the single grade row of a submission and marks the submission GRADED, in one
// transaction. It reports whether the row was newly inserted.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) (created bool, err error) {
	if grade.GradedAt.IsZero() {
		grade.GradedAt = time.Now().UTC()
	}
	candidateID := grade.ID
	if candidateID == "" {
		candidateID = uuid.NewString()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin grade upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const upsert = `INSERT INTO grades (id, submission_id, teacher_id, student_id, score, feedback, graded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (submission_id)
DO UPDATE SET score = EXCLUDED.score, feedback = EXCLUDED.feedback, teacher_id = EXCLUDED.teacher_id, graded_at = EXCLUDED.graded_at
RETURNING id, (xmax = 0) AS inserted`
	var id string
	if err = tx.QueryRowxContext(ctx, upsert, candidateID, grade.SubmissionID, grade.TeacherID, grade.StudentID,
		grade.Score, grade.Feedback, grade.GradedAt).Scan(&id, &created); err != nil {
		return false, fmt.Errorf("upsert grade: %w", err)
	}
	grade.ID = id

	if _, err = tx.ExecContext(ctx, `UPDATE submissions SET status = $2 WHERE id = $1`, grade.SubmissionID, models.SubmissionStatusGraded); err != nil {
		return false, fmt.Errorf("mark submission graded: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit grade upsert: %w", err)
	}
	return created, nil
}

// List returns grades matching the filter with homework and subject context.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubmissionID != "" {
		conditions = append(conditions, fmt.Sprintf("g.submission_id = $%d", len(args)+1))
		args = append(args, filter.SubmissionID)
	}
	if filter.HomeworkID != "" {
		conditions = append(conditions, fmt.Sprintf("h.id = $%d", len(args)+1))
		args = append(args, filter.HomeworkID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("sj.id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sj.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}

	query := gradeDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY g.graded_at DESC"

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// MapBySubmission returns the grades of the given submissions keyed by submission id.
func (r *GradeRepository) MapBySubmission(ctx context.Context, submissionIDs []string) (map[string]models.Grade, error) {
	result := make(map[string]models.Grade, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return result, nil
	}
	const query = `SELECT id, submission_id, teacher_id, student_id, score, feedback, graded_at FROM grades WHERE submission_id = ANY($1)`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, pq.Array(submissionIDs)); err != nil {
		return nil, fmt.Errorf("map grades: %w", err)
	}
	for _, g := range grades {
		result[g.SubmissionID] = g
	}
	return result, nil
}
