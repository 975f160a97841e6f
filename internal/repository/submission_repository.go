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

const submissionDetailSelect = `SELECT sb.id, sb.student_id, sb.homework_id, sb.status, sb.file_url, sb.submitted_at,
        s.user_id AS student_user_id, u.full_name AS student_name,
        h.title AS homework_title, h.due_date, h.subject_id, sj.teacher_id
        FROM submissions sb
        JOIN students s ON s.id = sb.student_id
        JOIN users u ON u.id = s.user_id
        JOIN homeworks h ON h.id = sb.homework_id
        JOIN subjects sj ON sj.id = h.subject_id`

// SubmissionRepository persists submissions and their answers.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Exists reports whether the student already submitted the homework.
func (r *SubmissionRepository) Exists(ctx context.Context, studentID, homeworkID string) (bool, error) {
	const query = `SELECT 1 FROM submissions WHERE student_id = $1 AND homework_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, homeworkID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check submission: %w", err)
	}
	return true, nil
}

// Create inserts the submission with its answers in one transaction. A second submission for
// the same (student, homework) yields ErrDuplicate.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) (err error) {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}
	submission.Status = models.SubmissionStatusSubmitted

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create submission: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const submissionQuery = `INSERT INTO submissions (id, student_id, homework_id, status, file_url, submitted_at)
VALUES (:id, :student_id, :homework_id, :status, :file_url, :submitted_at)`
	if _, err = tx.NamedExecContext(ctx, submissionQuery, submission); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create submission: %w", err)
	}

	const answerQuery = `INSERT INTO answers (id, submission_id, question_id, answer_text, answer_option)
VALUES (:id, :submission_id, :question_id, :answer_text, :answer_option)`
	for i := range submission.Answers {
		answer := &submission.Answers[i]
		if answer.ID == "" {
			answer.ID = uuid.NewString()
		}
		answer.SubmissionID = submission.ID
		if _, err = tx.NamedExecContext(ctx, answerQuery, answer); err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create submission: %w", err)
	}
	return nil
}

// FindByID returns a submission with ownership context and answers.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.SubmissionDetail, error) {
	var detail models.SubmissionDetail
	if err := r.db.GetContext(ctx, &detail, submissionDetailSelect+" WHERE sb.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission: %w", err)
	}
	answers, err := r.answersFor(ctx, []string{detail.ID})
	if err != nil {
		return nil, err
	}
	detail.Answers = answers[detail.ID]
	return &detail, nil
}

// List returns submissions matching the filter with their answers, newest first.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("sb.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.HomeworkID != "" {
		conditions = append(conditions, fmt.Sprintf("sb.homework_id = $%d", len(args)+1))
		args = append(args, filter.HomeworkID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("h.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("sj.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}

	query := submissionDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sb.submitted_at DESC"

	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	if len(submissions) == 0 {
		return submissions, nil
	}

	ids := make([]string, len(submissions))
	for i, sb := range submissions {
		ids[i] = sb.ID
	}
	answers, err := r.answersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		submissions[i].Answers = answers[submissions[i].ID]
	}
	return submissions, nil
}

// ProgressByStudent maps each homework the student submitted to whether it has been graded.
func (r *SubmissionRepository) ProgressByStudent(ctx context.Context, studentID string) (map[string]bool, error) {
	const query = `SELECT sb.homework_id, (g.id IS NOT NULL) AS graded
        FROM submissions sb LEFT JOIN grades g ON g.submission_id = sb.id
        WHERE sb.student_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("load submission progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[string]bool)
	for rows.Next() {
		var homeworkID string
		var graded bool
		if err := rows.Scan(&homeworkID, &graded); err != nil {
			return nil, fmt.Errorf("scan submission progress: %w", err)
		}
		progress[homeworkID] = graded
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submission progress: %w", err)
	}
	return progress, nil
}

func (r *SubmissionRepository) answersFor(ctx context.Context, submissionIDs []string) (map[string][]models.Answer, error) {
	const query = `SELECT id, submission_id, question_id, answer_text, answer_option FROM answers WHERE submission_id = ANY($1)`
	var answers []models.Answer
	if err := r.db.SelectContext(ctx, &answers, query, pq.Array(submissionIDs)); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	grouped := make(map[string][]models.Answer, len(submissionIDs))
	for _, a := range answers {
		grouped[a.SubmissionID] = append(grouped[a.SubmissionID], a)
	}
	return grouped, nil
}
