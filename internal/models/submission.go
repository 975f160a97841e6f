package models

import "time"

// SubmissionStatus is the stored status of a submission row.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusGraded    SubmissionStatus = "GRADED"
)

// Submission is one student's one-time attempt at a homework.
type Submission struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	HomeworkID  string           `db:"homework_id" json:"homework_id"`
	Status      SubmissionStatus `db:"status" json:"status"`
	FileURL     *string          `db:"file_url" json:"file_url,omitempty"`
	SubmittedAt time.Time        `db:"submitted_at" json:"submitted_at"`
	Answers     []Answer         `db:"-" json:"answers"`
}

// SubmissionDetail carries ownership and scheduling context used for authorization and
// status derivation.
type SubmissionDetail struct {
	Submission
	StudentUserID string    `db:"student_user_id" json:"-"`
	StudentName   string    `db:"student_name" json:"student_name"`
	HomeworkTitle string    `db:"homework_title" json:"homework_title"`
	DueDate       time.Time `db:"due_date" json:"due_date"`
	SubjectID     string    `db:"subject_id" json:"subject_id"`
	TeacherID     string    `db:"teacher_id" json:"teacher_id"`
}

// Answer holds AnswerText for OPEN_TEXT questions or AnswerOption for choice questions.
type Answer struct {
	ID           string  `db:"id" json:"id"`
	SubmissionID string  `db:"submission_id" json:"submission_id"`
	QuestionID   string  `db:"question_id" json:"question_id"`
	AnswerText   *string `db:"answer_text" json:"answer_text,omitempty"`
	AnswerOption *string `db:"answer_option" json:"answer_option,omitempty"`
}

// SubmissionFilter scopes submission listings; TeacherID restricts to that teacher's subjects.
type SubmissionFilter struct {
	StudentID  string
	HomeworkID string
	SubjectID  string
	TeacherID  string
}
