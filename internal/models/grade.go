package models

import "time"

// Grade is the score and feedback attached 1:1 to a submission.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	SubmissionID string    `db:"submission_id" json:"submission_id"`
	TeacherID    string    `db:"teacher_id" json:"teacher_id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Score        float64   `db:"score" json:"score"`
	Feedback     *string   `db:"feedback" json:"feedback,omitempty"`
	GradedAt     time.Time `db:"graded_at" json:"graded_at"`
}

// GradeDetail enriches Grade with homework and subject context for listings and exports.
type GradeDetail struct {
	Grade
	HomeworkID    string `db:"homework_id" json:"homework_id"`
	HomeworkTitle string `db:"homework_title" json:"homework_title"`
	SubjectID     string `db:"subject_id" json:"subject_id"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
}

// GradeFilter allows querying of grades. TeacherID restricts to that teacher's subjects.
type GradeFilter struct {
	StudentID    string
	SubmissionID string
	HomeworkID   string
	SubjectID    string
	TeacherID    string
}
