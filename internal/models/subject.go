package models

import "time"

// Subject represents a course taught by one teacher.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// SubjectDetail enriches Subject with the owning teacher's user account.
type SubjectDetail struct {
	Subject
	TeacherUserID string `db:"teacher_user_id" json:"teacher_user_id"`
	TeacherName   string `db:"teacher_name" json:"teacher_name"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	TeacherID string
	Search    string
	Page      int
	PageSize  int
}
