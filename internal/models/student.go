package models

import "time"

// Student is the learner profile owned by a STUDENT user.
type Student struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	StudentCode string    `db:"student_code" json:"student_code"`
	IsActivated bool      `db:"is_activated" json:"is_activated"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}

// StudentDetail joins the owning user's identity.
type StudentDetail struct {
	Student
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
}
