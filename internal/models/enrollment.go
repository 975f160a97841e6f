package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending  EnrollmentStatus = "PENDING"
	EnrollmentStatusApproved EnrollmentStatus = "APPROVED"
	EnrollmentStatusRejected EnrollmentStatus = "REJECTED"
)

// Enrollment binds a student to a subject with an approval status.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	SubjectID  string           `db:"subject_id" json:"subject_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with student and subject info.
type EnrollmentDetail struct {
	Enrollment
	StudentName   string `db:"student_name" json:"student_name"`
	StudentCode   string `db:"student_code" json:"student_code"`
	StudentUserID string `db:"student_user_id" json:"-"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	SubjectCode   string `db:"subject_code" json:"subject_code"`
	TeacherID     string `db:"teacher_id" json:"teacher_id"`
}

// EnrollmentFilter provides filters for listing enrollments. TeacherID restricts results to
// subjects owned by that teacher.
type EnrollmentFilter struct {
	StudentID string
	SubjectID string
	TeacherID string
	Status    EnrollmentStatus
}
