package dto

import "time"

// CreateSubjectRequest creates a subject owned by a teacher.
type CreateSubjectRequest struct {
	Name        string    `json:"name" validate:"required,max=120"`
	Code        string    `json:"code" validate:"required,max=32"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"startDate" validate:"required"`
	EndDate     time.Time `json:"endDate" validate:"required,gtefield=StartDate"`
	TeacherID   string    `json:"teacherId" validate:"required,uuid"`
}

// SubjectQuery filters subject listings.
type SubjectQuery struct {
	TeacherID string `form:"teacherId" validate:"omitempty,uuid"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}
