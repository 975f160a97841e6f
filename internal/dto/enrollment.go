package dto

import "github.com/noah-isme/saberpro-api/internal/models"

// CreateEnrollmentRequest requests or directly creates an enrollment.
type CreateEnrollmentRequest struct {
	StudentID string                  `json:"studentId" validate:"required,uuid"`
	SubjectID string                  `json:"subjectId" validate:"required,uuid"`
	Status    models.EnrollmentStatus `json:"status,omitempty" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// EnrollmentQuery filters enrollment listings.
type EnrollmentQuery struct {
	StudentID string                  `form:"studentId" validate:"omitempty,uuid"`
	SubjectID string                  `form:"subjectId" validate:"omitempty,uuid"`
	Status    models.EnrollmentStatus `form:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// SetEnrollmentStatusRequest approves or rejects an enrollment.
type SetEnrollmentStatusRequest struct {
	EnrollmentID string                  `json:"enrollmentId" validate:"required,uuid"`
	Status       models.EnrollmentStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Reason       string                  `json:"reason,omitempty" validate:"max=500"`
}
