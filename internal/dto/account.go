package dto

import "github.com/noah-isme/saberpro-api/internal/models"

// RegisterRequest self-registers a student account.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateTeacherRequest provisions a teacher account.
type CreateTeacherRequest struct {
	FullName   string `json:"fullName" validate:"required,max=120"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Department string `json:"department" validate:"max=120"`
	Bio        string `json:"bio"`
}

// UpdateProfileRequest updates the caller's display data.
type UpdateProfileRequest struct {
	FullName string  `json:"fullName" validate:"required,max=120"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
}

// AccountResponse describes a user with its role profile.
type AccountResponse struct {
	User    models.User     `json:"user"`
	Student *models.Student `json:"student,omitempty"`
	Teacher *models.Teacher `json:"teacher,omitempty"`
}
