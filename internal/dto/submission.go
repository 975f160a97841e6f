package dto

import "github.com/noah-isme/saberpro-api/internal/models"

// AnswerInput answers one question; exactly one of AnswerText and AnswerOption is set.
type AnswerInput struct {
	QuestionID   string  `json:"questionId" validate:"required,uuid"`
	AnswerText   *string `json:"answerText,omitempty"`
	AnswerOption *string `json:"answerOption,omitempty"`
}

// SubmitHomeworkRequest submits a student's answers.
type SubmitHomeworkRequest struct {
	StudentID  string        `json:"studentId" validate:"required,uuid"`
	HomeworkID string        `json:"homeworkId" validate:"required,uuid"`
	Answers    []AnswerInput `json:"answers" validate:"dive"`
	FileURL    *string       `json:"fileUrl,omitempty" validate:"omitempty,url"`
}

// SubmissionQuery filters submission listings.
type SubmissionQuery struct {
	StudentID  string `form:"studentId" validate:"omitempty,uuid"`
	HomeworkID string `form:"homeworkId" validate:"omitempty,uuid"`
}

// SubmissionView is a submission with its optional grade and derived status.
type SubmissionView struct {
	models.SubmissionDetail
	Grade         *models.Grade         `json:"grade,omitempty"`
	DerivedStatus models.HomeworkStatus `json:"derived_status"`
}
