package dto

import (
	"time"

	"github.com/noah-isme/saberpro-api/internal/models"
)

// QuestionInput describes one question of a new homework.
type QuestionInput struct {
	Order         int                 `json:"order" validate:"required,gt=0"`
	Text          string              `json:"text" validate:"required"`
	Type          models.QuestionType `json:"type" validate:"required,oneof=MULTIPLE_CHOICE TRUE_FALSE OPEN_TEXT"`
	Points        int                 `json:"points" validate:"required,gt=0"`
	Options       []string            `json:"options,omitempty"`
	CorrectAnswer *string             `json:"correctAnswer,omitempty"`
}

// CreateHomeworkRequest creates a homework with its questions.
type CreateHomeworkRequest struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description"`
	SubjectID       string          `json:"subjectId" validate:"required,uuid"`
	TeacherID       string          `json:"teacherId" validate:"required,uuid"`
	DueDate         *time.Time      `json:"dueDate" validate:"required"`
	AllowFileUpload bool            `json:"allowFileUpload"`
	TotalPoints     *int            `json:"totalPoints,omitempty" validate:"omitempty,gt=0"`
	Questions       []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

// HomeworkQuery filters homework listings.
type HomeworkQuery struct {
	SubjectID  string `form:"subjectId" validate:"omitempty,uuid"`
	HomeworkID string `form:"homeworkId" validate:"omitempty,uuid"`
}

// HomeworkView is a homework as seen by the caller. Status is set for students only.
type HomeworkView struct {
	models.Homework
	Status models.HomeworkStatus `json:"status,omitempty"`
}

// StatsQuery selects whose progress to count.
type StatsQuery struct {
	StudentID string `form:"studentId" validate:"omitempty,uuid"`
	SubjectID string `form:"subjectId" validate:"omitempty,uuid"`
}

// HomeworkStats counts homeworks by derived status. Completed is submitted plus graded.
type HomeworkStats struct {
	StudentID string `json:"studentId"`
	SubjectID string `json:"subjectId,omitempty"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Overdue   int    `json:"overdue"`
	Graded    int    `json:"graded"`
}
