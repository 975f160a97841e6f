package service

import (
	"time"

	"github.com/noah-isme/saberpro-api/internal/models"
)

// DeriveHomeworkStatus computes the status of a homework for one student. A homework is overdue
// only once now is strictly after its due date.
func DeriveHomeworkStatus(hasSubmission, hasGrade bool, dueDate, now time.Time) models.HomeworkStatus {
	switch {
	case hasGrade:
		return models.HomeworkStatusGraded
	case hasSubmission:
		return models.HomeworkStatusSubmitted
	case now.After(dueDate):
		return models.HomeworkStatusOverdue
	default:
		return models.HomeworkStatusPending
	}
}

// answersVisible reports whether a student may see the correct answers of a homework.
func answersVisible(submitted bool, dueDate, now time.Time) bool {
	return submitted || now.After(dueDate)
}
