package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/models"
)

func strPtr(v string) *string { return &v }

func TestSubmissionRepositoryCreateWithAnswers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO submissions").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO answers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO answers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	submission := &models.Submission{
		StudentID:  "stu-1",
		HomeworkID: "hw-1",
		Answers: []models.Answer{
			{QuestionID: "q-1", AnswerOption: strPtr("a")},
			{QuestionID: "q-2", AnswerText: strPtr("because")},
		},
	}
	require.NoError(t, repo.Create(context.Background(), submission))
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	assert.Equal(t, submission.ID, submission.Answers[1].SubmissionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO submissions").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Submission{StudentID: "stu-1", HomeworkID: "hw-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryProgressByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT sb.homework_id, (g.id IS NOT NULL) AS graded")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"homework_id", "graded"}).AddRow("hw-1", true).AddRow("hw-2", false))

	progress, err := repo.ProgressByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"hw-1": true, "hw-2": false}, progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}
