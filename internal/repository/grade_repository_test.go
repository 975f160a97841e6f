package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/models"
)

func TestGradeRepositoryUpsertInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (submission_id)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("grade-1", true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET status = $2 WHERE id = $1")).
		WithArgs("sub-1", models.SubmissionStatusGraded).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	grade := &models.Grade{SubmissionID: "sub-1", TeacherID: "tch-1", StudentID: "stu-1", Score: 85}
	created, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "grade-1", grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertKeepsExistingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO grades").
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("grade-1", false))
	mock.ExpectExec("UPDATE submissions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	grade := &models.Grade{ID: "fresh-id", SubmissionID: "sub-1", TeacherID: "tch-1", StudentID: "stu-1", Score: 90}
	created, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "grade-1", grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertStatusFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO grades").
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("grade-1", true))
	mock.ExpectExec("UPDATE submissions").WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	_, err := repo.Upsert(context.Background(), &models.Grade{SubmissionID: "sub-1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sj.teacher_id = $1 ORDER BY g.graded_at DESC")).
		WithArgs("tch-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "teacher_id", "student_id", "score", "feedback", "graded_at",
			"homework_id", "homework_title", "subject_id", "subject_name"}))

	grades, err := repo.List(context.Background(), models.GradeFilter{TeacherID: "tch-1"})
	require.NoError(t, err)
	assert.Empty(t, grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}
