package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/models"
)

func TestSubjectRepositoryCreateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectExec("INSERT INTO subjects").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Subject{Name: "Math", Code: "MAT101", TeacherID: "tch-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"grades", "answers", "submissions", "questions", "homeworks", "enrollments"} {
		mock.ExpectExec("DELETE FROM " + table).WithArgs("sub-1").WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectExec("DELETE FROM subjects WHERE id = \\$1").WithArgs("sub-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "sub-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDeleteMissingRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"grades", "answers", "submissions", "questions", "homeworks", "enrollments"} {
		mock.ExpectExec("DELETE FROM " + table).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM subjects").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "sub-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryDeleteRemovesOwnedSubjects(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	for _, table := range []string{"grades", "answers", "submissions", "questions", "homeworks", "enrollments", "subjects", "grades", "notifications"} {
		mock.ExpectExec("DELETE FROM " + table).WithArgs("tch-1").WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM users").WithArgs("tch-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "tch-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM grades").WithArgs("stu-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM answers").WithArgs("stu-1").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "stu-1")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
