package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type homeworkServiceMock struct {
	created   *dto.CreateHomeworkRequest
	lastQuery dto.HomeworkQuery
}

func (m *homeworkServiceMock) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateHomeworkRequest) (*models.Homework, error) {
	m.created = &req
	return &models.Homework{ID: "homework-1", Title: req.Title}, nil
}

func (m *homeworkServiceMock) List(ctx context.Context, claims *models.JWTClaims, query dto.HomeworkQuery) ([]dto.HomeworkView, error) {
	m.lastQuery = query
	return []dto.HomeworkView{{Homework: models.Homework{ID: "homework-1"}, Status: models.HomeworkStatusPending}}, nil
}

type statsServiceMock struct {
	resp      *dto.HomeworkStats
	err       error
	lastQuery dto.StatsQuery
}

func (m *statsServiceMock) Get(ctx context.Context, claims *models.JWTClaims, query dto.StatsQuery) (*dto.HomeworkStats, error) {
	m.lastQuery = query
	return m.resp, m.err
}

func TestHomeworkHandlerCreateBindsQuestions(t *testing.T) {
	homeworks := &homeworkServiceMock{}
	handler := NewHomeworkHandler(homeworks, &statsServiceMock{})

	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	answer := "m/s"
	body := mustJSON(t, dto.CreateHomeworkRequest{
		Title:     "Kinematics",
		SubjectID: "d0000000-0000-4000-8000-000000000001",
		TeacherID: "c0000000-0000-4000-8000-000000000001",
		DueDate:   &due,
		Questions: []dto.QuestionInput{{Order: 1, Text: "Unit of speed?", Type: models.QuestionMultipleChoice, Points: 5, Options: []string{"m/s", "kg"}, CorrectAnswer: &answer}},
	})
	c, w := newTestContext(t, http.MethodPost, "/homeworks", body, teacherSession())

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, homeworks.created)
	require.Len(t, homeworks.created.Questions, 1)
	assert.True(t, due.Equal(*homeworks.created.DueDate))
}

func TestHomeworkHandlerList(t *testing.T) {
	homeworks := &homeworkServiceMock{}
	handler := NewHomeworkHandler(homeworks, &statsServiceMock{})

	c, w := newTestContext(t, http.MethodGet, "/homeworks?subjectId=d0000000-0000-4000-8000-000000000001", nil, studentSession())

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "d0000000-0000-4000-8000-000000000001", homeworks.lastQuery.SubjectID)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"status":"pending"`)
}

func TestHomeworkHandlerStats(t *testing.T) {
	stats := &statsServiceMock{resp: &dto.HomeworkStats{StudentID: "student-1", Total: 3, Completed: 2, Pending: 1}}
	handler := NewHomeworkHandler(&homeworkServiceMock{}, stats)

	c, w := newTestContext(t, http.MethodGet, "/homeworks/stats?studentId=b0000000-0000-4000-8000-000000000001", nil, adminSession())

	handler.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b0000000-0000-4000-8000-000000000001", stats.lastQuery.StudentID)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"completed":2`)
}

func TestHomeworkHandlerStatsMissingStudent(t *testing.T) {
	stats := &statsServiceMock{err: appErrors.Field("studentId", "required", "studentId is required")}
	handler := NewHomeworkHandler(&homeworkServiceMock{}, stats)

	c, w := newTestContext(t, http.MethodGet, "/homeworks/stats", nil, adminSession())

	handler.Stats(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
