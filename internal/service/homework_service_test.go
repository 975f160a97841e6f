package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type fakeRoster struct {
	userIDs []string
}

func (f *fakeRoster) ListApprovedStudentUserIDs(ctx context.Context, subjectID string) ([]string, error) {
	return f.userIDs, nil
}

type fakeProgress struct {
	bySubmission map[string]bool
}

func (f *fakeProgress) ProgressByStudent(ctx context.Context, studentID string) (map[string]bool, error) {
	if f.bySubmission == nil {
		return map[string]bool{}, nil
	}
	return f.bySubmission, nil
}

var homeworkNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newHomeworkServiceForTest(repo *fakeHomeworks, progress *fakeProgress, notifier *recordingNotifier) *HomeworkService {
	svc := NewHomeworkService(repo, newFakeSubjects(), &fakeRoster{userIDs: []string{uidStudent, uidOtherStudent}}, progress,
		newFakeStudents(), newFakeTeachers(), notifier, nil, nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return homeworkNow }
	return svc
}

func homeworkRequest() dto.CreateHomeworkRequest {
	due := homeworkNow.Add(72 * time.Hour)
	return dto.CreateHomeworkRequest{
		Title:     "Kinematics",
		SubjectID: idSubject,
		TeacherID: idTeacher,
		DueDate:   &due,
		Questions: []dto.QuestionInput{
			{Order: 1, Text: "Unit of speed?", Type: models.QuestionMultipleChoice, Points: 4, Options: []string{"m/s", "kg"}, CorrectAnswer: strPtr("m/s")},
			{Order: 2, Text: "Speed is a vector", Type: models.QuestionTrueFalse, Points: 2, CorrectAnswer: strPtr("false")},
			{Order: 3, Text: "Define velocity", Type: models.QuestionOpenText, Points: 6},
		},
	}
}

func TestHomeworkCreateSumsPointsAndNotifiesRoster(t *testing.T) {
	repo := &fakeHomeworks{}
	notifier := &recordingNotifier{}
	svc := newHomeworkServiceForTest(repo, &fakeProgress{}, notifier)

	hw, err := svc.Create(context.Background(), teacherClaims(), homeworkRequest())
	require.NoError(t, err)
	assert.Equal(t, 12, hw.TotalPoints)
	require.Len(t, hw.Questions, 3)
	assert.Equal(t, 3, hw.Questions[2].Order)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []string{uidStudent, uidOtherStudent}, notifier.calls[0].userIDs)
	assert.Equal(t, "New homework: Kinematics", notifier.calls[0].title)
}

func TestHomeworkCreateExplicitTotalPoints(t *testing.T) {
	repo := &fakeHomeworks{}
	svc := newHomeworkServiceForTest(repo, &fakeProgress{}, &recordingNotifier{})
	req := homeworkRequest()
	total := 100
	req.TotalPoints = &total

	hw, err := svc.Create(context.Background(), adminClaims(), req)
	require.NoError(t, err)
	assert.Equal(t, 100, hw.TotalPoints)
}

func TestHomeworkCreateValidation(t *testing.T) {
	svc := newHomeworkServiceForTest(&fakeHomeworks{}, &fakeProgress{}, &recordingNotifier{})

	dup := homeworkRequest()
	dup.Questions[1].Order = 1
	_, err := svc.Create(context.Background(), teacherClaims(), dup)
	require.Error(t, err)
	assert.Equal(t, "questions[1].order", appErrors.FromError(err).Details[0].Field)

	noOptions := homeworkRequest()
	noOptions.Questions[0].Options = nil
	_, err = svc.Create(context.Background(), teacherClaims(), noOptions)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	empty := homeworkRequest()
	empty.Questions = nil
	_, err = svc.Create(context.Background(), teacherClaims(), empty)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestHomeworkCreateOwnership(t *testing.T) {
	svc := newHomeworkServiceForTest(&fakeHomeworks{}, &fakeProgress{}, &recordingNotifier{})

	_, err := svc.Create(context.Background(), otherTeacherClaims(), homeworkRequest())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	req := homeworkRequest()
	req.TeacherID = idOtherTeacher
	_, err = svc.Create(context.Background(), adminClaims(), req)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Create(context.Background(), studentClaims(), homeworkRequest())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestHomeworkListMasksAnswersForStudents(t *testing.T) {
	open := *quizHomework(homeworkNow.Add(time.Hour))
	open.ID = "e0000000-0000-4000-8000-00000000000a"
	submitted := *quizHomework(homeworkNow.Add(time.Hour))
	submitted.ID = "e0000000-0000-4000-8000-00000000000b"
	late := *quizHomework(homeworkNow.Add(-time.Hour))
	late.ID = "e0000000-0000-4000-8000-00000000000c"

	repo := &fakeHomeworks{listed: []models.Homework{open, submitted, late}}
	progress := &fakeProgress{bySubmission: map[string]bool{submitted.ID: false}}
	svc := newHomeworkServiceForTest(repo, progress, &recordingNotifier{})

	views, err := svc.List(context.Background(), studentClaims(), dto.HomeworkQuery{})
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, idStudent, repo.lastFilter.StudentID)

	assert.Equal(t, models.HomeworkStatusPending, views[0].Status)
	for _, q := range views[0].Questions {
		assert.Nil(t, q.CorrectAnswer)
	}
	assert.Equal(t, models.HomeworkStatusSubmitted, views[1].Status)
	assert.NotNil(t, views[1].Questions[0].CorrectAnswer)
	assert.Equal(t, models.HomeworkStatusOverdue, views[2].Status)
	assert.NotNil(t, views[2].Questions[0].CorrectAnswer)

	assert.NotNil(t, open.Questions[0].CorrectAnswer, "masking must not mutate the stored homework")
}

func TestHomeworkListForTeacherKeepsAnswers(t *testing.T) {
	repo := &fakeHomeworks{listed: []models.Homework{*quizHomework(homeworkNow.Add(time.Hour))}}
	svc := newHomeworkServiceForTest(repo, &fakeProgress{}, &recordingNotifier{})

	views, err := svc.List(context.Background(), teacherClaims(), dto.HomeworkQuery{SubjectID: idSubject})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Empty(t, views[0].Status)
	assert.NotNil(t, views[0].Questions[0].CorrectAnswer)
	assert.Equal(t, idTeacher, repo.lastFilter.TeacherID)
	assert.Equal(t, idSubject, repo.lastFilter.SubjectID)
}

func TestHomeworkListUnknownHomework(t *testing.T) {
	svc := newHomeworkServiceForTest(&fakeHomeworks{}, &fakeProgress{}, &recordingNotifier{})

	_, err := svc.List(context.Background(), adminClaims(), dto.HomeworkQuery{HomeworkID: idMissing})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
