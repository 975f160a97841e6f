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
	"github.com/noah-isme/saberpro-api/internal/repository"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type mockSubmissionRepo struct {
	exists     bool
	createErr  error
	created    *models.Submission
	listed     []models.SubmissionDetail
	lastFilter models.SubmissionFilter
}

func (m *mockSubmissionRepo) Exists(ctx context.Context, studentID, homeworkID string) (bool, error) {
	return m.exists, nil
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	if m.createErr != nil {
		return m.createErr
	}
	submission.ID = idSubmission
	submission.Status = models.SubmissionStatusSubmitted
	m.created = submission
	return nil
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, error) {
	m.lastFilter = filter
	return m.listed, nil
}

type fakeEnrollmentChecker struct {
	approved bool
}

func (f fakeEnrollmentChecker) HasApproved(ctx context.Context, studentID, subjectID string) (bool, error) {
	return f.approved, nil
}

type fakeGradeMapper struct {
	grades map[string]models.Grade
}

func (f fakeGradeMapper) MapBySubmission(ctx context.Context, ids []string) (map[string]models.Grade, error) {
	out := make(map[string]models.Grade)
	for _, id := range ids {
		if g, ok := f.grades[id]; ok {
			out[id] = g
		}
	}
	return out, nil
}

var submissionNow = time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

func newSubmissionServiceForTest(repo *mockSubmissionRepo, due time.Time, approved bool, grades map[string]models.Grade, notifier *recordingNotifier) *SubmissionService {
	homeworks := &fakeHomeworks{items: map[string]*models.Homework{idHomework: quizHomework(due)}}
	svc := NewSubmissionService(repo, homeworks, newFakeStudents(), newFakeTeachers(), fakeEnrollmentChecker{approved: approved},
		fakeGradeMapper{grades: grades}, notifier, nil, nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return submissionNow }
	return svc
}

func validSubmission() dto.SubmitHomeworkRequest {
	return dto.SubmitHomeworkRequest{
		StudentID:  idStudent,
		HomeworkID: idHomework,
		Answers: []dto.AnswerInput{
			{QuestionID: idQuestionMC, AnswerOption: strPtr("m/s")},
			{QuestionID: idQuestionText, AnswerText: strPtr("rate of change of position")},
		},
	}
}

func TestSubmitStoresAnswersAndNotifiesStudent(t *testing.T) {
	repo := &mockSubmissionRepo{}
	notifier := &recordingNotifier{}
	svc := newSubmissionServiceForTest(repo, submissionNow.Add(time.Hour), true, nil, notifier)

	submission, err := svc.Submit(context.Background(), studentClaims(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	assert.Equal(t, submissionNow, submission.SubmittedAt)
	require.Len(t, repo.created.Answers, 2)
	assert.Equal(t, "m/s", *repo.created.Answers[0].AnswerOption)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []string{uidStudent}, notifier.calls[0].userIDs)
}

func TestSubmitDeadline(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{}, submissionNow, true, nil, &recordingNotifier{})

	_, err := svc.Submit(context.Background(), studentClaims(), validSubmission())
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "deadline passed", appErrors.FromError(err).Message)
}

func TestSubmitAlreadySubmitted(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{exists: true}, submissionNow.Add(time.Hour), true, nil, &recordingNotifier{})

	_, err := svc.Submit(context.Background(), studentClaims(), validSubmission())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
	assert.Equal(t, "already submitted", appErrors.FromError(err).Message)

	raced := newSubmissionServiceForTest(&mockSubmissionRepo{createErr: repository.ErrDuplicate}, submissionNow.Add(time.Hour), true, nil, &recordingNotifier{})
	_, err = raced.Submit(context.Background(), studentClaims(), validSubmission())
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestSubmitRequiresApprovedEnrollment(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{}, submissionNow.Add(time.Hour), false, nil, &recordingNotifier{})

	_, err := svc.Submit(context.Background(), studentClaims(), validSubmission())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSubmitRejectsForeignCallers(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{}, submissionNow.Add(time.Hour), true, nil, &recordingNotifier{})

	_, err := svc.Submit(context.Background(), otherStudentClaims(), validSubmission())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Submit(context.Background(), teacherClaims(), validSubmission())
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestSubmitAnswerValidation(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{}, submissionNow.Add(time.Hour), true, nil, &recordingNotifier{})

	foreign := validSubmission()
	foreign.Answers[0].QuestionID = idMissing
	_, err := svc.Submit(context.Background(), studentClaims(), foreign)
	require.Error(t, err)
	assert.Equal(t, "questions do not belong to this assignment", appErrors.FromError(err).Message)

	duplicate := validSubmission()
	duplicate.Answers[1] = dto.AnswerInput{QuestionID: idQuestionMC, AnswerOption: strPtr("kg")}
	_, err = svc.Submit(context.Background(), studentClaims(), duplicate)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	both := validSubmission()
	both.Answers[0].AnswerText = strPtr("m/s")
	_, err = svc.Submit(context.Background(), studentClaims(), both)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	wrongOption := validSubmission()
	wrongOption.Answers[0].AnswerOption = strPtr("km/h")
	_, err = svc.Submit(context.Background(), studentClaims(), wrongOption)
	require.Error(t, err)
	assert.Equal(t, "answers[0].answerOption", appErrors.FromError(err).Details[0].Field)

	wrongKind := validSubmission()
	wrongKind.Answers[1] = dto.AnswerInput{QuestionID: idQuestionText, AnswerOption: strPtr("a")}
	_, err = svc.Submit(context.Background(), studentClaims(), wrongKind)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubmitFileUploadNotAllowed(t *testing.T) {
	svc := newSubmissionServiceForTest(&mockSubmissionRepo{}, submissionNow.Add(time.Hour), true, nil, &recordingNotifier{})
	req := validSubmission()
	req.FileURL = strPtr("https://files.example.com/essay.pdf")

	_, err := svc.Submit(context.Background(), studentClaims(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSubmissionListDerivesStatusFromGrade(t *testing.T) {
	gradedID := "f0000000-0000-4000-8000-00000000000b"
	repo := &mockSubmissionRepo{listed: []models.SubmissionDetail{
		{Submission: models.Submission{ID: idSubmission, StudentID: idStudent}, DueDate: submissionNow.Add(-time.Hour)},
		{Submission: models.Submission{ID: gradedID, StudentID: idStudent}, DueDate: submissionNow.Add(time.Hour)},
	}}
	grades := map[string]models.Grade{gradedID: {SubmissionID: gradedID, Score: 90}}
	svc := newSubmissionServiceForTest(repo, submissionNow.Add(time.Hour), true, grades, &recordingNotifier{})

	views, err := svc.List(context.Background(), studentClaims(), dto.SubmissionQuery{})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, idStudent, repo.lastFilter.StudentID)
	assert.Equal(t, models.HomeworkStatusSubmitted, views[0].DerivedStatus)
	assert.Nil(t, views[0].Grade)
	assert.Equal(t, models.HomeworkStatusGraded, views[1].DerivedStatus)
	require.NotNil(t, views[1].Grade)
	assert.Equal(t, 90.0, views[1].Grade.Score)
}
