package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/noah-isme/saberpro-api/internal/models"
)

const (
	uidStudent      = "a0000000-0000-4000-8000-000000000001"
	uidOtherStudent = "a0000000-0000-4000-8000-000000000002"
	uidTeacher      = "a0000000-0000-4000-8000-000000000003"
	uidOtherTeacher = "a0000000-0000-4000-8000-000000000004"
	uidAdmin        = "a0000000-0000-4000-8000-000000000005"

	idStudent      = "b0000000-0000-4000-8000-000000000001"
	idOtherStudent = "b0000000-0000-4000-8000-000000000002"
	idTeacher      = "c0000000-0000-4000-8000-000000000001"
	idOtherTeacher = "c0000000-0000-4000-8000-000000000002"
	idSubject      = "d0000000-0000-4000-8000-000000000001"
	idHomework     = "e0000000-0000-4000-8000-000000000001"
	idQuestionMC   = "e1000000-0000-4000-8000-000000000001"
	idQuestionText = "e1000000-0000-4000-8000-000000000002"
	idSubmission   = "f0000000-0000-4000-8000-000000000001"
	idEnrollment   = "f1000000-0000-4000-8000-000000000001"
	idNotification = "f2000000-0000-4000-8000-000000000001"
	idMissing      = "99999999-0000-4000-8000-000000000000"
)

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidStudent, Role: models.RoleStudent}
}

func otherStudentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidOtherStudent, Role: models.RoleStudent}
}

func teacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidTeacher, Role: models.RoleTeacher}
}

func otherTeacherClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidOtherTeacher, Role: models.RoleTeacher}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidAdmin, Role: models.RoleAdmin}
}

func superAdminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: uidAdmin, Role: models.RoleSuperAdmin}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

type fakeStudents struct {
	items   map[string]*models.StudentDetail
	deleted []string
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{items: map[string]*models.StudentDetail{
		idStudent: {
			Student:  models.Student{ID: idStudent, UserID: uidStudent, StudentCode: "123456", IsActivated: true},
			FullName: "Ana Student",
			Email:    "ana@example.com",
		},
		idOtherStudent: {
			Student:  models.Student{ID: idOtherStudent, UserID: uidOtherStudent, StudentCode: "654321", IsActivated: true},
			FullName: "Ben Student",
			Email:    "ben@example.com",
		},
	}}
}

func (f *fakeStudents) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudents) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	for _, s := range f.items {
		if s.UserID == userID {
			cp := s.Student
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStudents) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTeachers struct {
	items   map[string]*models.TeacherDetail
	deleted []string
}

func newFakeTeachers() *fakeTeachers {
	return &fakeTeachers{items: map[string]*models.TeacherDetail{
		idTeacher: {
			Teacher:  models.Teacher{ID: idTeacher, UserID: uidTeacher, Department: "Science"},
			FullName: "Tom Teacher",
			Email:    "tom@example.com",
		},
		idOtherTeacher: {
			Teacher:  models.Teacher{ID: idOtherTeacher, UserID: uidOtherTeacher, Department: "Arts"},
			FullName: "Olga Teacher",
			Email:    "olga@example.com",
		},
	}}
}

func (f *fakeTeachers) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	if t, ok := f.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTeachers) FindByUserID(ctx context.Context, userID string) (*models.Teacher, error) {
	for _, t := range f.items {
		if t.UserID == userID {
			cp := t.Teacher
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTeachers) Delete(ctx context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.items, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSubjects struct {
	items map[string]*models.SubjectDetail
}

func newFakeSubjects() *fakeSubjects {
	return &fakeSubjects{items: map[string]*models.SubjectDetail{
		idSubject: {
			Subject: models.Subject{
				ID:        idSubject,
				Name:      "Physics",
				Code:      "PHY-101",
				TeacherID: idTeacher,
				StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
			},
			TeacherUserID: uidTeacher,
			TeacherName:   "Tom Teacher",
		},
	}}
}

func (f *fakeSubjects) FindByID(ctx context.Context, id string) (*models.SubjectDetail, error) {
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type notifyCall struct {
	userIDs []string
	title   string
	message string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userIDs: []string{userID}, title: title, message: message})
}

func (n *recordingNotifier) NotifyMany(ctx context.Context, userIDs []string, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, notifyCall{userIDs: userIDs, title: title, message: message})
}

type fakeHomeworks struct {
	items      map[string]*models.Homework
	created    *models.Homework
	lastFilter models.HomeworkFilter
	listed     []models.Homework
}

func (f *fakeHomeworks) Create(ctx context.Context, homework *models.Homework) error {
	homework.ID = idHomework
	for i := range homework.Questions {
		homework.Questions[i].HomeworkID = homework.ID
	}
	f.created = homework
	return nil
}

func (f *fakeHomeworks) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	if hw, ok := f.items[id]; ok {
		cp := *hw
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeHomeworks) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, error) {
	f.lastFilter = filter
	return f.listed, nil
}

// quizHomework returns a homework with one multiple choice and one open text question.
func quizHomework(due time.Time) *models.Homework {
	return &models.Homework{
		ID:          idHomework,
		Title:       "Kinematics",
		SubjectID:   idSubject,
		TeacherID:   idTeacher,
		DueDate:     due,
		TotalPoints: 10,
		Questions: []models.Question{
			{ID: idQuestionMC, HomeworkID: idHomework, Order: 1, Text: "Unit of speed?", Type: models.QuestionMultipleChoice, Points: 5, Options: models.StringList{"m/s", "kg"}, CorrectAnswer: strPtr("m/s")},
			{ID: idQuestionText, HomeworkID: idHomework, Order: 2, Text: "Define velocity", Type: models.QuestionOpenText, Points: 5, CorrectAnswer: strPtr("rate of displacement")},
		},
	}
}
