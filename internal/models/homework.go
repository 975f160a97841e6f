package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// QuestionType enumerates supported question formats.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionOpenText       QuestionType = "OPEN_TEXT"
)

// HomeworkStatus is the derived state of a homework for one student.
type HomeworkStatus string

const (
	HomeworkStatusPending   HomeworkStatus = "pending"
	HomeworkStatusSubmitted HomeworkStatus = "submitted"
	HomeworkStatusGraded    HomeworkStatus = "graded"
	HomeworkStatusOverdue   HomeworkStatus = "overdue"
)

// StringList persists a list of strings as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return fmt.Errorf("unsupported options type %T", src)
	}
}

// Homework is an assignment with ordered questions and a deadline.
type Homework struct {
	ID              string     `db:"id" json:"id"`
	Title           string     `db:"title" json:"title"`
	Description     string     `db:"description" json:"description"`
	SubjectID       string     `db:"subject_id" json:"subject_id"`
	TeacherID       string     `db:"teacher_id" json:"teacher_id"`
	DueDate         time.Time  `db:"due_date" json:"due_date"`
	AllowFileUpload bool       `db:"allow_file_upload" json:"allow_file_upload"`
	TotalPoints     int        `db:"total_points" json:"total_points"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	Questions       []Question `db:"-" json:"questions"`
}

// Question belongs to a homework; Order defines display and grading order.
type Question struct {
	ID            string       `db:"id" json:"id"`
	HomeworkID    string       `db:"homework_id" json:"homework_id"`
	Order         int          `db:"position" json:"order"`
	Text          string       `db:"text" json:"text"`
	Type          QuestionType `db:"type" json:"type"`
	Points        int          `db:"points" json:"points"`
	Options       StringList   `db:"options" json:"options,omitempty"`
	CorrectAnswer *string      `db:"correct_answer" json:"correct_answer"`
}

// HomeworkFilter scopes homework listings. StudentID restricts results to subjects where
// that student holds an approved enrollment.
type HomeworkFilter struct {
	HomeworkID string
	SubjectID  string
	TeacherID  string
	StudentID  string
}
