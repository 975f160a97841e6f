package dto

// GradeRequest creates or replaces the grade of a submission.
type GradeRequest struct {
	SubmissionID string   `json:"submissionId" validate:"required,uuid"`
	TeacherID    string   `json:"teacherId" validate:"required,uuid"`
	StudentID    string   `json:"studentId" validate:"required,uuid"`
	Score        *float64 `json:"score" validate:"required,min=0,max=100"`
	Feedback     *string  `json:"feedback,omitempty"`
}

// GradeQuery filters grade listings.
type GradeQuery struct {
	StudentID    string `form:"studentId" validate:"omitempty,uuid"`
	SubmissionID string `form:"submissionId" validate:"omitempty,uuid"`
	HomeworkID   string `form:"homeworkId" validate:"omitempty,uuid"`
	SubjectID    string `form:"subjectId" validate:"omitempty,uuid"`
}

// GradeExportQuery selects the student and format of a grade report.
type GradeExportQuery struct {
	StudentID string `form:"studentId" validate:"omitempty,uuid"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// GradeExport is a rendered grade report.
type GradeExport struct {
	Filename    string
	ContentType string
	Body        []byte
}
