package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
	"github.com/noah-isme/saberpro-api/pkg/export"
)

type gradeLister interface {
	List(ctx context.Context, claims *models.JWTClaims, query dto.GradeQuery) ([]models.GradeDetail, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

var gradeReportHeaders = []string{"Subject", "Homework", "Score", "Feedback", "Graded At"}

// ExportService renders a student's grade report as CSV or PDF.
type ExportService struct {
	grades   gradeLister
	students studentReader
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(grades gradeLister, students studentReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{grades: grades, students: students, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportGrades renders the grade report of one student with the same visibility as grade listing.
func (s *ExportService) ExportGrades(ctx context.Context, claims *models.JWTClaims, query dto.GradeExportQuery) (*dto.GradeExport, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	format := query.Format
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Field("format", "oneof", "format must be csv or pdf")
	}

	studentID := query.StudentID
	if claims.Role == models.RoleStudent {
		own, err := s.students.FindByUserID(ctx, claims.UserID)
		if err != nil {
			return nil, notFoundOr(err, "student profile not found", "failed to resolve student profile")
		}
		studentID = own.ID
	}
	if studentID == "" {
		return nil, appErrors.Field("studentId", "required", "studentId is required")
	}
	if err := requireID("studentId", studentID); err != nil {
		return nil, err
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	grades, err := s.grades.List(ctx, claims, dto.GradeQuery{StudentID: studentID})
	if err != nil {
		return nil, err
	}

	dataset := gradeDataset(grades)
	stamp := s.now().UTC()
	filename := fmt.Sprintf("grades-%s-%s.%s", student.StudentCode, stamp.Format("20060102"), format)

	var body []byte
	var contentType string
	switch format {
	case "pdf":
		subtitle := fmt.Sprintf("%s (%s) - generated %s", student.FullName, student.StudentCode, stamp.Format("2006-01-02 15:04 MST"))
		body, err = s.pdf.Render(dataset, "Grade Report", subtitle)
		contentType = "application/pdf"
	default:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render grade report")
	}

	s.logger.Info("grade report exported",
		zap.String("student_id", studentID),
		zap.String("format", format),
		zap.Int("rows", len(grades)))
	return &dto.GradeExport{Filename: filename, ContentType: contentType, Body: body}, nil
}

func gradeDataset(grades []models.GradeDetail) export.Dataset {
	rows := make([]map[string]string, len(grades))
	for i, g := range grades {
		feedback := ""
		if g.Feedback != nil {
			feedback = *g.Feedback
		}
		rows[i] = map[string]string{
			"Subject":   g.SubjectName,
			"Homework":  g.HomeworkTitle,
			"Score":     formatScore(g.Score),
			"Feedback":  feedback,
			"Graded At": g.GradedAt.UTC().Format(time.RFC3339),
		}
	}
	return export.Dataset{Headers: gradeReportHeaders, Rows: rows}
}
