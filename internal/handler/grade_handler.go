package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

type gradeService interface {
	Grade(ctx context.Context, claims *models.JWTClaims, req dto.GradeRequest) (*models.Grade, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.GradeQuery) ([]models.GradeDetail, error)
}

type gradeExporter interface {
	ExportGrades(ctx context.Context, claims *models.JWTClaims, query dto.GradeExportQuery) (*dto.GradeExport, error)
}

// GradeHandler exposes grading endpoints.
type GradeHandler struct {
	grades  gradeService
	exports gradeExporter
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades gradeService, exports gradeExporter) *GradeHandler {
	return &GradeHandler{grades: grades, exports: exports}
}

// Grade godoc
// @Summary Create or replace the grade of a submission
// @Tags Grades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Grade(c *gin.Context) {
	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	grade, err := h.grades.Grade(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// List godoc
// @Summary List grades visible to the caller
// @Tags Grades
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param submissionId query string false "Filter by submission"
// @Param homeworkId query string false "Filter by homework"
// @Param subjectId query string false "Filter by subject"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	var query dto.GradeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	grades, err := h.grades.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// Export godoc
// @Summary Download a grade report
// @Tags Grades
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param studentId query string false "Student, required for staff"
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /grades/export [get]
func (h *GradeHandler) Export(c *gin.Context) {
	var query dto.GradeExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	query.Format = strings.ToLower(query.Format)

	file, err := h.exports.ExportGrades(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
