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

type enrollmentService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateEnrollmentRequest) (*models.Enrollment, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.EnrollmentQuery) ([]models.EnrollmentDetail, error)
	SetStatus(ctx context.Context, claims *models.JWTClaims, req dto.SetEnrollmentStatusRequest) (*models.EnrollmentDetail, error)
	Delete(ctx context.Context, claims *models.JWTClaims, id string) error
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary List enrollments visible to the caller
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param subjectId query string false "Filter by subject"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var query dto.EnrollmentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	query.Status = models.EnrollmentStatus(strings.ToUpper(string(query.Status)))

	enrollments, err := h.enrollments.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Create godoc
// @Summary Request or create an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateEnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.CreateEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// SetStatus godoc
// @Summary Approve or reject an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SetEnrollmentStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/status [put]
func (h *EnrollmentHandler) SetStatus(c *gin.Context) {
	var req dto.SetEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	enrollment, err := h.enrollments.SetStatus(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Delete godoc
// @Summary Withdraw an enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id query string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), claimsFromContext(c), c.Query("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, successResponse{Success: true}, nil)
}
