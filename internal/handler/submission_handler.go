package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, claims *models.JWTClaims, req dto.SubmitHomeworkRequest) (*models.Submission, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.SubmissionQuery) ([]dto.SubmissionView, error)
}

// SubmissionHandler exposes submission endpoints.
type SubmissionHandler struct {
	submissions submissionService
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(submissions submissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// Submit godoc
// @Summary Submit homework answers
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitHomeworkRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	submission, err := h.submissions.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, submission)
}

// List godoc
// @Summary List submissions visible to the caller
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param homeworkId query string false "Filter by homework"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var query dto.SubmissionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	submissions, err := h.submissions.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}
