package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

type homeworkService interface {
	Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateHomeworkRequest) (*models.Homework, error)
	List(ctx context.Context, claims *models.JWTClaims, query dto.HomeworkQuery) ([]dto.HomeworkView, error)
}

type statsService interface {
	Get(ctx context.Context, claims *models.JWTClaims, query dto.StatsQuery) (*dto.HomeworkStats, error)
}

// HomeworkHandler exposes homework endpoints.
type HomeworkHandler struct {
	homeworks homeworkService
	stats     statsService
}

// NewHomeworkHandler constructs HomeworkHandler.
func NewHomeworkHandler(homeworks homeworkService, stats statsService) *HomeworkHandler {
	return &HomeworkHandler{homeworks: homeworks, stats: stats}
}

// Create godoc
// @Summary Create homework with questions
// @Tags Homeworks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateHomeworkRequest true "Homework payload"
// @Success 201 {object} response.Envelope
// @Router /homeworks [post]
func (h *HomeworkHandler) Create(c *gin.Context) {
	var req dto.CreateHomeworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	homework, err := h.homeworks.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, homework)
}

// List godoc
// @Summary List homeworks visible to the caller
// @Tags Homeworks
// @Produce json
// @Security BearerAuth
// @Param subjectId query string false "Filter by subject"
// @Param homeworkId query string false "Single homework"
// @Success 200 {object} response.Envelope
// @Router /homeworks [get]
func (h *HomeworkHandler) List(c *gin.Context) {
	var query dto.HomeworkQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	homeworks, err := h.homeworks.List(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, homeworks, nil)
}

// Stats godoc
// @Summary Homework progress counts for a student
// @Tags Homeworks
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student, required for staff"
// @Param subjectId query string false "Subject, required for teachers"
// @Success 200 {object} response.Envelope
// @Router /homeworks/stats [get]
func (h *HomeworkHandler) Stats(c *gin.Context) {
	var query dto.StatsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidQuery(err))
		return
	}
	stats, err := h.stats.Get(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
