package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

// AccountHandler manages profiles and the teacher and student accounts behind them.
type AccountHandler struct {
	accounts accountService
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// UpdateProfile godoc
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	account, err := h.accounts.UpdateProfile(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}

// CreateTeacher godoc
// @Summary Create teacher account
// @Tags Teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTeacherRequest true "Teacher payload"
// @Success 201 {object} response.Envelope
// @Router /teachers [post]
func (h *AccountHandler) CreateTeacher(c *gin.Context) {
	var req dto.CreateTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	account, err := h.accounts.CreateTeacher(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// DeleteTeacher godoc
// @Summary Delete teacher and everything they own
// @Tags Teachers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id} [delete]
func (h *AccountHandler) DeleteTeacher(c *gin.Context) {
	if err := h.accounts.DeleteTeacher(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, successResponse{Success: true}, nil)
}

// DeleteStudent godoc
// @Summary Delete student and their records
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *AccountHandler) DeleteStudent(c *gin.Context) {
	if err := h.accounts.DeleteStudent(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, successResponse{Success: true}, nil)
}
