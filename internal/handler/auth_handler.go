package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error)
}

type accountService interface {
	Me(ctx context.Context, claims *models.JWTClaims) (*dto.AccountResponse, error)
	UpdateProfile(ctx context.Context, claims *models.JWTClaims, req dto.UpdateProfileRequest) (*dto.AccountResponse, error)
	CreateTeacher(ctx context.Context, claims *models.JWTClaims, req dto.CreateTeacherRequest) (*dto.AccountResponse, error)
	DeleteStudent(ctx context.Context, claims *models.JWTClaims, id string) error
	DeleteTeacher(ctx context.Context, claims *models.JWTClaims, id string) error
}

// AuthHandler manages authentication endpoints.
type AuthHandler struct {
	auth     authService
	accounts accountService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth authService, accounts accountService) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

// Register godoc
// @Summary Register a student account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	account, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, account)
}

// Login godoc
// @Summary Login
// @Description Authenticate with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	account, err := h.accounts.Me(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, account, nil)
}
