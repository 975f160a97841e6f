package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/dto"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

type authServiceMock struct {
	loginResp    *models.LoginResponse
	loginErr     error
	registerResp *dto.AccountResponse
	registerErr  error
	lastRegister dto.RegisterRequest
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AccountResponse, error) {
	m.lastRegister = req
	return m.registerResp, m.registerErr
}

type accountServiceMock struct {
	meResp      *dto.AccountResponse
	meErr       error
	updateResp  *dto.AccountResponse
	teacherResp *dto.AccountResponse
	deleteErr   error
	lastClaims  *models.JWTClaims
	deletedID   string
}

func (m *accountServiceMock) Me(ctx context.Context, claims *models.JWTClaims) (*dto.AccountResponse, error) {
	m.lastClaims = claims
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	return m.meResp, m.meErr
}

func (m *accountServiceMock) UpdateProfile(ctx context.Context, claims *models.JWTClaims, req dto.UpdateProfileRequest) (*dto.AccountResponse, error) {
	m.lastClaims = claims
	return m.updateResp, nil
}

func (m *accountServiceMock) CreateTeacher(ctx context.Context, claims *models.JWTClaims, req dto.CreateTeacherRequest) (*dto.AccountResponse, error) {
	m.lastClaims = claims
	return m.teacherResp, nil
}

func (m *accountServiceMock) DeleteStudent(ctx context.Context, claims *models.JWTClaims, id string) error {
	m.deletedID = id
	return m.deleteErr
}

func (m *accountServiceMock) DeleteTeacher(ctx context.Context, claims *models.JWTClaims, id string) error {
	m.deletedID = id
	return m.deleteErr
}

func TestAuthHandlerRegisterCreated(t *testing.T) {
	auth := &authServiceMock{registerResp: &dto.AccountResponse{User: models.User{ID: "user-1", Role: models.RoleStudent}}}
	handler := NewAuthHandler(auth, &accountServiceMock{})

	body := mustJSON(t, dto.RegisterRequest{FullName: "Ana", Email: "ana@example.com", Password: "secret123"})
	c, w := newTestContext(t, http.MethodPost, "/auth/register", body, nil)

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ana@example.com", auth.lastRegister.Email)
}

func TestAuthHandlerRegisterInvalidBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{}, &accountServiceMock{})

	c, w := newTestContext(t, http.MethodPost, "/auth/register", []byte(`{"email":`), nil)

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, w).Error.Code)
}

func TestAuthHandlerRegisterDuplicateIsBadRequest(t *testing.T) {
	auth := &authServiceMock{registerErr: appErrors.Clone(appErrors.ErrConflict, "email already registered")}
	handler := NewAuthHandler(auth, &accountServiceMock{})

	body := mustJSON(t, dto.RegisterRequest{FullName: "Ana", Email: "ana@example.com", Password: "secret123"})
	c, w := newTestContext(t, http.MethodPost, "/auth/register", body, nil)

	handler.Register(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrConflict.Code, decodeEnvelope(t, w).Error.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials}, &accountServiceMock{})

	body := mustJSON(t, models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	c, w := newTestContext(t, http.MethodPost, "/auth/login", body, nil)

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerLoginReturnsToken(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{loginResp: &models.LoginResponse{AccessToken: "token", ExpiresIn: 3600}}, &accountServiceMock{})

	body := mustJSON(t, models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	c, w := newTestContext(t, http.MethodPost, "/auth/login", body, nil)

	handler.Login(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decodeEnvelope(t, w).Data), `"access_token":"token"`)
}

func TestAuthHandlerMeWithoutSession(t *testing.T) {
	accounts := &accountServiceMock{}
	handler := NewAuthHandler(&authServiceMock{}, accounts)

	c, w := newTestContext(t, http.MethodGet, "/auth/me", nil, nil)

	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, accounts.lastClaims)
}

func TestAuthHandlerMePassesClaims(t *testing.T) {
	accounts := &accountServiceMock{meResp: &dto.AccountResponse{User: models.User{ID: "user-1"}}}
	handler := NewAuthHandler(&authServiceMock{}, accounts)

	claims := studentSession()
	c, w := newTestContext(t, http.MethodGet, "/auth/me", nil, claims)

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, claims, accounts.lastClaims)
}
