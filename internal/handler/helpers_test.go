package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saberpro-api/internal/middleware"
	"github.com/noah-isme/saberpro-api/internal/models"
)

func newTestContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	payload, err := json.Marshal(v)
	require.NoError(t, err)
	return payload
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string `json:"code"`
		Status int    `json:"status"`
	} `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func studentSession() *models.JWTClaims {
	return &models.JWTClaims{UserID: "a0000000-0000-4000-8000-000000000001", Role: models.RoleStudent}
}

func teacherSession() *models.JWTClaims {
	return &models.JWTClaims{UserID: "a0000000-0000-4000-8000-000000000003", Role: models.RoleTeacher}
}

func adminSession() *models.JWTClaims {
	return &models.JWTClaims{UserID: "a0000000-0000-4000-8000-000000000005", Role: models.RoleSuperAdmin}
}
