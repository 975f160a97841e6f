package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/saberpro-api/internal/models"
	"github.com/noah-isme/saberpro-api/pkg/config"
	"github.com/noah-isme/saberpro-api/pkg/middleware/requestid"
)

func newObservedRouter(claims *models.JWTClaims, status int) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	r.GET("/homeworks/:id", func(c *gin.Context) {
		if claims != nil {
			c.Set(claimsKey, claims)
		}
		c.Status(status)
	})
	return r, logs
}

func TestGinMiddlewareLogsCaller(t *testing.T) {
	r, logs := newObservedRouter(&models.JWTClaims{UserID: "u-1", Role: models.RoleTeacher}, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/homeworks/h-1", nil)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "http_request", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "u-1", fields["user_id"])
	assert.Equal(t, string(models.RoleTeacher), fields["role"])
	assert.Equal(t, "/homeworks/:id", fields["route"])
	assert.Equal(t, "/homeworks/h-1", fields["path"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestGinMiddlewareAnonymousClientError(t *testing.T) {
	r, logs := newObservedRouter(nil, http.StatusNotFound)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/homeworks/h-1", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.NotContains(t, entry.ContextMap(), "user_id")
}

func TestNewUsesConfiguredLevel(t *testing.T) {
	l, err := New(&config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "json"}})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
