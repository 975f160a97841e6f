package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(header string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen string
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	r.ServeHTTP(w, req)
	return w, seen
}

func TestMiddlewareReusesHeader(t *testing.T) {
	w, seen := serve("req-123")
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", w.Header().Get(headerKey))
}

func TestMiddlewareGeneratesID(t *testing.T) {
	_, seen := serve("")
	assert.Len(t, seen, 36)

	_, replaced := serve(strings.Repeat("x", maxLength+1))
	assert.Len(t, replaced, 36)
}
