package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/saberpro-api/internal/middleware"
	"github.com/noah-isme/saberpro-api/internal/models"
	appErrors "github.com/noah-isme/saberpro-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

func invalidQuery(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query")
}

type successResponse struct {
	Success bool `json:"success"`
}

type countResponse struct {
	Count int64 `json:"count"`
}
