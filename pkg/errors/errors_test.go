package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	appErr := FromError(sql.ErrConnDone)
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, sql.ErrConnDone)
}

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrNotFound, "homework not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestValidationDetails(t *testing.T) {
	type payload struct {
		Score *float64 `validate:"required,min=0,max=100"`
	}
	over := 120.0
	verr := validator.New().Struct(payload{Score: &over})
	require.Error(t, verr)

	appErr := Validation(verr, "invalid grade payload")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "payload.Score", appErr.Details[0].Field)
	assert.Equal(t, "max", appErr.Details[0].Rule)
	assert.Equal(t, "100", appErr.Details[0].Param)
}

func TestConflictIsBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Clone(ErrConflict, "already submitted").Status)
}
