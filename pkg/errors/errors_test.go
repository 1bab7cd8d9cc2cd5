package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NotFound("patient", nil), http.StatusNotFound},
		{InvalidInput("bad field"), http.StatusBadRequest},
		{Duplicate("taken", nil), http.StatusConflict},
		{InvalidTransition("no"), http.StatusConflict},
		{AllocationConflict(nil), http.StatusConflict},
		{BusinessRule(ReasonTaxIDRequiredByAge, "cpf required"), http.StatusUnprocessableEntity},
		{Dependency("renderer down", nil), http.StatusBadGateway},
		{Unauthorized(nil), http.StatusUnauthorized},
		{Forbidden("no access"), http.StatusForbidden},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode(), "code %d", tt.err.Code)
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	base := Duplicate("taken", nil)
	wrapped := fmt.Errorf("saving patient: %w", base)

	assert.True(t, IsCode(wrapped, ErrDuplicateIdentifier))
	assert.False(t, IsCode(wrapped, ErrNotFound))
	assert.Equal(t, ErrInternal, CodeOf(errors.New("plain")))
}

func TestReasonOf(t *testing.T) {
	err := BusinessRule(ReasonJustificationRequired, "justify")
	assert.Equal(t, ReasonJustificationRequired, ReasonOf(err))
	assert.Equal(t, "", ReasonOf(errors.New("plain")))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Dependency("renderer failed", cause)

	assert.Contains(t, err.Error(), "renderer failed")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}
