package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation sentinel", fmt.Errorf("%w: bad", apperrors.ErrValidation), http.StatusBadRequest},
		{"validation app error", apperrors.NewValidationError("bad"), http.StatusBadRequest},
		{"not found", apperrors.NewNotFoundError("quote"), http.StatusNotFound},
		{"conflict", fmt.Errorf("wrapped: %w", apperrors.NewConflictError("locked")), http.StatusConflict},
		{"duplicate", apperrors.ErrDuplicate, http.StatusConflict},
		{"custom code", apperrors.NewAppError(http.StatusServiceUnavailable, "db down", errors.New("dial")), http.StatusServiceUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.HTTPStatus(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := apperrors.NewNotFoundError("quote Q-1 not found")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "quote Q-1 not found: resource not found", err.Error())
}
