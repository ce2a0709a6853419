package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("proposal not found: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not the owner: %w", ErrForbidden), http.StatusForbidden},
		{"validation", NewValidationError(map[string]string{"title": "title too short"}), http.StatusBadRequest},
		{"conflict", fmt.Errorf("already applied: %w", ErrConflict), http.StatusConflict},
		{"self application", ErrSelfApplication, http.StatusUnprocessableEntity},
		{"business rule", fmt.Errorf("swap not completed: %w", ErrBusinessRule), http.StatusUnprocessableEntity},
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"app error code", New(http.StatusTeapot, "teapot", nil), http.StatusTeapot},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MapErrorToStatus(tc.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(map[string]string{
		"title":       "title must be at least 5 characters",
		"description": "description must be at least 20 characters",
	})

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "description must be at least 20 characters; title must be at least 5 characters", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(fmt.Errorf("create proposal: %w", err), &ve))
	assert.Contains(t, ve.Fields, "title")
}
