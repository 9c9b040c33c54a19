package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cashier/service"

	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation error",
			err:        &service.ValidationError{Field: "amount", Reason: "too small"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrapped validation error",
			err:        fmt.Errorf("create deposit: %w", &service.ValidationError{Field: "amount", Reason: "too small"}),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "account not found",
			err:        service.ErrAccountNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "request not found",
			err:        service.ErrRequestNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "already processed",
			err:        service.ErrAlreadyProcessed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "insufficient balance",
			err:        service.ErrInsufficientBalance,
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "wrapped sentinel",
			err:        fmt.Errorf("approve: %w", service.ErrAlreadyProcessed),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}

func TestRespondServiceError_DoesNotLeakInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.Contains(t, rec.Body.String(), "internal error")
}
