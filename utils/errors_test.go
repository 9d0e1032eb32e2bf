package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAppErrorStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewConflictError("taken"), http.StatusBadRequest},
		{NewAuthError("nope"), http.StatusUnauthorized},
		{NewForbiddenError("admins only"), http.StatusForbidden},
		{NewNotFoundError("missing"), http.StatusNotFound},
		{NewInternalError("boom", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Status(), tt.err.Message)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("save: %w", NewInternalError("Failed to save", cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, KindNotFound, KindOf(NewNotFoundError("x")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body["error"]
}

func TestWriteErrorUsesClientMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zaptest.NewLogger(t), NewNotFoundError("Order not found"), "Failed")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Order not found", decodeError(t, rec))
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, zaptest.NewLogger(t), NewInternalError("Failed to save cart", errors.New("E11000 secret detail")), "Failed to save cart")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to save cart", decodeError(t, rec))

	rec = httptest.NewRecorder()
	WriteError(rec, nil, errors.New("raw driver error"), "Something went wrong")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong", decodeError(t, rec))
}
