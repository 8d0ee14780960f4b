package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/catppuccin/api/internal/server/middleware"
)

func TestHTTPStatusFromCode(t *testing.T) {
	cases := map[string]int{
		CodeInvalidInput:       http.StatusBadRequest,
		CodeNotFound:           http.StatusNotFound,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeMethodNotAllowed:   http.StatusMethodNotAllowed,
		CodeRateLimited:        http.StatusTooManyRequests,
		CodeExternalService:    http.StatusBadGateway,
		CodeServiceUnavailable: http.StatusServiceUnavailable,
		CodeTimeout:            http.StatusGatewayTimeout,
		CodeDataProcessing:     http.StatusInternalServerError,
		CodeConfigInvalid:      http.StatusInternalServerError,
		"SOMETHING_ELSE":       http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatusFromCode(code), code)
	}
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(fmt.Errorf("boom"))
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "boom", env.Context["wrapped_error"])

	original := NewNotFoundError("Port not found: emacs")
	assert.Same(t, original, EnsureEnvelope(original))

	assert.Equal(t, CodeInternal, EnsureEnvelope(nil).Code)
}

func TestWrapUsesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "req-123")

	env := WrapExternalService(ctx, fmt.Errorf("both sources down"), "Failed to fetch ports")
	assert.Equal(t, CodeExternalService, env.Code)
	assert.Equal(t, "req-123", env.CorrelationID)
	assert.Equal(t, "both sources down", env.Context["wrapped_error"])
	assert.Equal(t, errors.SeverityMedium, env.Severity)

	cfg := WrapConfigInvalid(ctx, fmt.Errorf("no location"), "Dataset not configured")
	assert.Equal(t, errors.SeverityHigh, cfg.Severity)

	plain := WrapNotFound(nil, nil, "missing")
	assert.NotEmpty(t, plain.CorrelationID)
	assert.Empty(t, plain.Context)
}

func TestRespondWithEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ports/emacs", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDContextKey, "req-abc"))
	rec := httptest.NewRecorder()

	RespondWithEnvelope(rec, req, NewNotFoundError("Port not found: emacs"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "Port not found: emacs", body.Error.Message)
	assert.Equal(t, "req-abc", body.Error.RequestID)
	assert.Nil(t, body.Error.Details)
}

func TestRespondWithErrorWrapsPlainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondWithError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("plain"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeInternal, body.Error.Code)
	assert.Equal(t, "plain", body.Error.Details["wrapped_error"])
	assert.Contains(t, body.Error.RequestID, "fallback-")
}
