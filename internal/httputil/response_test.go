package httputil_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/aegis/internal/errors"
	"github.com/allisson/aegis/internal/httputil"
)

func setupContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var response httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        apperrors.Wrap(apperrors.ErrNotFound, "no key"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "invalid input",
			err:        apperrors.Wrap(apperrors.ErrInvalidInput, "decryption failed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "unavailable",
			err:        apperrors.Wrap(apperrors.ErrUnavailable, "key manager down"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
		},
		{
			name:       "unknown error",
			err:        apperrors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorder := setupContext(t)
			httputil.HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, recorder).Error)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, recorder := setupContext(t)
		httputil.HandleErrorGin(c, nil, logger)
		assert.Empty(t, recorder.Body.Bytes())
	})

	t.Run("internal errors do not leak details", func(t *testing.T) {
		c, recorder := setupContext(t)
		httputil.HandleErrorGin(c, apperrors.New("secret detail"), logger)
		assert.NotContains(t, recorder.Body.String(), "secret detail")
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, recorder := setupContext(t)
	httputil.HandleBadRequestGin(c, apperrors.New("malformed json"), slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "bad_request", decodeError(t, recorder).Error)
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, recorder := setupContext(t)
	httputil.HandleValidationErrorGin(c, apperrors.New("must not be blank"), slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "validation_error", decodeError(t, recorder).Error)
}
