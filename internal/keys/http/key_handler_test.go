package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/aegis/internal/crypto/service"
	keyCache "github.com/allisson/aegis/internal/keys/cache"
	"github.com/allisson/aegis/internal/keys/http/dto"
	keysService "github.com/allisson/aegis/internal/keys/service"
	keysUseCase "github.com/allisson/aegis/internal/keys/usecase"
	"github.com/allisson/aegis/internal/metrics"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.DiscardHandler)
	useCase := keysUseCase.NewKeyUseCase(
		keysService.NewLocalKeyManager(),
		cryptoService.NewValueCipher(),
		keyCache.New(),
		metrics.NewNopBusinessMetrics(),
		logger,
	)
	handler := NewKeyHandler(useCase, logger)

	router := gin.New()
	v1 := router.Group("/v1")
	v1.POST("/dbs/:uuid/init", handler.InitHandler)
	v1.POST("/dbs/:uuid/open", handler.OpenHandler)
	v1.POST("/dbs/:uuid/encrypt", handler.EncryptHandler)
	v1.POST("/dbs/:uuid/decrypt", handler.DecryptHandler)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(http.MethodPost, path, reader)
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestKeyHandler_Init(t *testing.T) {
	router := setupRouter(t)
	id := uuid.New()

	t.Run("init without body", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/init", nil)
		require.Equal(t, http.StatusOK, recorder.Code)

		var response dto.StatusResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Ok)
	})

	t.Run("init with options", func(t *testing.T) {
		recorder := doJSON(
			t,
			router,
			"/v1/dbs/"+uuid.NewString()+"/init",
			dto.InitDatabaseRequest{Options: map[string]string{"region": "us-east-1"}},
		)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("invalid uuid", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/not-a-uuid/init", nil)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestKeyHandler_Open(t *testing.T) {
	router := setupRouter(t)
	id := uuid.New()

	t.Run("open unknown database", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/open", nil)
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("open after init", func(t *testing.T) {
		require.Equal(t, http.StatusOK, doJSON(t, router, "/v1/dbs/"+id.String()+"/init", nil).Code)

		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/open", nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestKeyHandler_EncryptDecrypt(t *testing.T) {
	router := setupRouter(t)
	id := uuid.New()
	require.Equal(t, http.StatusOK, doJSON(t, router, "/v1/dbs/"+id.String()+"/init", nil).Code)

	logicalKey := base64.StdEncoding.EncodeToString([]byte("name"))
	plaintext := base64.StdEncoding.EncodeToString([]byte("hello"))

	t.Run("round trip", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/encrypt", dto.EncryptRequest{
			Key:       logicalKey,
			Plaintext: plaintext,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var encryptResponse dto.EncryptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &encryptResponse))

		envelope, err := base64.StdEncoding.DecodeString(encryptResponse.Ciphertext)
		require.NoError(t, err)
		assert.Len(t, envelope, 62)
		assert.Equal(t, byte(0x01), envelope[0])

		recorder = doJSON(t, router, "/v1/dbs/"+id.String()+"/decrypt", dto.DecryptRequest{
			Key:        logicalKey,
			Ciphertext: encryptResponse.Ciphertext,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var decryptResponse dto.DecryptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decryptResponse))
		assert.Equal(t, plaintext, decryptResponse.Plaintext)
	})

	t.Run("encrypt for uninitialized database", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+uuid.NewString()+"/encrypt", dto.EncryptRequest{
			Key:       logicalKey,
			Plaintext: plaintext,
		})
		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("encrypt with missing logical key", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/encrypt", dto.EncryptRequest{
			Plaintext: plaintext,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("encrypt with invalid base64", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/encrypt", dto.EncryptRequest{
			Key:       "not-base64!!!",
			Plaintext: plaintext,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("decrypt rejects non-ciphertext", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/decrypt", dto.DecryptRequest{
			Key:        logicalKey,
			Ciphertext: base64.StdEncoding.EncodeToString(make([]byte, 10)),
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("decrypt with the wrong logical key fails", func(t *testing.T) {
		recorder := doJSON(t, router, "/v1/dbs/"+id.String()+"/encrypt", dto.EncryptRequest{
			Key:       logicalKey,
			Plaintext: plaintext,
		})
		require.Equal(t, http.StatusOK, recorder.Code)

		var encryptResponse dto.EncryptResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &encryptResponse))

		recorder = doJSON(t, router, "/v1/dbs/"+id.String()+"/decrypt", dto.DecryptRequest{
			Key:        base64.StdEncoding.EncodeToString([]byte("other")),
			Ciphertext: encryptResponse.Ciphertext,
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
