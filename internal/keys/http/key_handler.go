// Package http provides HTTP handlers for database key management and
// value encryption operations.
package http

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/aegis/internal/httputil"
	keysDomain "github.com/allisson/aegis/internal/keys/domain"
	"github.com/allisson/aegis/internal/keys/http/dto"
	keysUseCase "github.com/allisson/aegis/internal/keys/usecase"
	customValidation "github.com/allisson/aegis/internal/validation"
)

// KeyHandler handles HTTP requests for database key lifecycle and
// encrypt/decrypt operations.
type KeyHandler struct {
	keyUseCase keysUseCase.KeyUseCase // Business logic for key and value operations
	logger     *slog.Logger           // Structured logger for request handling and error reporting
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(keyUseCase keysUseCase.KeyUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyUseCase: keyUseCase,
		logger:     logger,
	}
}

// databaseFromParam parses the :uuid URL parameter into a database descriptor.
func (h *KeyHandler) databaseFromParam(c *gin.Context) (keysDomain.Database, bool) {
	id, err := uuid.Parse(c.Param("uuid"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid database uuid: %w", err), h.logger)
		return nil, false
	}
	return keysDomain.NewDescriptor(id), true
}

// InitHandler creates a database key for a new database.
// POST /v1/dbs/:uuid/init
// Returns 200 OK with {"ok": true}, or 503 if the key manager fails.
func (h *KeyHandler) InitHandler(c *gin.Context) {
	db, ok := h.databaseFromParam(c)
	if !ok {
		return
	}

	// The body is optional; an empty body means no provider options.
	var req dto.InitDatabaseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httputil.HandleBadRequestGin(c, err, h.logger)
			return
		}
	}

	if !h.keyUseCase.InitDB(c.Request.Context(), db, req.Options) {
		httputil.HandleErrorGin(c, keysDomain.ErrKeyManagerUnavailable, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Ok: true})
}

// OpenHandler warms the cache with the key of an existing database.
// POST /v1/dbs/:uuid/open
// Returns 200 OK with {"ok": true}, or 503 if the key manager fails.
func (h *KeyHandler) OpenHandler(c *gin.Context) {
	db, ok := h.databaseFromParam(c)
	if !ok {
		return
	}

	if !h.keyUseCase.OpenDB(c.Request.Context(), db) {
		httputil.HandleErrorGin(c, keysDomain.ErrKeyManagerUnavailable, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{Ok: true})
}

// EncryptHandler encrypts a value bound to the database and logical key.
// POST /v1/dbs/:uuid/encrypt
// Returns 200 OK with the base64-encoded ciphertext envelope.
func (h *KeyHandler) EncryptHandler(c *gin.Context) {
	db, ok := h.databaseFromParam(c)
	if !ok {
		return
	}

	var req dto.EncryptRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	logicalKey, err := base64.StdEncoding.DecodeString(req.Key)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64 key: %w", err), h.logger)
		return
	}
	plaintext, err := base64.StdEncoding.DecodeString(req.Plaintext)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64 plaintext: %w", err), h.logger)
		return
	}

	ciphertext, err := h.keyUseCase.Encrypt(c.Request.Context(), db, logicalKey, plaintext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.EncryptResponse{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	})
}

// DecryptHandler decrypts a ciphertext envelope bound to the database and logical key.
// POST /v1/dbs/:uuid/decrypt
// Returns 200 OK with the base64-encoded plaintext.
func (h *KeyHandler) DecryptHandler(c *gin.Context) {
	db, ok := h.databaseFromParam(c)
	if !ok {
		return
	}

	var req dto.DecryptRequest

	// Parse and bind JSON
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	// Validate request
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	logicalKey, err := base64.StdEncoding.DecodeString(req.Key)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64 key: %w", err), h.logger)
		return
	}
	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid base64 ciphertext: %w", err), h.logger)
		return
	}

	plaintext, err := h.keyUseCase.Decrypt(c.Request.Context(), db, logicalKey, ciphertext)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DecryptResponse{
		Plaintext: base64.StdEncoding.EncodeToString(plaintext),
	})
}
