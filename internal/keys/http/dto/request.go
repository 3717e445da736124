// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/aegis/internal/validation"
)

// InitDatabaseRequest contains the parameters for initializing a database key.
type InitDatabaseRequest struct {
	Options map[string]string `json:"options"` // Provider-specific options, passed through to the key manager
}

// EncryptRequest contains the parameters for encrypting a value.
type EncryptRequest struct {
	Key       string `json:"key"`       // Base64-encoded logical key
	Plaintext string `json:"plaintext"` // Base64-encoded plaintext
}

// Validate checks if the encrypt request is valid.
func (r *EncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
		validation.Field(&r.Plaintext,
			customValidation.Base64,
		),
	)
}

// DecryptRequest contains the parameters for decrypting a value.
type DecryptRequest struct {
	Key        string `json:"key"`        // Base64-encoded logical key
	Ciphertext string `json:"ciphertext"` // Base64-encoded ciphertext envelope
}

// Validate checks if the decrypt request is valid.
func (r *DecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
		validation.Field(&r.Ciphertext,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}
