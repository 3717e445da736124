package usecase

import (
	"context"
	"time"

	keysDomain "github.com/allisson/aegis/internal/keys/domain"
	"github.com/allisson/aegis/internal/metrics"
)

// keyUseCaseWithMetrics decorates KeyUseCase with metrics instrumentation.
type keyUseCaseWithMetrics struct {
	next    KeyUseCase
	metrics metrics.BusinessMetrics
}

// NewKeyUseCaseWithMetrics wraps a KeyUseCase with operation metrics recording.
func NewKeyUseCaseWithMetrics(useCase KeyUseCase, m metrics.BusinessMetrics) KeyUseCase {
	return &keyUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// InitDB records metrics for database key initialization.
func (k *keyUseCaseWithMetrics) InitDB(
	ctx context.Context,
	db keysDomain.Database,
	options map[string]string,
) bool {
	start := time.Now()
	ok := k.next.InitDB(ctx, db, options)

	status := "success"
	if !ok {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "init_db", status)
	k.metrics.RecordDuration(ctx, "init_db", time.Since(start), status)

	return ok
}

// OpenDB records metrics for database key opening.
func (k *keyUseCaseWithMetrics) OpenDB(ctx context.Context, db keysDomain.Database) bool {
	start := time.Now()
	ok := k.next.OpenDB(ctx, db)

	status := "success"
	if !ok {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "open_db", status)
	k.metrics.RecordDuration(ctx, "open_db", time.Since(start), status)

	return ok
}

// Encrypt records metrics for value encryption.
func (k *keyUseCaseWithMetrics) Encrypt(
	ctx context.Context,
	db keysDomain.Database,
	logicalKey, plaintext []byte,
) ([]byte, error) {
	start := time.Now()
	ciphertext, err := k.next.Encrypt(ctx, db, logicalKey, plaintext)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "encrypt", status)
	k.metrics.RecordDuration(ctx, "encrypt", time.Since(start), status)

	return ciphertext, err
}

// Decrypt records metrics for value decryption.
func (k *keyUseCaseWithMetrics) Decrypt(
	ctx context.Context,
	db keysDomain.Database,
	logicalKey, ciphertext []byte,
) ([]byte, error) {
	start := time.Now()
	plaintext, err := k.next.Decrypt(ctx, db, logicalKey, ciphertext)

	status := "success"
	if err != nil {
		status = "error"
	}

	k.metrics.RecordOperation(ctx, "decrypt", status)
	k.metrics.RecordDuration(ctx, "decrypt", time.Since(start), status)

	return plaintext, err
}

// Start delegates to the wrapped use case.
func (k *keyUseCaseWithMetrics) Start() {
	k.next.Start()
}

// Close delegates to the wrapped use case.
func (k *keyUseCaseWithMetrics) Close() {
	k.next.Close()
}
