package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/allisson/aegis/internal/config"
	cryptoService "github.com/allisson/aegis/internal/crypto/service"
	apperrors "github.com/allisson/aegis/internal/errors"
	keyCache "github.com/allisson/aegis/internal/keys/cache"
	keysDomain "github.com/allisson/aegis/internal/keys/domain"
	keysService "github.com/allisson/aegis/internal/keys/service"
	"github.com/allisson/aegis/internal/metrics"
)

// KeyManagerInitGrace bounds how long startup waits for the key manager
// backend to become ready.
const KeyManagerInitGrace = 60 * time.Second

// bumpQueueSize bounds the pending recency bumps. Bumps are best effort:
// when the queue is full the bump is dropped and the entry keeps its old
// recency position. Its pending-bump flag stays set, so later lookups schedule
// no new bump until the entry is re-inserted or expires.
const bumpQueueSize = 4096

// keyUseCase implements KeyUseCase.
type keyUseCase struct {
	keyManager  keysService.KeyManager
	valueCipher *cryptoService.ValueCipher
	cache       *keyCache.Cache
	metrics     metrics.BusinessMetrics
	logger      *slog.Logger

	// group collapses concurrent key manager fetches for the same database.
	group singleflight.Group

	bumpCh    chan uuid.UUID
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewKeyUseCase creates the key service coordinator.
func NewKeyUseCase(
	keyManager keysService.KeyManager,
	valueCipher *cryptoService.ValueCipher,
	cache *keyCache.Cache,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) KeyUseCase {
	return &keyUseCase{
		keyManager:  keyManager,
		valueCipher: valueCipher,
		cache:       cache,
		metrics:     businessMetrics,
		logger:      logger,
		bumpCh:      make(chan uuid.UUID, bumpQueueSize),
		done:        make(chan struct{}),
	}
}

// InitDB creates a database key via the key manager and installs it.
func (u *keyUseCase) InitDB(
	ctx context.Context,
	db keysDomain.Database,
	options map[string]string,
) bool {
	key, err := u.keyManager.InitDB(ctx, db, options)
	if err != nil {
		u.logger.Error("failed to initialize database key",
			slog.String("uuid", db.UUID().String()),
			slog.Any("error", err),
		)
		return false
	}

	u.install(ctx, db.UUID(), key)
	return true
}

// OpenDB fetches a database key via the key manager and installs it.
func (u *keyUseCase) OpenDB(ctx context.Context, db keysDomain.Database) bool {
	key, err := u.keyManager.OpenDB(ctx, db)
	if err != nil {
		u.logger.Error("failed to open database key",
			slog.String("uuid", db.UUID().String()),
			slog.Any("error", err),
		)
		return false
	}

	u.install(ctx, db.UUID(), key)
	return true
}

// Encrypt produces a ciphertext envelope for plaintext under the database key.
func (u *keyUseCase) Encrypt(
	ctx context.Context,
	db keysDomain.Database,
	logicalKey, plaintext []byte,
) ([]byte, error) {
	key, err := u.databaseKey(ctx, db)
	if err != nil {
		return nil, err
	}
	return u.valueCipher.Encrypt(key, db.UUID(), logicalKey, plaintext)
}

// Decrypt recovers the plaintext from a ciphertext envelope under the database key.
func (u *keyUseCase) Decrypt(
	ctx context.Context,
	db keysDomain.Database,
	logicalKey, ciphertext []byte,
) ([]byte, error) {
	key, err := u.databaseKey(ctx, db)
	if err != nil {
		return nil, err
	}
	return u.valueCipher.Decrypt(key, db.UUID(), logicalKey, ciphertext)
}

// databaseKey returns the database key for db, from the cache when fresh,
// otherwise from the key manager (installing the result).
//
// The freshness check is advisory: it may claim fresh for an entry a sweep
// just removed, in which case the lookup below misses and the key manager
// path runs anyway.
func (u *keyUseCase) databaseKey(ctx context.Context, db keysDomain.Database) ([]byte, error) {
	id := db.UUID()

	if u.cache.IsFresh(id) {
		if key, needsBump, ok := u.cache.Lookup(id); ok {
			if needsBump {
				u.scheduleBump(id)
			}
			u.metrics.RecordCacheEvent(ctx, metrics.CacheEventHit)
			return key, nil
		}
	}

	u.metrics.RecordCacheEvent(ctx, metrics.CacheEventMiss)

	value, err, _ := u.group.Do(id.String(), func() (any, error) {
		key, err := u.keyManager.OpenDB(ctx, db)
		if err != nil {
			return nil, apperrors.Wrap(keysDomain.ErrKeyManagerUnavailable, err.Error())
		}
		u.install(ctx, id, key)
		return key, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]byte), nil
}

// install inserts a database key into the cache under the current tunables.
func (u *keyUseCase) install(ctx context.Context, id uuid.UUID, key []byte) {
	victim, evicted := u.cache.Insert(id, key, config.CacheLimit(), config.CacheMaxAge())
	if evicted {
		u.logger.Debug("evicted least recently used cache entry",
			slog.String("uuid", victim.String()),
		)
		u.metrics.RecordCacheEvent(ctx, metrics.CacheEventEviction)
	}
	u.metrics.RecordCacheSize(ctx, int64(u.cache.Len()))
}

// scheduleBump enqueues a recency bump for the worker. Best effort: if the
// queue is full the bump is dropped.
func (u *keyUseCase) scheduleBump(id uuid.UUID) {
	select {
	case u.bumpCh <- id:
	default:
		u.logger.Warn("bump queue full, dropping recency bump",
			slog.String("uuid", id.String()),
		)
	}
}

// Start launches the housekeeping worker. Idempotent.
func (u *keyUseCase) Start() {
	u.startOnce.Do(func() {
		u.wg.Add(1)
		go u.worker()
	})
}

// Close stops the worker and purges cached key material. Idempotent.
func (u *keyUseCase) Close() {
	u.stopOnce.Do(func() {
		close(u.done)
		u.wg.Wait()
		u.cache.Purge()
	})
}

// worker applies recency bumps and runs the periodic TTL sweep. The sweep
// period is re-read from configuration on every cycle.
func (u *keyUseCase) worker() {
	defer u.wg.Done()

	ctx := context.Background()
	sweep := time.NewTimer(config.CacheExpirationCheckInterval())
	defer sweep.Stop()

	for {
		select {
		case <-u.done:
			return

		case id := <-u.bumpCh:
			u.cache.Bump(id)
			u.metrics.RecordCacheEvent(ctx, metrics.CacheEventBump)

		case <-sweep.C:
			removed, err := u.cache.SweepExpired()
			if err != nil {
				// Index divergence means a write was lost; the cache cannot
				// be trusted and the process must restart to rebuild it.
				u.logger.Error("cache index divergence detected", slog.Any("error", err))
				panic(err)
			}
			if removed > 0 {
				u.logger.Debug("swept expired cache entries", slog.Int("count", removed))
				for i := 0; i < removed; i++ {
					u.metrics.RecordCacheEvent(ctx, metrics.CacheEventExpiration)
				}
				u.metrics.RecordCacheSize(ctx, int64(u.cache.Len()))
			}
			sweep.Reset(config.CacheExpirationCheckInterval())
		}
	}
}
