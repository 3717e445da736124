// Package app provides the dependency injection container for assembling application components.
package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/allisson/aegis/internal/config"
	cryptoService "github.com/allisson/aegis/internal/crypto/service"
	aegisHTTP "github.com/allisson/aegis/internal/http"
	keyCache "github.com/allisson/aegis/internal/keys/cache"
	keysHTTP "github.com/allisson/aegis/internal/keys/http"
	keysService "github.com/allisson/aegis/internal/keys/service"
	keysUseCase "github.com/allisson/aegis/internal/keys/usecase"
	"github.com/allisson/aegis/internal/metrics"
)

// metricsNamespace prefixes every metric emitted by the service.
const metricsNamespace = "aegis"

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Key manager backend
	keyManager keysService.KeyManager
	kmsManager *keysService.KMSKeyManager

	// Cache and use case
	cache      *keyCache.Cache
	keyUseCase keysUseCase.KeyUseCase

	// Servers
	httpServer *aegisHTTP.Server

	// Initialization flags for thread-safety
	loggerInit     sync.Once
	metricsInit    sync.Once
	keyManagerInit sync.Once
	cacheInit      sync.Once
	useCaseInit    sync.Once
	httpServerInit sync.Once
	initErrors     map[string]error
	mu             sync.Mutex
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		var level slog.Level
		switch strings.ToLower(c.config.LogLevel) {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		c.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	})
	return c.logger
}

// MetricsProvider returns the metrics provider with Prometheus exporter.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsInit.Do(func() {
		provider, err := metrics.NewProvider()
		if err != nil {
			c.storeInitError("metrics", err)
			return
		}
		c.metricsProvider = provider

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), metricsNamespace)
		if err != nil {
			c.storeInitError("metrics", err)
			return
		}
		c.businessMetrics = businessMetrics
	})
	if err := c.initError("metrics"); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the key service metrics recorder.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	if _, err := c.MetricsProvider(); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// KeyManager returns the key manager backend.
//
// With KMS_KEY_URI set, a KMS-backed manager is opened under the startup
// grace period; otherwise an in-memory local manager is used, which is only
// suitable for development.
func (c *Container) KeyManager() (keysService.KeyManager, error) {
	c.keyManagerInit.Do(func() {
		if c.config.KMSKeyURI == "" {
			c.Logger().Warn("KMS_KEY_URI not set, using in-memory local key manager")
			c.keyManager = keysService.NewLocalKeyManager()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), keysUseCase.KeyManagerInitGrace)
		defer cancel()

		manager, err := keysService.NewKMSKeyManager(ctx, c.config.KMSKeyURI)
		if err != nil {
			c.storeInitError("key_manager", err)
			return
		}
		c.kmsManager = manager
		c.keyManager = manager
	})
	if err := c.initError("key_manager"); err != nil {
		return nil, err
	}
	return c.keyManager, nil
}

// Cache returns the key cache.
func (c *Container) Cache() *keyCache.Cache {
	c.cacheInit.Do(func() {
		c.cache = keyCache.New()
	})
	return c.cache
}

// KeyUseCase returns the key service coordinator with metrics instrumentation,
// starting its housekeeping worker on first access.
func (c *Container) KeyUseCase() (keysUseCase.KeyUseCase, error) {
	var err error
	c.useCaseInit.Do(func() {
		var keyManager keysService.KeyManager
		keyManager, err = c.KeyManager()
		if err != nil {
			c.storeInitError("key_use_case", err)
			return
		}

		var businessMetrics metrics.BusinessMetrics
		businessMetrics, err = c.BusinessMetrics()
		if err != nil {
			c.storeInitError("key_use_case", err)
			return
		}

		useCase := keysUseCase.NewKeyUseCase(
			keyManager,
			cryptoService.NewValueCipher(),
			c.Cache(),
			businessMetrics,
			c.Logger(),
		)
		useCase.Start()
		c.keyUseCase = keysUseCase.NewKeyUseCaseWithMetrics(useCase, businessMetrics)
	})
	if err := c.initError("key_use_case"); err != nil {
		return nil, err
	}
	return c.keyUseCase, nil
}

// HTTPServer returns the HTTP server with all handlers wired.
func (c *Container) HTTPServer() (*aegisHTTP.Server, error) {
	c.httpServerInit.Do(func() {
		keyUseCase, err := c.KeyUseCase()
		if err != nil {
			c.storeInitError("http_server", err)
			return
		}

		provider, err := c.MetricsProvider()
		if err != nil {
			c.storeInitError("http_server", err)
			return
		}

		keyHandler := keysHTTP.NewKeyHandler(keyUseCase, c.Logger())
		c.httpServer = aegisHTTP.NewServer(c.config, keyHandler, provider, c.Logger())
	})
	if err := c.initError("http_server"); err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// Shutdown releases all resources: stops the coordinator worker, purges
// cached key material, closes the KMS keeper, and flushes metrics.
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error

	if c.keyUseCase != nil {
		c.keyUseCase.Close()
	}

	if c.kmsManager != nil {
		if err := c.kmsManager.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// storeInitError records an initialization error for a component.
func (c *Container) storeInitError(component string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[component] = err
}

// initError returns the stored initialization error for a component, if any.
func (c *Container) initError(component string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[component]
}
