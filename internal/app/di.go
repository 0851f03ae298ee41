// Package app provides the dependency injection container that assembles the
// service from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/tasks/internal/auth/http"
	authService "github.com/allisson/tasks/internal/auth/service"
	authUseCase "github.com/allisson/tasks/internal/auth/usecase"
	"github.com/allisson/tasks/internal/config"
	"github.com/allisson/tasks/internal/database"
	"github.com/allisson/tasks/internal/http"
	"github.com/allisson/tasks/internal/metrics"
	outboxRepository "github.com/allisson/tasks/internal/outbox/repository"
	outboxUsecase "github.com/allisson/tasks/internal/outbox/usecase"
	taskHTTP "github.com/allisson/tasks/internal/task/http"
	taskUsecase "github.com/allisson/tasks/internal/task/usecase"
	userHTTP "github.com/allisson/tasks/internal/user/http"
	userUsecase "github.com/allisson/tasks/internal/user/usecase"
)

// Supported values of DB_DRIVER.
const (
	driverPostgres = "postgres"
	driverMySQL    = "mysql"
)

// OutboxStore is the outbox repository as seen by the use cases that write
// events and by the processor that delivers them.
type OutboxStore interface {
	userUsecase.OutboxEventRepository
	outboxUsecase.OutboxEventRepository
}

// lazy memoizes the first result of init, error included.
type lazy[T any] struct {
	once  sync.Once
	value T
	err   error
}

func (l *lazy[T]) get(init func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.value, l.err = init()
	})
	return l.value, l.err
}

func (l *lazy[T]) set(value T) {
	l.once.Do(func() {
		l.value = value
	})
}

// Option customizes a Container.
type Option func(*Container)

// WithDB makes the container use db instead of opening DB_CONNECTION_STRING.
// The container still closes it on Shutdown.
func WithDB(db *sql.DB) Option {
	return func(c *Container) {
		c.db.set(db)
	}
}

// WithLogger replaces the JSON stdout logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.loggerInit.Do(func() {
			c.logger = logger
		})
	}
}

// Container holds all application dependencies. Components are created on
// first access and shared afterwards; a failed initialization is remembered
// and returned on every later call.
type Container struct {
	config *config.Config

	// ctx bounds background goroutines owned by components (rate limiter
	// janitors); Shutdown cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	loggerInit sync.Once
	logger     *slog.Logger

	db              lazy[*sql.DB]
	txManager       lazy[database.TxManager]
	metricsProvider lazy[*metrics.Provider]
	businessMetrics lazy[metrics.BusinessMetrics]

	userRepo    lazy[userUsecase.UserRepository]
	outboxRepo  lazy[OutboxStore]
	userUseCase lazy[userUsecase.UseCase]
	userHandler lazy[*userHTTP.UserHandler]

	kmsService       lazy[authService.KMSService]
	accessTokens     lazy[authService.AccessTokenService]
	refreshTokenRepo lazy[authUseCase.RefreshTokenRepository]
	tokenUseCase     lazy[authUseCase.TokenUseCase]
	tokenHandler     lazy[*authHTTP.TokenHandler]

	taskRepo    lazy[taskUsecase.TaskRepository]
	taskUseCase lazy[taskUsecase.TaskUseCase]
	taskHandler lazy[*taskHTTP.TaskHandler]

	outboxUseCase lazy[*outboxUsecase.OutboxUseCase]
	httpServer    lazy[*http.Server]
	metricsServer lazy[*http.MetricsServer]

	mu sync.Mutex
}

// NewContainer creates a container for cfg.
func NewContainer(cfg *config.Config, opts ...Option) *Container {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Container{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger writing to stdout at LOG_LEVEL.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection pool.
func (c *Container) DB() (*sql.DB, error) {
	return c.db.get(c.initDB)
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	return c.txManager.get(func() (database.TxManager, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		return database.NewTxManager(db), nil
	})
}

// MetricsProvider returns the OpenTelemetry/Prometheus provider, or nil when
// METRICS_ENABLED is false.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	return c.metricsProvider.get(func() (*metrics.Provider, error) {
		if !c.config.MetricsEnabled {
			return nil, nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return provider, nil
	})
}

// BusinessMetrics returns the use case metrics recorder. It is a no-op
// recorder when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	return c.businessMetrics.get(func() (metrics.BusinessMetrics, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return metrics.NewNoOpBusinessMetrics(), nil
		}

		businessMetrics, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create business metrics: %w", err)
		}
		return businessMetrics, nil
	})
}

// OutboxRepository returns the outbox event repository for DB_DRIVER.
func (c *Container) OutboxRepository() (OutboxStore, error) {
	return c.outboxRepo.get(func() (OutboxStore, error) {
		db, err := c.driverDB("outbox repository")
		if err != nil {
			return nil, err
		}
		if c.config.DBDriver == driverMySQL {
			return outboxRepository.NewMySQLOutboxEventRepository(db), nil
		}
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	})
}

// OutboxUseCase returns the outbox processor.
func (c *Container) OutboxUseCase() (*outboxUsecase.OutboxUseCase, error) {
	return c.outboxUseCase.get(func() (*outboxUsecase.OutboxUseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
		}

		logger := c.Logger()
		return outboxUsecase.NewOutboxUseCase(
			outboxUsecase.Config{
				Interval:   c.config.WorkerInterval,
				BatchSize:  c.config.WorkerBatchSize,
				MaxRetries: c.config.WorkerMaxRetries,
			},
			txManager,
			outboxRepo,
			outboxUsecase.NewLoggingEventProcessor(logger),
			businessMetrics,
			logger,
		), nil
	})
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	return c.httpServer.get(c.initHTTPServer)
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	return c.metricsServer.get(func() (*http.MetricsServer, error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return nil, err
		}
		if provider == nil {
			return nil, nil
		}
		return http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider), nil
	})
}

// Shutdown releases every initialized resource. It is safe to call on a
// container whose components were never accessed.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()

	var shutdownErrors []error

	if provider := c.metricsProvider.value; provider != nil {
		if err := provider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if db := c.db.value; db != nil {
		if err := db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

func (c *Container) initLogger() *slog.Logger {
	var level slog.Level
	switch c.config.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// driverDB validates DB_DRIVER and returns the connection for a repository.
func (c *Container) driverDB(component string) (*sql.DB, error) {
	switch c.config.DBDriver {
	case driverPostgres, driverMySQL:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for %s: %w", component, err)
	}
	return db, nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	tokenHandler, err := c.TokenHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get token handler for http server: %w", err)
	}

	userHandler, err := c.UserHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get user handler for http server: %w", err)
	}

	taskHandler, err := c.TaskHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to get task handler for http server: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for http server: %w", err)
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())

	var meterProvider metric.MeterProvider
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server.SetupRouter(
		c.ctx,
		c.config,
		http.Handlers{Token: tokenHandler, User: userHandler, Task: taskHandler},
		tokenUseCase,
		meterProvider,
	)

	return server, nil
}
