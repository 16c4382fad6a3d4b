package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	portsrepo "github.com/birukt/bank_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/birukt/bank_ledger_app/internal/core/ports/services"
	"github.com/birukt/bank_ledger_app/internal/core/services"
	"github.com/birukt/bank_ledger_app/internal/dto"
	eventskafka "github.com/birukt/bank_ledger_app/internal/events/kafka"
	"github.com/birukt/bank_ledger_app/internal/events/noop"
	"github.com/birukt/bank_ledger_app/internal/handlers"
	"github.com/birukt/bank_ledger_app/internal/middleware"
	"github.com/birukt/bank_ledger_app/internal/platform/config"
	"github.com/birukt/bank_ledger_app/internal/repositories/database/pgsql"
	"github.com/birukt/bank_ledger_app/internal/repositories/memory"
	"github.com/birukt/bank_ledger_app/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

// @title Bank Ledger Backend API
// @version 1.0
// @description Phone-number addressed bank ledger with atomic transfers.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dto.RegisterValidators()

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	publisher := buildPublisher(cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Error closing event publisher", slog.String("error", err.Error()))
		}
	}()

	serviceContainer := services.NewContainer(cfg, repos, publisher)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.Metrics(),
		cors.Default(),
	)

	if rate, err := limiter.NewRateFromFormatted(cfg.RateLimit); err == nil {
		r.Use(middleware.RateLimit(limiter.New(limitermemory.NewStore(), rate)))
	} else {
		logger.Warn("Invalid RATE_LIMIT value, rate limiting disabled", slog.String("value", cfg.RateLimit))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildRepositories wires the postgres-backed stores when a database URL is
// configured, falling back to the in-memory store for local development.
func buildRepositories(cfg *config.Config, logger *slog.Logger) (*portsrepo.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("No PGSQL_URL configured, using the in-memory store. Data will not survive restarts.")
		repos := memory.NewRepositoryProvider(cfg.LockTimeout)
		return &repos, func() {}, nil
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		dbPool.Close()
		return nil, nil, err
	}

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)
	return &repos, dbPool.Close, nil
}

// runMigrations applies all pending schema migrations using a separate
// database/sql connection, as required by golang-migrate.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// buildPublisher returns the Kafka publisher when brokers are configured and
// a no-op publisher otherwise.
func buildPublisher(cfg *config.Config, logger *slog.Logger) portssvc.EventPublisher {
	if len(cfg.KafkaBrokers) == 0 {
		return noop.NewPublisher()
	}
	logger.Info("Kafka event publisher enabled", slog.String("topic", cfg.KafkaTopic))
	return eventskafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
}
