package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"libris/internal/adapters/http/middleware"
	"libris/internal/adapters/http/routes"
	"libris/internal/adapters/persistence/repositories"
	"libris/internal/config"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"
	"libris/internal/pkg/telemetry"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	_ "libris/docs" // Swagger docs
)

// @title Libris API
// @version 1.0
// @description Library circulation backend. Every business operation runs as the caller's database role.

// @contact.name API Support
// @contact.email support@libris.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logger.New(cfg.AppMode, cfg.LogLevel, cfg.Telemetry.ServiceName)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync() //nolint:errcheck

	if !cfg.EnvFileLoaded {
		appLog.Info("No .env file found, using environment variables")
	}

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		fatal(appLog, "Failed to initialise tracing", err)
	}

	m := metrics.New("libris", prometheus.DefaultRegisterer)

	// Administrative connection (sessions, roles, accounts, health)
	adminDB, err := config.ConnectDatabase(cfg, appLog)
	if err != nil {
		fatal(appLog, "Failed to connect to database", err)
	}

	// Shared limiter and idempotency state when redis is configured
	var storage fiber.Storage
	if cfg.Redis.Enabled() {
		rs, err := repositories.NewRedisStorage(cfg.Redis.URL, cfg.Redis.KeyPrefix)
		if err != nil {
			fatal(appLog, "Failed to connect to redis", err)
		}
		defer rs.Close()
		storage = rs
		appLog.Info("Using redis for limiter and idempotency storage")
	}

	deps, batch, err := wire(cfg, adminDB, tp, m, storage, appLog)
	if err != nil {
		fatal(appLog, "Failed to wire services", err)
	}

	// Scheduled maintenance jobs
	var scheduler *services.BatchScheduler
	if cfg.Batch.Schedule != "" {
		scheduler, err = services.NewBatchScheduler(batch, cfg.Database.Admin, cfg.Batch.Schedule, appLog)
		if err != nil {
			fatal(appLog, "Failed to schedule batch jobs", err)
		}
		scheduler.Start()
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Libris API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg, m, storage)

	// Setup routes
	routes.Setup(app, cfg, deps)

	// Graceful shutdown
	go gracefulShutdown(app, appLog)

	// Start server
	appLog.Info("Server starting",
		logger.String("port", cfg.Port),
		logger.String("mode", cfg.AppMode),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		appLog.Error("Server stopped with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Tracer shutdown failed", logger.Err(err))
	}
	if err := config.CloseDatabase(adminDB); err != nil {
		appLog.Warn("Closing database failed", logger.Err(err))
	}
}

// wire builds repositories, the connection broker and the services
func wire(
	cfg *config.Config,
	adminDB *gorm.DB,
	tp *telemetry.Provider,
	m *metrics.Metrics,
	storage fiber.Storage,
	appLog logger.Logger,
) (routes.Dependencies, *services.BatchService, error) {
	procs := repositories.NewProcedures(tp.Tracer("libris/procedures"), m)

	vault, err := services.NewCredentialVault(cfg.Roles)
	if err != nil {
		return routes.Dependencies{}, nil, err
	}
	appLog.Info("Role principals configured", logger.Any("principals", vault.Principals()))

	broker := repositories.NewConnectionBroker(cfg.Database, repositories.BrokerOptions{
		ConnectTimeout: cfg.Database.ConnectTimeout,
		Tracer:         tp.Tracer("libris/broker"),
		Metrics:        m,
		Logger:         appLog,
	})

	// Administrative-path repositories
	sessionRepo := repositories.NewSessionRepository(adminDB, procs)
	accountRepo := repositories.NewAccountRepository(adminDB, procs)
	roleRepo := repositories.NewRoleRepository(adminDB)

	gate := services.NewAuthenticationGate(
		services.NewSessionStore(sessionRepo),
		services.NewRoleResolver(roleRepo, appLog),
		repositories.NewStaffRepository(adminDB),
		vault,
		m,
		appLog,
	)
	accounts := services.NewAuthService(sessionRepo, accountRepo, services.NewLoginThrottle(2*time.Second, 5), appLog)

	// Role-path services; repositories are bound per connection
	circulation := services.NewCirculationService(broker, func(db *gorm.DB) repositories.CirculationRepository {
		return repositories.NewCirculationRepository(db, procs)
	}, appLog)
	reservations := services.NewReservationService(broker, func(db *gorm.DB) repositories.ReservationRepository {
		return repositories.NewReservationRepository(db, procs)
	}, appLog)
	fines := services.NewFineEngine(broker, func(db *gorm.DB) repositories.FineRepository {
		return repositories.NewFineRepository(db, procs)
	}, appLog)
	patrons := services.NewPatronService(broker, func(db *gorm.DB) repositories.PatronRepository {
		return repositories.NewPatronRepository(db, procs)
	}, appLog)
	batch := services.NewBatchService(broker, func(db *gorm.DB) repositories.BatchRepository {
		return repositories.NewBatchRepository(db, procs)
	}, m, appLog)
	catalog := services.NewCatalogService(broker, func(db *gorm.DB) repositories.CatalogRepository {
		return repositories.NewCatalogRepository(db, procs)
	}, appLog)
	users := services.NewUserAdminService(broker, func(db *gorm.DB) repositories.UserAdminRepository {
		return repositories.NewUserAdminRepository(db, procs)
	}, appLog)

	return routes.Dependencies{
		AdminDB:      adminDB,
		Gate:         gate,
		Accounts:     accounts,
		Circulation:  circulation,
		Reservations: reservations,
		Fines:        fines,
		Patrons:      patrons,
		Catalog:      catalog,
		Users:        users,
		Batch:        batch,
		Metrics:      m,
		Storage:      storage,
		Logger:       appLog,
	}, batch, nil
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App, appLog logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		appLog.Error("Error during shutdown", logger.Err(err))
	}
	appLog.Info("Server stopped gracefully")
}

func fatal(appLog logger.Logger, msg string, err error) {
	appLog.Error(msg, logger.Err(err))
	_ = appLog.Sync()
	os.Exit(1)
}
