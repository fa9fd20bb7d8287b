package routes

import (
	"time"

	"libris/internal/adapters/http/handlers"
	"libris/internal/adapters/http/middleware"
	"libris/internal/config"
	"libris/internal/core/services"
	"libris/internal/pkg/logger"
	"libris/internal/pkg/metrics"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Dependencies are the wired services the routes expose
type Dependencies struct {
	AdminDB      *gorm.DB
	Gate         services.Authenticator
	Accounts     services.AccountService
	Circulation  services.Circulation
	Reservations services.ReservationQueue
	Fines        services.Fines
	Patrons      services.Patrons
	Catalog      services.Catalog
	Users        services.UserAdmin
	Batch        services.Batch
	Metrics      *metrics.Metrics
	Storage      fiber.Storage
	Logger       logger.Logger
}

// Setup configures all routes for the application
func Setup(app *fiber.App, cfg *config.Config, deps Dependencies) {
	log := deps.Logger

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(deps.AdminDB, cfg.AppMode)
	authHandler := handlers.NewAuthHandler(deps.Accounts, cfg.Cookie, log)
	circulationHandler := handlers.NewCirculationHandler(deps.Circulation, log)
	reservationHandler := handlers.NewReservationHandler(deps.Reservations, log)
	fineHandler := handlers.NewFineHandler(deps.Fines, log)
	patronHandler := handlers.NewPatronHandler(deps.Patrons, log)
	catalogHandler := handlers.NewCatalogHandler(deps.Catalog, log)
	userAdminHandler := handlers.NewUserAdminHandler(deps.Users, log)
	batchHandler := handlers.NewBatchHandler(deps.Batch, log)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	// Swagger documentation
	app.Get("/swagger/*", middleware.CacheControl(5*time.Minute), swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1", middleware.NoStore())
	apiV1.Get("/", healthHandler.APIInfo)

	authRequired := middleware.AuthMiddleware(deps.Gate)
	idempotent := middleware.Idempotency(cfg.Idempotency, deps.Storage)

	setupAuthRoutes(apiV1.Group("/auth"), authHandler, authRequired, deps.Storage)

	circulationRoutes := apiV1.Group("/circulation", authRequired)
	setupCirculationRoutes(circulationRoutes, circulationHandler, idempotent)

	reservationRoutes := apiV1.Group("/reservations", authRequired)
	setupReservationRoutes(reservationRoutes, reservationHandler, idempotent)

	fineRoutes := apiV1.Group("/fines", authRequired)
	setupFineRoutes(fineRoutes, fineHandler, idempotent)

	patronRoutes := apiV1.Group("/patrons", authRequired)
	setupPatronRoutes(patronRoutes, patronHandler, reservationHandler, idempotent)

	catalogRoutes := apiV1.Group("/materials", authRequired)
	setupCatalogRoutes(catalogRoutes, catalogHandler, idempotent)

	userRoutes := apiV1.Group("/users", authRequired, middleware.RequireStaff())
	setupUserAdminRoutes(userRoutes, userAdminHandler, idempotent)

	// Maintenance jobs (administration roles)
	batchRoutes := apiV1.Group("/batch", authRequired, middleware.RequireAdministrative())
	batchRoutes.Post("/daily-report", batchHandler.DailyReport)
	batchRoutes.Post("/:job", batchHandler.Run)

	app.Use(func(c *fiber.Ctx) error {
		return response.NotFound(c, "Route not found")
	})
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authRequired fiber.Handler, storage fiber.Storage) {
	// Public routes
	router.Post("/login", middleware.AuthRateLimiter(storage), handler.Login)
	router.Post("/register", middleware.AuthRateLimiter(storage), handler.Register)
	router.Get("/validate", handler.ValidateSession)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Post("/change-password", authRequired, handler.ChangePassword)
	router.Get("/me", authRequired, handler.Me)
}

// setupCirculationRoutes configures loan routes
func setupCirculationRoutes(router fiber.Router, handler *handlers.CirculationHandler, idempotent fiber.Handler) {
	// Any role
	router.Get("/loans/:id", handler.GetLoan)
	router.Post("/loans/:id/renew", idempotent, handler.Renew)

	// Staff only
	staff := router.Group("", middleware.RequireStaff())
	staff.Post("/checkout", idempotent, handler.Checkout)
	staff.Post("/checkin", idempotent, handler.Checkin)
	staff.Post("/loans/:id/lost", idempotent, handler.DeclareLost)
}

// setupReservationRoutes configures hold queue routes
func setupReservationRoutes(router fiber.Router, handler *handlers.ReservationHandler, idempotent fiber.Handler) {
	router.Post("/", idempotent, handler.Place)
	router.Get("/:id", handler.Get)
	router.Delete("/:id", idempotent, handler.Cancel)

	router.Post("/:id/fulfill", middleware.RequireStaff(), idempotent, handler.Fulfill)
}

// setupFineRoutes configures fine routes
func setupFineRoutes(router fiber.Router, handler *handlers.FineHandler, idempotent fiber.Handler) {
	router.Get("/:id", handler.Get)
	router.Post("/:id/pay", idempotent, handler.Pay)

	staff := router.Group("", middleware.RequireStaff())
	staff.Post("/", idempotent, handler.Assess)
	staff.Post("/:id/waive", idempotent, handler.Waive)
}

// setupPatronRoutes configures membership routes
func setupPatronRoutes(
	router fiber.Router,
	handler *handlers.PatronHandler,
	reservations *handlers.ReservationHandler,
	idempotent fiber.Handler,
) {
	router.Get("/:id/reservations", reservations.ListActive)
	router.Post("/:id/renew", idempotent, handler.RenewMembership)

	staff := router.Group("", middleware.RequireStaff())
	staff.Post("/", idempotent, handler.Create)
	staff.Put("/:id", idempotent, handler.Update)
	staff.Post("/:id/suspend", idempotent, handler.Suspend)
	staff.Post("/:id/reactivate", idempotent, handler.Reactivate)
}

// setupCatalogRoutes configures material and copy routes
func setupCatalogRoutes(router fiber.Router, handler *handlers.CatalogHandler, idempotent fiber.Handler) {
	router.Get("/:id", handler.GetMaterial)

	staff := router.Group("", middleware.RequireStaff())
	staff.Post("/", idempotent, handler.CreateMaterial)
	staff.Put("/:id", idempotent, handler.UpdateMaterial)
	staff.Delete("/:id", idempotent, handler.DeleteMaterial)
	staff.Post("/:id/copies", idempotent, handler.AddCopy)
}

// setupUserAdminRoutes configures account state and role routes. The group
// is already limited to staff; role changes need an administrative role.
func setupUserAdminRoutes(router fiber.Router, handler *handlers.UserAdminHandler, idempotent fiber.Handler) {
	router.Get("/:id/status", handler.Status)
	router.Get("/:id/roles", handler.Roles)
	router.Post("/:id/permissions/check", handler.CheckPermission)
	router.Post("/:id/roles/check", handler.CheckRole)

	admin := router.Group("", middleware.RequireAdministrative())
	admin.Post("/:id/roles", idempotent, handler.AssignRole)
	admin.Delete("/:id/roles/:roleId", idempotent, handler.RevokeRole)
}
