package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"libris/internal/config"
	"libris/internal/pkg/metrics"
	"libris/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/idempotency"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// Setup configures all middlewares for the application. storage may be
// nil, in which case limiter state stays in process memory.
func Setup(app *fiber.App, cfg *config.Config, m *metrics.Metrics, storage fiber.Storage) {
	// Recover middleware - catches panics
	app.Use(recover.New())

	// Request id for log correlation
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return uuid.NewString() },
	}))

	// Gzip Compression middleware
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Security Headers middleware (Helmet)
	app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "SAMEORIGIN",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		PermissionPolicy:          "geolocation=(), microphone=(), camera=()",
	}))

	// Rate Limiter middleware - General API (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.TooManyRequests(c, "Too many requests, please slow down")
		},
	}))

	// Request metrics
	if m != nil {
		app.Use(Metrics(m))
	}

	// Logger middleware
	if cfg.IsDev() {
		app.Use(logger.New(logger.Config{
			Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format:     "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid} | ${error}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	// CORS middleware
	if cfg.IsDev() {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     "*",
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Idempotency-Key",
			AllowCredentials: false, // Cannot be true with AllowOrigins: "*"
		}))
	} else {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.GetAllowedOrigins(),
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Idempotency-Key",
			AllowCredentials: true,
		}))
	}
}

// Metrics records request counts and latency by matched route
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		route := c.Route().Path
		m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// IdempotencyKeyHeader carries the client's retry key
const IdempotencyKeyHeader = "X-Idempotency-Key"

// idempotencyNamespace seeds the derived storage keys
var idempotencyNamespace = uuid.MustParse("6f1c2a0e-4d5b-5e7a-9c3d-1b2e4f6a8c0d")

// Idempotency replays the first response for a repeated X-Idempotency-Key.
// Requests without the header run normally. The stored key is scoped to
// the caller, method and path, so one key never replays another user's
// or another operation's response.
func Idempotency(cfg config.IdempotencyConfig, storage fiber.Storage) fiber.Handler {
	replay := idempotency.New(idempotency.Config{
		Lifetime:            cfg.Lifetime,
		KeyHeader:           IdempotencyKeyHeader,
		KeyHeaderValidate:   func(string) error { return nil },
		KeepResponseHeaders: []string{fiber.HeaderContentType},
		Storage:             storage,
	})

	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyKeyHeader)
		if key == "" {
			return replay(c)
		}
		if _, err := uuid.Parse(key); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, IdempotencyKeyHeader+" must be a UUID")
		}

		c.Request().Header.Set(IdempotencyKeyHeader, ScopedIdempotencyKey(c, key))
		return replay(c)
	}
}

// ScopedIdempotencyKey derives the storage key for a client key
func ScopedIdempotencyKey(c *fiber.Ctx, key string) string {
	caller := "anonymous"
	if auth, ok := AuthContext(c); ok {
		caller = strconv.FormatInt(auth.UserID, 10)
	}
	scope := strings.Join([]string{caller, c.Method(), c.Path(), key}, "|")
	return uuid.NewSHA1(idempotencyNamespace, []byte(scope)).String()
}

// AuthRateLimiter creates a stricter rate limiter for auth endpoints
// 10 requests per minute per IP (login, register)
func AuthRateLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Minute,
		Storage:    storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "-auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.TooManyRequests(c, "Too many login attempts, please wait a minute")
		},
	})
}

// CustomErrorHandler handles errors globally
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, message)
}
