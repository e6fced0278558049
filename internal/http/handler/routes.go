package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function such as (*sql.DB).PingContext to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Dependencies are the collaborators the HTTP routes are wired to.
type Dependencies struct {
	Store     Pinger
	Documents service.DocumentService
	Audit     service.AuditService
	JWTSecret []byte
}

// HealthCheck pings the backing store.
//
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.Store))
	app.Get("/healthz", LivenessProbe())

	auth := middleware.Auth(d.JWTSecret)

	docs := app.Group("/documents", auth)
	docs.Get("/", ListDocuments(d.Documents))
	docs.Post("/", UploadDocument(d.Documents))
	// Registered before /:id so "stats" is not taken for an id.
	docs.Get("/stats", DocumentStats(d.Documents))
	docs.Get("/:id", GetDocument(d.Documents))
	docs.Get("/:id/download", DownloadDocument(d.Documents))
	docs.Patch("/:id", RenameDocument(d.Documents))
	docs.Delete("/:id", DeleteDocument(d.Documents))

	logs := app.Group("/logs", auth)
	logs.Get("/", ListLogs(d.Audit))
	logs.Delete("/", middleware.RequireAdmin(), ClearLogs(d.Audit))
}
