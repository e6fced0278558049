package app

import (
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docvault/docs"
	"docvault/internal/codec"
	"docvault/internal/config"
	"docvault/internal/http/handler"
	"docvault/internal/http/middleware"
	"docvault/internal/service"
)

// multipartOverhead leaves room for form boundaries and headers around the file itself.
const multipartOverhead = 1 << 20

// Registry is the subset of a prometheus registry the server needs.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewServer builds the services on top of b and returns a ready-to-listen Fiber app.
func NewServer(cfg *config.AppConfig, b *Backend, logger *zap.Logger, reg Registry) (*fiber.App, error) {
	c := codec.New(cfg.MaxUploadBytes)

	audit, err := service.NewAuditLog(b.AuditLog, b.Users, logger, reg)
	if err != nil {
		return nil, err
	}
	store := service.NewDocumentStore(b.Documents)
	docSvc := service.NewDocumentService(store, audit, c, logger, service.Options{AuditReads: cfg.AuditReads})

	prom, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handler.ErrorHandler(),
		// Oversized files must reach the codec so they are reported as a quota failure.
		BodyLimit: int(c.Limit()) + multipartOverhead,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger))
	app.Use(prom.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handler.RegisterRoutes(app, handler.Dependencies{
		Store:     b.Health,
		Documents: docSvc,
		Audit:     audit,
		JWTSecret: []byte(cfg.JWTSecret),
	})

	app.Get("/swagger/*", swaggerUI)

	return app, nil
}

// swaggerUI serves the API docs with the host and scheme the client used.
func swaggerUI(c *fiber.Ctx) error {
	scheme := c.Protocol()
	if proto := c.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	docs.SwaggerInfo.Host = c.Get("Host")
	docs.SwaggerInfo.Schemes = []string{scheme}

	return swagger.HandlerDefault(c)
}
