package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/logging"
)

// Logger logs one structured line per HTTP request with request_id, method, path, status and
// latency in milliseconds. The request-scoped logger is also attached to the user context so
// downstream code can pick it up with logging.FromContext.
func Logger(log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		reqLog := log.With(zap.String("request_id", rid))
		c.SetUserContext(logging.WithContext(c.UserContext(), reqLog))

		err := c.Next()

		status := statusOf(c, err)
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency", float64(time.Since(start).Microseconds())/1000),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLog.Error("request", append(fields, zap.Error(err))...)
		default:
			reqLog.Info("request", fields...)
		}
		return err
	}
}

// statusOf returns the status the error handler will write for err, or the status already
// set on the response.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
