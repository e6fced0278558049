package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docvault/internal/http/middleware"
	"docvault/internal/logging"
	"docvault/internal/service"

	"go.uber.org/zap"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

var kindStatus = map[service.Kind]struct {
	status int
	code   string
}{
	service.KindValidation:          {fiber.StatusBadRequest, "VALIDATION_ERROR"},
	service.KindQuotaExceeded:       {fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE"},
	service.KindDuplicateName:       {fiber.StatusConflict, "DUPLICATE_NAME"},
	service.KindNotFoundOrForbidden: {fiber.StatusNotFound, "NOT_FOUND"},
	service.KindPersistenceFailure:  {fiber.StatusInternalServerError, "INTERNAL_ERROR"},
}

// writeServiceError maps a tagged service failure onto the error envelope. Persistence
// failures never expose their message.
func writeServiceError(c *fiber.Ctx, err error) error {
	kind := service.KindOf(err)
	m := kindStatus[kind]
	if kind == service.KindPersistenceFailure {
		logging.FromContext(c.UserContext()).Error("service failure", zap.Error(err))
		return writeError(c, m.status, m.code, "internal server error")
	}
	return writeError(c, m.status, m.code, err.Error())
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			return writeServiceError(c, svcErr)
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "access denied")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
