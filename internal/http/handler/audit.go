package handler

import (
	"github.com/gofiber/fiber/v2"

	"docvault/internal/service"
)

// ListLogs returns the audit entries visible to the caller. Admins see every user's entries.
//
// @Summary List audit log
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} logView
// @Router /logs [get]
func ListLogs(audit service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who, err := caller(c)
		if err != nil {
			return err
		}
		entries, err := audit.ListFor(c.UserContext(), who)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(newLogViews(entries))
	}
}

// ClearLogs truncates the audit log. Mounted behind middleware.RequireAdmin.
//
// @Summary Clear audit log
// @Tags logs
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} errorPayload
// @Router /logs [delete]
func ClearLogs(audit service.AuditService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := audit.Clear(c.UserContext()); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
