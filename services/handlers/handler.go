// services/handlers/handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/shared"
)

// respondError maps a service error onto the shared response envelope.
func respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}
	return shared.ResponseInternalError(c, err)
}

// currentUserID reads the user id the auth middleware stored in locals.
func currentUserID(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(shared.UserID).(string)
	return userID, ok && userID != ""
}
