// services/handlers/user_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/shared"
)

type UserHandler struct {
	authSvc     AuthProvider
	progressSvc ProgressProvider
}

func NewUserHandler(authSvc AuthProvider, progressSvc ProgressProvider) *UserHandler {
	return &UserHandler{authSvc: authSvc, progressSvc: progressSvc}
}

// Me godoc
// @Summary Current user profile
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.UserInfo}
// @Failure 401 {object} shared.Response
// @Router /api/v1/user/me [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	info, err := h.authSvc.GetUserInfo(userID)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, info)
}

// GetSettings godoc
// @Summary Sound and music settings
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.Settings}
// @Router /api/v1/user/settings [get]
func (h *UserHandler) GetSettings(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	settings, err := h.progressSvc.GetSettings(userID)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, settings)
}

// UpdateSettings godoc
// @Summary Update sound and music settings
// @Tags user
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateSettingsRequest true "Settings payload"
// @Success 200 {object} shared.Response{data=dto.Settings}
// @Router /api/v1/user/settings [put]
func (h *UserHandler) UpdateSettings(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	settings, err := h.progressSvc.UpdateSettings(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, settings)
}
