// services/handlers/auth_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/shared"
)

type AuthHandler struct {
	authSvc AuthProvider
}

func NewAuthHandler(authSvc AuthProvider) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and an empty progress document
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Failure 400 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseCreated(c, resp)
}

// Login godoc
// @Summary Log in
// @Description Authenticates by email or username and returns a token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login payload"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Failure 401 {object} shared.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	resp, err := h.authSvc.Login(req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, resp)
}

// Refresh godoc
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Failure 401 {object} shared.Response
// @Router /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	resp, err := h.authSvc.RefreshToken(req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, resp)
}
