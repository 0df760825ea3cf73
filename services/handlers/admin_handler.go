// services/handlers/admin_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/shared"
)

type AdminHandler struct {
	contentSvc ContentProvider
}

func NewAdminHandler(contentSvc ContentProvider) *AdminHandler {
	return &AdminHandler{contentSvc: contentSvc}
}

// CreateQuestion godoc
// @Summary Add a question to the bank
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuestionRequest true "Question payload"
// @Success 201 {object} shared.Response{data=dto.QuestionAdminResponse}
// @Failure 400 {object} shared.Response
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/questions [post]
func (h *AdminHandler) CreateQuestion(c *fiber.Ctx) error {
	var req dto.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	question, err := h.contentSvc.CreateQuestion(&req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseCreated(c, question)
}

// GetQuestionBank godoc
// @Summary Full question bank with answers
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.QuestionBankResponse}
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/questions [get]
func (h *AdminHandler) GetQuestionBank(c *fiber.Ctx) error {
	bank, err := h.contentSvc.GetQuestionBank()
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, bank)
}

// UploadBadge godoc
// @Summary Upload an achievement badge image
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Achievement id"
// @Param badge formData file true "Badge image (png, jpg, webp or svg)"
// @Success 200 {object} shared.Response{data=dto.MediaUploadResponse}
// @Failure 400 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/admin/achievements/{id}/badge [post]
func (h *AdminHandler) UploadBadge(c *fiber.Ctx) error {
	achievementID := c.Params("id")
	if achievementID == "" {
		return shared.ResponseBadRequest(c, "Achievement id is required")
	}

	file, err := c.FormFile("badge")
	if err != nil {
		return shared.ResponseBadRequest(c, "Badge file is required")
	}

	upload, err := h.contentSvc.UploadAchievementBadge(achievementID, file)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, upload)
}
