// services/handlers/content_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/shared"
)

type ContentHandler struct {
	contentSvc ContentProvider
}

func NewContentHandler(contentSvc ContentProvider) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// GetCategories godoc
// @Summary Question categories
// @Tags content
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.CategoryCollectionResponse}
// @Router /api/v1/content/categories [get]
func (h *ContentHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.contentSvc.GetCategories()
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, categories)
}
