// services/handlers/progress_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/shared"
)

type ProgressHandler struct {
	progressSvc ProgressProvider
}

func NewProgressHandler(progressSvc ProgressProvider) *ProgressHandler {
	return &ProgressHandler{progressSvc: progressSvc}
}

// GetProgress godoc
// @Summary User progress document
// @Description Served from the primary store, or from the local mirror (flagged stale) when the primary is down
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.ProgressResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/progress [get]
func (h *ProgressHandler) GetProgress(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	progress, err := h.progressSvc.GetProgress(userID)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, progress)
}

// GetAchievements godoc
// @Summary Achievement catalog with unlock state
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.AchievementCollectionResponse}
// @Router /api/v1/progress/achievements [get]
func (h *ProgressHandler) GetAchievements(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	achievements, err := h.progressSvc.GetAchievements(userID)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, achievements)
}

// GetLeaderboard godoc
// @Summary All-time XP leaderboard
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of entries (default 10, max 100)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *ProgressHandler) GetLeaderboard(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	limit := c.QueryInt("limit", 10)

	leaderboard, err := h.progressSvc.GetLeaderboard(userID, limit)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, leaderboard)
}
