// services/handlers/quiz_handler.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/shared"
)

type QuizHandler struct {
	quizSvc QuizProvider
}

func NewQuizHandler(quizSvc QuizProvider) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// Today godoc
// @Summary Today's challenge
// @Description Returns the day's question set; the set is identical for every user on the same date
// @Tags challenge
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.DailyChallengeResponse}
// @Failure 503 {object} shared.Response
// @Router /api/v1/challenge/today [get]
func (h *QuizHandler) Today(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	challenge, err := h.quizSvc.GetDailyChallenge(userID)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, challenge)
}

// StartSession godoc
// @Summary Start or resume today's session
// @Tags challenge
// @Produce json
// @Security BearerAuth
// @Success 201 {object} shared.Response{data=dto.StartSessionResponse}
// @Failure 409 {object} shared.Response
// @Router /api/v1/challenge/session [post]
func (h *QuizHandler) StartSession(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	session, err := h.quizSvc.StartSession(userID)
	if err != nil {
		return respondError(c, err)
	}

	if session.Resumed {
		return shared.ResponseOK(c, session)
	}
	return shared.ResponseCreated(c, session)
}

// SubmitAnswer godoc
// @Summary Submit an answer for the current question
// @Description Grades the answer, reveals the correct choice and advances the session
// @Tags challenge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitAnswerRequest true "Answer payload"
// @Success 200 {object} shared.Response{data=dto.AnswerResultResponse}
// @Failure 400 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/challenge/session/answer [post]
func (h *QuizHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	result, err := h.quizSvc.SubmitAnswer(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, result)
}

// CompleteSession godoc
// @Summary Results of a completed session
// @Description The session completes on its last answer; this returns the stored tally
// @Tags challenge
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CompleteSessionRequest true "Session reference"
// @Success 200 {object} shared.Response{data=dto.SessionResults}
// @Failure 404 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/challenge/session/complete [post]
func (h *QuizHandler) CompleteSession(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return shared.ResponseUnauthorized(c)
	}

	var req dto.CompleteSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseBadRequest(c, "Invalid request body")
	}

	results, err := h.quizSvc.GetSessionResults(userID, &req)
	if err != nil {
		return respondError(c, err)
	}

	return shared.ResponseOK(c, results)
}
