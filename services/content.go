// services/content.go
package services

import (
	"encoding/json"
	"mime/multipart"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

// ContentService owns the question bank and its admin surface, including
// achievement badge assets.
type ContentService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	minioSvc *MinIOService
}

const CONTENT_SVC = "content_svc"

func (svc ContentService) Id() string {
	return CONTENT_SVC
}

func (svc *ContentService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// ==================== QUESTION BANK ====================

func (svc *ContentService) GetQuestion(questionID string) (*model.Question, error) {
	question, err := svc.sqlSvc.GetQuestion(questionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Question not found")
	}
	return question, nil
}

// answerCorrect reports whether selectedIndex is the correct choice.
// A negative index is a timeout and never correct.
func answerCorrect(question *model.Question, selectedIndex int) bool {
	if selectedIndex < 0 {
		return false
	}
	return selectedIndex == question.CorrectIndex
}

func (svc *ContentService) GetCategories() (*dto.CategoryCollectionResponse, error) {
	categories, err := svc.sqlSvc.GetQuestionCategories()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load categories")
	}
	return &dto.CategoryCollectionResponse{Categories: categories, Total: len(categories)}, nil
}

// ==================== ADMIN ====================

func (svc *ContentService) CreateQuestion(req *dto.CreateQuestionRequest) (*dto.QuestionAdminResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, dto.NewValidationError(err)
	}

	if req.CorrectIndex >= len(req.Choices) {
		return nil, shared.NewBadRequestError(nil, "Correct index is out of range")
	}

	choicesJSON, err := json.Marshal(req.Choices)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode choices")
	}

	questionID, _ := uuid.NewV7()
	question := &model.Question{
		ID:           questionID.String(),
		Category:     req.Category,
		Difficulty:   req.Difficulty,
		Prompt:       req.Prompt,
		Choices:      choicesJSON,
		CorrectIndex: req.CorrectIndex,
		Explanation:  req.Explanation,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := svc.sqlSvc.CreateQuestion(question); err != nil {
		log.WithError(err).Error("Failed to create question")
		return nil, shared.NewInternalError(err, "Failed to create question")
	}

	resp := mapQuestionToAdminResponse(question)
	return &resp, nil
}

func (svc *ContentService) GetQuestionBank() (*dto.QuestionBankResponse, error) {
	questions, err := svc.sqlSvc.GetActiveQuestions()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load question bank")
	}

	byTier := map[string]int{}
	responses := make([]dto.QuestionAdminResponse, len(questions))
	for i, q := range questions {
		byTier[q.Difficulty]++
		responses[i] = mapQuestionToAdminResponse(&q)
	}

	return &dto.QuestionBankResponse{
		Questions: responses,
		Total:     len(responses),
		ByTier:    byTier,
	}, nil
}

// UploadAchievementBadge stores a badge image and points the achievement at
// its new URL.
func (svc *ContentService) UploadAchievementBadge(achievementID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error) {
	achievement, err := svc.sqlSvc.GetAchievement(achievementID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Achievement not found")
	}

	upload, err := svc.minioSvc.UploadBadge(achievementID, file)
	if err != nil {
		return nil, err
	}

	achievement.BadgeURL = upload.URL
	if err := svc.sqlSvc.UpdateAchievement(achievement); err != nil {
		log.WithError(err).WithField("achievement_id", achievementID).Error("Failed to save badge URL")
		return nil, shared.NewInternalError(err, "Failed to save badge URL")
	}

	return upload, nil
}

func mapQuestionToAdminResponse(q *model.Question) dto.QuestionAdminResponse {
	var choices []string
	if q.Choices != nil {
		_ = json.Unmarshal(q.Choices, &choices)
	}

	return dto.QuestionAdminResponse{
		ID:           q.ID,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		Prompt:       q.Prompt,
		Choices:      choices,
		CorrectIndex: q.CorrectIndex,
		Explanation:  q.Explanation,
		IsActive:     q.IsActive,
		CreatedAt:    q.CreatedAt,
	}
}
