// services/handlers/types.go
package handlers

import (
	"mime/multipart"

	"github.com/serenity-path/aura_api/dto"
)

// ==================== SERVICE INTERFACES ====================

type AuthProvider interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(req dto.RefreshTokenRequest) (*dto.LoginResponse, error)
	GetUserInfo(userID string) (*dto.UserInfo, error)
}

type QuizProvider interface {
	GetDailyChallenge(userID string) (*dto.DailyChallengeResponse, error)
	StartSession(userID string) (*dto.StartSessionResponse, error)
	SubmitAnswer(userID string, req *dto.SubmitAnswerRequest) (*dto.AnswerResultResponse, error)
	GetSessionResults(userID string, req *dto.CompleteSessionRequest) (*dto.SessionResults, error)
}

type ProgressProvider interface {
	GetProgress(userID string) (*dto.ProgressResponse, error)
	GetAchievements(userID string) (*dto.AchievementCollectionResponse, error)
	GetLeaderboard(userID string, limit int) (*dto.LeaderboardResponse, error)
	GetSettings(userID string) (*dto.Settings, error)
	UpdateSettings(userID string, req *dto.UpdateSettingsRequest) (*dto.Settings, error)
}

type ContentProvider interface {
	GetCategories() (*dto.CategoryCollectionResponse, error)
	CreateQuestion(req *dto.CreateQuestionRequest) (*dto.QuestionAdminResponse, error)
	GetQuestionBank() (*dto.QuestionBankResponse, error)
	UploadAchievementBadge(achievementID string, file *multipart.FileHeader) (*dto.MediaUploadResponse, error)
}
