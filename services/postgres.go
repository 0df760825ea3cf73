package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/serenity-path/aura_api/model"
)

// PostgresService is the primary store. Everything gameplay writes lands
// here first; the sqlite mirror only ever receives copies.
type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := envOr("DB_HOST", "localhost")
		port := envOr("DB_PORT", "5432")
		user := envOr("DB_USER", "postgres")
		password := envOr("DB_PASSWORD", "postgres")
		dbname := envOr("DB_NAME", "aura_api")
		sslmode := envOr("DB_SSLMODE", "disable")
		timezone := envOr("DB_TIMEZONE", "UTC")

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if pingErr := sqlDB.Ping(); pingErr == nil {
					log.Println("Successfully connected to database")
					break
				} else {
					err = pingErr
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	models := []interface{}{
		&model.User{},
		&model.Question{},
		&model.DailyChallenge{},
		&model.QuizSession{},
		&model.UserProgress{},
		&model.Achievement{},
		&model.UserAchievement{},
	}

	if err = ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db != nil {
		if sqlDB, err := ds.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// ==================== USER METHODS ====================

func (ds *PostgresService) CreateUser(user *model.User) (*model.User, error) {
	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *PostgresService) GetUser(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByUsername(username string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(username) = LOWER(?)", username).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("LOWER(email) = LOWER(?) OR LOWER(username) = LOWER(?)",
		emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	user.UpdatedAt = time.Now()
	return ds.HandleError(ds.db.Save(user).Error)
}

// ==================== QUESTION BANK METHODS ====================

func (ds *PostgresService) CreateQuestion(question *model.Question) (*model.Question, error) {
	if err := ds.db.Create(question).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return question, nil
}

func (ds *PostgresService) GetQuestion(id string) (*model.Question, error) {
	var question model.Question
	if err := ds.db.Where("id = ?", id).First(&question).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &question, nil
}

// GetActiveQuestions returns the bank in stable id order. Selection
// determinism depends on this ordering, not on insertion order.
func (ds *PostgresService) GetActiveQuestions() ([]model.Question, error) {
	var questions []model.Question
	if err := ds.db.Where("is_active = ?", true).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return questions, nil
}

func (ds *PostgresService) GetQuestionsByIDs(ids []string) ([]model.Question, error) {
	var questions []model.Question
	if err := ds.db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return questions, nil
}

func (ds *PostgresService) GetQuestionCategories() ([]string, error) {
	var categories []string
	err := ds.db.Model(&model.Question{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return categories, nil
}

// ==================== DAILY CHALLENGE METHODS ====================

func (ds *PostgresService) GetDailyChallenge(dateKey string) (*model.DailyChallenge, error) {
	var challenge model.DailyChallenge
	if err := ds.db.Where("date_key = ?", dateKey).First(&challenge).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &challenge, nil
}

func (ds *PostgresService) SaveDailyChallenge(challenge *model.DailyChallenge) error {
	err := ds.db.Create(challenge).Error
	if err != nil && strings.Contains(err.Error(), "duplicate key value") {
		// Another request memoized the same day first; the selection is
		// deterministic so the stored row is identical.
		return nil
	}
	return ds.HandleError(err)
}

// ==================== QUIZ SESSION METHODS ====================

func (ds *PostgresService) CreateQuizSession(session *model.QuizSession) (*model.QuizSession, error) {
	if err := ds.db.Create(session).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return session, nil
}

func (ds *PostgresService) GetQuizSession(id string) (*model.QuizSession, error) {
	var session model.QuizSession
	if err := ds.db.Where("id = ?", id).First(&session).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &session, nil
}

func (ds *PostgresService) GetActiveSession(userID, dateKey string) (*model.QuizSession, error) {
	var session model.QuizSession
	err := ds.db.Where("user_id = ? AND date_key = ? AND status = ?",
		userID, dateKey, "active").First(&session).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &session, nil
}

func (ds *PostgresService) UpdateQuizSession(session *model.QuizSession) error {
	session.UpdatedAt = time.Now()
	return ds.HandleError(ds.db.Save(session).Error)
}

// ExpireStaleSessions marks active sessions from past days as expired.
func (ds *PostgresService) ExpireStaleSessions(beforeDateKey string) (int64, error) {
	result := ds.db.Model(&model.QuizSession{}).
		Where("status = ? AND date_key < ?", "active", beforeDateKey).
		Updates(map[string]interface{}{"status": "expired", "updated_at": time.Now()})
	return result.RowsAffected, ds.HandleError(result.Error)
}

// ==================== PROGRESS METHODS ====================

func (ds *PostgresService) CreateUserProgress(progress *model.UserProgress) (*model.UserProgress, error) {
	if err := ds.db.Create(progress).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return progress, nil
}

func (ds *PostgresService) GetUserProgress(userID string) (*model.UserProgress, error) {
	var progress model.UserProgress
	if err := ds.db.Where("user_id = ?", userID).First(&progress).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &progress, nil
}

func (ds *PostgresService) UpdateUserProgress(progress *model.UserProgress) error {
	progress.UpdatedAt = time.Now()
	return ds.HandleError(ds.db.Save(progress).Error)
}

// ==================== ACHIEVEMENT METHODS ====================

func (ds *PostgresService) CreateAchievement(achievement *model.Achievement) (*model.Achievement, error) {
	if err := ds.db.Create(achievement).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return achievement, nil
}

func (ds *PostgresService) GetActiveAchievements() ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := ds.db.Where("is_active = ?", true).Order("id ASC").Find(&achievements).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return achievements, nil
}

func (ds *PostgresService) GetAchievement(id string) (*model.Achievement, error) {
	var achievement model.Achievement
	if err := ds.db.Where("id = ?", id).First(&achievement).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &achievement, nil
}

func (ds *PostgresService) UpdateAchievement(achievement *model.Achievement) error {
	achievement.UpdatedAt = time.Now()
	return ds.HandleError(ds.db.Save(achievement).Error)
}

func (ds *PostgresService) HasUserUnlockedAchievement(userID, achievementID string) (bool, error) {
	var count int64
	err := ds.db.Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	if err != nil {
		return false, ds.HandleError(err)
	}
	return count > 0, nil
}

func (ds *PostgresService) CreateUserAchievement(userAchievement *model.UserAchievement) error {
	unlocked, err := ds.HasUserUnlockedAchievement(userAchievement.UserID, userAchievement.AchievementID)
	if err != nil {
		return err
	}
	if unlocked {
		return nil
	}
	return ds.HandleError(ds.db.Create(userAchievement).Error)
}

func (ds *PostgresService) GetUserAchievements(userID string) ([]model.UserAchievement, error) {
	var userAchievements []model.UserAchievement
	err := ds.db.Preload("Achievement").
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&userAchievements).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return userAchievements, nil
}

// ==================== LEADERBOARD METHODS ====================

func (ds *PostgresService) GetAllTimeLeaderboard(limit int) ([]model.UserProgress, error) {
	var progress []model.UserProgress
	err := ds.db.Order("total_xp_earned DESC").Limit(limit).Find(&progress).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return progress, nil
}

func (ds *PostgresService) GetUserRank(userID string) (int, error) {
	progress, err := ds.GetUserProgress(userID)
	if err != nil {
		return 0, err
	}

	var ahead int64
	err = ds.db.Model(&model.UserProgress{}).
		Where("total_xp_earned > ?", progress.TotalXPEarned).
		Count(&ahead).Error
	if err != nil {
		return 0, ds.HandleError(err)
	}

	return int(ahead) + 1, nil
}
