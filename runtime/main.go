// runtime/main.go
package main

import (
	"os"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/serenity-path/aura_api/services"
)

// @title Aura API
// @version 1.0
// @description Daily spirituality trivia with streaks, achievements and progress tracking
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file found, using environment")
	}

	ctx, err := context.NewCtx(
		&services.PostgresService{},
		&services.SqliteService{},
		&services.RedisService{},
		&services.MinIOService{},
		&services.MonitoringService{},
		&services.JWTService{},
		&services.AuthService{},
		&services.ContentService{},
		&services.ChallengeService{},
		&services.ProgressService{},
		&services.QuizService{},
		&services.RateLimitService{},
		&services.HttpService{},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build service context")
	}

	if err := ctx.Run(); err != nil {
		logger.Fatal().Err(err).Msg("Service context exited")
	}
}
