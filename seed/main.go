// seed/main.go
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/seed/seeders"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using environment")
	}

	db, err := connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&model.Question{}, &model.Achievement{}); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	if err := seeders.SeedQuestions(db); err != nil {
		log.Fatalf("Question seeding failed: %v", err)
	}
	if err := seeders.SeedAchievements(db); err != nil {
		log.Fatalf("Achievement seeding failed: %v", err)
	}

	log.Info("Seeding complete")
}

func connect() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			envOr("DB_HOST", "localhost"),
			envOr("DB_USER", "postgres"),
			envOr("DB_PASSWORD", "postgres"),
			envOr("DB_NAME", "aura_api"),
			envOr("DB_PORT", "5432"),
			envOr("DB_SSLMODE", "disable"))
	}

	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
