package services

import (
	"os"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/serenity-path/aura_api/model"
)

// SqliteService holds the local progress mirror: one serialized document per
// user, written best-effort after every primary save and read only when the
// primary store is unreachable.
type SqliteService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const SQLITE_SVC = "sqlite_svc"

func (ds SqliteService) Id() string {
	return SQLITE_SVC
}

func (ds SqliteService) Db() *gorm.DB {
	return ds.db
}

func (ds *SqliteService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("MIRROR_DB_PATH")
	if ds.database == "" {
		ds.database = "mirror.db"
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *SqliteService) Start() (err error) {
	ds.db, err = gorm.Open(sqlite.Open(ds.database), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return err
	}

	if err = ds.db.AutoMigrate(&model.ProgressMirror{}); err != nil {
		log.Printf("Failed to migrate mirror database: %v", err)
		return err
	}

	log.Println("Mirror database connected and migrated successfully")
	return nil
}

func (ds *SqliteService) Shutdown() {
	if ds.db != nil {
		if sqlDB, err := ds.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// WriteMirror upserts the serialized progress document for a user.
func (ds *SqliteService) WriteMirror(userID, payload string) error {
	mirror := model.ProgressMirror{
		UserID:    userID,
		Payload:   payload,
		UpdatedAt: time.Now(),
	}

	return ds.db.Save(&mirror).Error
}

func (ds *SqliteService) ReadMirror(userID string) (string, error) {
	var mirror model.ProgressMirror
	if err := ds.db.Where("user_id = ?", userID).First(&mirror).Error; err != nil {
		return "", err
	}
	return mirror.Payload, nil
}

func (ds *SqliteService) DeleteMirror(userID string) error {
	return ds.db.Where("user_id = ?", userID).Delete(&model.ProgressMirror{}).Error
}
