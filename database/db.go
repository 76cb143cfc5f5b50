package database

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slotherinee/instgbot/config"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

var db *gorm.DB

func Init(ctx context.Context) {
	logger := log.FromContext(ctx)
	if err := os.MkdirAll(filepath.Dir(config.C().DB.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory: ", err)
	}
	var err error
	db, err = gorm.Open(GetDialect(config.C().DB.Path), &gorm.Config{
		Logger: glogger.New(logger, glogger.Config{
			Colorful:                  true,
			SlowThreshold:             time.Second * 5,
			LogLevel:                  glogger.Error,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		PrepareStmt: true,
	})
	if err != nil {
		logger.Fatal("Failed to open database: ", err)
	}
	if err := db.AutoMigrate(&User{}, &Download{}, &ErrorLog{}); err != nil {
		logger.Fatal("Database migration failed", "error", err)
	}
	logger.Info("Database initialized")
}
