package database

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ChatID        int64 `gorm:"uniqueIndex;not null"`
	Username      string
	FirstName     string
	LastActivity  time.Time
	DownloadCount int64
	ErrorCount    int64
	Newsletter    bool
}

type Download struct {
	gorm.Model
	UserID    uint `gorm:"index"`
	Request   string
	Platform  string `gorm:"index"`
	MediaKind string
	Success   bool
}

type ErrorLog struct {
	gorm.Model
	UserID   uint `gorm:"index"`
	Context  string
	Message  string
	Original string
}
