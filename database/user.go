package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertUser creates or refreshes the user row for a chat, updating the
// profile fields and last-activity stamp.
func UpsertUser(ctx context.Context, chatID int64, username, firstName string) (*User, error) {
	user := User{
		ChatID:       chatID,
		Username:     username,
		FirstName:    firstName,
		LastActivity: time.Now(),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_activity"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}
	return GetUserByChatID(ctx, chatID)
}

func GetUserByChatID(ctx context.Context, chatID int64) (*User, error) {
	var user User
	err := db.WithContext(ctx).Where("chat_id = ?", chatID).First(&user).Error
	return &user, err
}

func GetAllUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := db.WithContext(ctx).Find(&users).Error
	return users, err
}

// GetUsers returns users ordered by download count then recency.
func GetUsers(ctx context.Context, limit int) ([]User, error) {
	var users []User
	err := db.WithContext(ctx).
		Order("download_count DESC, last_activity DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func GetTopUsers(ctx context.Context, limit int) ([]User, error) {
	var users []User
	err := db.WithContext(ctx).
		Where("download_count > 0").
		Order("download_count DESC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func GetNewsletterSubscribers(ctx context.Context) ([]User, error) {
	var users []User
	err := db.WithContext(ctx).Where("newsletter = ?", true).Find(&users).Error
	return users, err
}

// ToggleNewsletter flips the newsletter flag and reports the new state.
func ToggleNewsletter(ctx context.Context, chatID int64) (bool, error) {
	user, err := GetUserByChatID(ctx, chatID)
	if err != nil {
		return false, err
	}
	user.Newsletter = !user.Newsletter
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return false, err
	}
	return user.Newsletter, nil
}

func incrementUserCounter(ctx context.Context, userID uint, column string) error {
	return db.WithContext(ctx).Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}
