package database

import "context"

// RecordDownload writes one download row and bumps the user's counter on
// success. The user row is upserted first so rows from unseen chats are
// never orphaned.
func RecordDownload(ctx context.Context, chatID int64, username, firstName, request, platform, mediaKind string, success bool) error {
	user, err := UpsertUser(ctx, chatID, username, firstName)
	if err != nil {
		return err
	}
	dl := Download{
		UserID:    user.ID,
		Request:   request,
		Platform:  platform,
		MediaKind: mediaKind,
		Success:   success,
	}
	if err := db.WithContext(ctx).Create(&dl).Error; err != nil {
		return err
	}
	if success {
		return incrementUserCounter(ctx, user.ID, "download_count")
	}
	return nil
}

func RecordError(ctx context.Context, chatID int64, username, errContext, message, original string) error {
	user, err := UpsertUser(ctx, chatID, username, "")
	if err != nil {
		return err
	}
	e := ErrorLog{
		UserID:   user.ID,
		Context:  errContext,
		Message:  message,
		Original: original,
	}
	if err := db.WithContext(ctx).Create(&e).Error; err != nil {
		return err
	}
	return incrementUserCounter(ctx, user.ID, "error_count")
}

func GetRecentErrors(ctx context.Context, limit int) ([]ErrorLog, error) {
	var errs []ErrorLog
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&errs).Error
	return errs, err
}
