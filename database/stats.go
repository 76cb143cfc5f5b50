package database

import (
	"context"
	"time"
)

type Stats struct {
	TotalUsers     int64
	TotalDownloads int64
	TotalErrors    int64
	ActiveUsers24h int64
}

func GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := db.WithContext(ctx).Model(&User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&Download{}).Where("success = ?", true).Count(&s.TotalDownloads).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&ErrorLog{}).Count(&s.TotalErrors).Error; err != nil {
		return nil, err
	}
	dayAgo := time.Now().Add(-24 * time.Hour)
	if err := db.WithContext(ctx).Model(&User{}).Where("last_activity > ?", dayAgo).Count(&s.ActiveUsers24h).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

type PlatformStat struct {
	Platform            string
	TotalRequests       int64
	SuccessfulDownloads int64
	SuccessRate         float64
}

func GetPlatformStats(ctx context.Context) ([]PlatformStat, error) {
	var stats []PlatformStat
	err := db.WithContext(ctx).Model(&Download{}).
		Select(`platform,
			COUNT(*) AS total_requests,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) AS successful_downloads,
			ROUND(SUM(CASE WHEN success THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2) AS success_rate`).
		Group("platform").
		Order("total_requests DESC").
		Scan(&stats).Error
	return stats, err
}
