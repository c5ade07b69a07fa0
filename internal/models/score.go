package models

import "time"

// MonthlyScore is a user's best leaderboard score for one month.
type MonthlyScore struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex:idx_score_user_month"`
	MonthKey  string  `gorm:"size:7;not null;uniqueIndex:idx_score_user_month;index"` // YYYY-MM
	Username  string  `gorm:"size:64;not null"`
	Score     float64 `gorm:"not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
