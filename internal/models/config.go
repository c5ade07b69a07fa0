package models

import "time"

// UserConfig holds the last ledger snapshot a user pushed. One row per user.
type UserConfig struct {
	UserID     uint   `gorm:"primaryKey"`
	ConfigJSON string `gorm:"type:text;not null"` // 快照 JSON，配置了密钥时为密文
	CreatedAt  time.Time
	UpdatedAt  time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
