package models

import "time"

// AuditLog records authenticated write requests.
type AuditLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	PathEnc   string `gorm:"type:text"` // 加密后的路径
	Method    string `gorm:"size:16"`
	ActionEnc string `gorm:"type:text"` // 加密后的动作/请求体摘要
	Status    int
	IP        string `gorm:"size:64"`
	UserAgent string `gorm:"size:255"`
	CreatedAt time.Time
}
