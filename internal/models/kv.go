package models

import "time"

// KVEntry is a row of the client-side state file: one persisted blob per key.
type KVEntry struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}
