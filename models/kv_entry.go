package models

import "time"

// KVEntry stores one serialized collection under a fixed key.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;type:varchar(100)"`
	Value     []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (KVEntry) TableName() string {
	return "kv_entries"
}
