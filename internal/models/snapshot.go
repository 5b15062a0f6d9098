package models

import "time"

// Snapshot is the database row holding one whole record set.
type Snapshot struct {
	Name      string    `gorm:"primaryKey;size:64"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of gorm naming strategy.
func (Snapshot) TableName() string {
	return "store_snapshots"
}
