package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EmotionLevelMin = 1
	EmotionLevelMax = 5
)

// EmotionEntry is immutable once created.
type EmotionEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Level     int       `gorm:"not null;column:level" json:"level"`
	Note      string    `gorm:"column:note" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (EmotionEntry) TableName() string {
	return "emotion_entry"
}
