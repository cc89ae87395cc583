package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ChatMessageType string

const (
	ChatMessageUser ChatMessageType = "user"
	ChatMessageBot  ChatMessageType = "bot"
)

// ChatMessage is one immutable turn of a conversation. UserID identifies the
// conversation owner; SenderID is uuid.Nil for bot turns. Ordering by
// CreatedAt defines the conversation sequence.
type ChatMessage struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	SenderID    uuid.UUID       `gorm:"type:uuid;column:sender_id" json:"sender_id"`
	Type        ChatMessageType `gorm:"not null;column:type" json:"type"`
	Content     string          `gorm:"not null;column:content" json:"content"`
	Suggestions datatypes.JSON  `gorm:"column:suggestions" json:"suggestions,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_message"
}
