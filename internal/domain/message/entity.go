package message

import (
	"time"

	"github.com/google/uuid"
)

// Kind tags the message variant. Only text exists today; image and
// system-event messages reuse the same table and authorization rules.
type Kind string

const (
	KindText Kind = "text"
)

// Message represents the messages table. Immutable once created except for
// deletion.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Kind           Kind      `gorm:"column:type;not null"`
	Content        string
	CreatedAt      time.Time
}

// NewText builds a text message. sentAt is the client-declared send time and
// becomes the conversation's lastMessageAt.
func NewText(conversationID, senderID uuid.UUID, content string, sentAt time.Time) Message {
	return Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Kind:           KindText,
		Content:        content,
		CreatedAt:      sentAt,
	}
}

func (Message) TableName() string {
	return "messages"
}
