package httpdto

import (
	"time"

	"parley/internal/domain/message"
)

type CreateMessageRequest struct {
	Content string `json:"content"`
}

type MessageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Type           string    `json:"type"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

func NewMessageDTO(m message.Message) MessageDTO {
	return MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		SenderID:       m.SenderID.String(),
		Type:           string(m.Kind),
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func NewMessageDTOs(messages []message.Message) []MessageDTO {
	dtos := make([]MessageDTO, len(messages))
	for i, m := range messages {
		dtos[i] = NewMessageDTO(m)
	}
	return dtos
}
