package httpdto

import (
	"time"

	"parley/internal/domain/conversation"
)

type CreatePrivateConversationRequest struct {
	UserID     string `json:"userId"`
	CustomName string `json:"customName"`
}

type CreateGroupConversationRequest struct {
	Name string `json:"name"`
}

type UpdateConversationNameRequest struct {
	Name string `json:"name"`
}

type AddParticipantRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// ParticipantActionRequest names the target of a block or unblock.
type ParticipantActionRequest struct {
	UserID string `json:"userId"`
}

type ParticipantDTO struct {
	UserID     string    `json:"userId"`
	Role       string    `json:"role,omitempty"`
	Status     string    `json:"status"`
	CustomName *string   `json:"customName,omitempty"`
	JoinedAt   time.Time `json:"joinedAt"`
}

type ConversationDTO struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	Name          *string          `json:"name,omitempty"`
	CreatedBy     string           `json:"createdBy"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastMessageAt *time.Time       `json:"lastMessageAt,omitempty"`
	Participants  []ParticipantDTO `json:"participants,omitempty"`
}

func NewParticipantDTO(p conversation.Participant) ParticipantDTO {
	return ParticipantDTO{
		UserID:     p.UserID.String(),
		Role:       p.Role,
		Status:     p.Status,
		CustomName: p.CustomName,
		JoinedAt:   p.JoinedAt,
	}
}

func NewParticipantDTOs(participants []conversation.Participant) []ParticipantDTO {
	dtos := make([]ParticipantDTO, len(participants))
	for i, p := range participants {
		dtos[i] = NewParticipantDTO(p)
	}
	return dtos
}

func NewConversationDTO(c conversation.Conversation) ConversationDTO {
	return ConversationDTO{
		ID:            c.ID.String(),
		Type:          c.Type,
		Name:          c.Name,
		CreatedBy:     c.CreatedBy.String(),
		CreatedAt:     c.CreatedAt,
		LastMessageAt: c.LastMessageAt,
		Participants:  NewParticipantDTOs(c.Participants),
	}
}

func NewConversationDTOs(conversations []conversation.Conversation) []ConversationDTO {
	dtos := make([]ConversationDTO, len(conversations))
	for i, c := range conversations {
		dtos[i] = NewConversationDTO(c)
	}
	return dtos
}
