package repository

import (
	"context"
	"time"

	"parley/internal/domain/conversation"
	"parley/internal/domain/message"
	"parley/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmailOrPhone(ctx context.Context, email, phone string) (user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, u user.User) error
	// Delete removes the user together with their sessions, participant
	// records and authored messages, in one transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]user.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *user.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (user.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

type ConversationRepository interface {
	// Create persists the conversation and its initial participants
	// atomically.
	Create(ctx context.Context, c *conversation.Conversation, participants []conversation.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	// GetPrivateBetween finds the private conversation between the unordered
	// pair, if any.
	GetPrivateBetween(ctx context.Context, userID1, userID2 uuid.UUID) (conversation.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	// GetUserChats returns the user's conversations holding at least one
	// message; GetUserContacts the ones holding none. Disjoint by
	// construction.
	GetUserChats(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	GetUserContacts(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	SearchGroups(ctx context.Context, query string, limit int) ([]conversation.Conversation, error)
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddParticipant(ctx context.Context, p *conversation.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Participant, error)
	GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error)
	UpdateParticipantStatus(ctx context.Context, conversationID, userID uuid.UUID, status string) error
	UpdateParticipantRole(ctx context.Context, conversationID, userID uuid.UUID, role string) error
}

type MessageRepository interface {
	// Append inserts the message and advances the conversation's
	// last_message_at to sentAt under a per-conversation critical section.
	// The sender's membership is re-verified inside that section, so two
	// concurrent sends into one conversation serialize and a racing removal
	// cannot slip a message in. Returns ErrNotFound when the conversation is
	// gone, ErrForbidden when the sender is not a participant.
	Append(ctx context.Context, m *message.Message, sentAt time.Time) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
