package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"parley/internal/authz"
	"parley/internal/domain/conversation"
	"parley/internal/domain/message"
	"parley/internal/domain/user"
	"parley/internal/metrics"
	"parley/internal/repository"
	"parley/internal/validate"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
)

// searchPageSize caps user and group search results.
const searchPageSize = 10

type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
}

func NewConversationService(conversations repository.ConversationRepository, messages repository.MessageRepository, users repository.UserRepository) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// participant loads the membership record, returning nil (not an error) when
// the user is not a member, so the authz engine can tell NotFound apart from
// Forbidden.
func (s *ConversationService) participant(ctx context.Context, conversationID, userID uuid.UUID) (*conversation.Participant, error) {
	p, err := s.conversations.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		if errors.Is(err, parley_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// CreatePrivateConversation creates the single private conversation between
// actor and other. Each side's display name defaults to the counterpart's
// phone number.
func (s *ConversationService) CreatePrivateConversation(ctx context.Context, actor, other uuid.UUID, customName string) (conversation.Conversation, error) {
	if actor == other {
		return conversation.Conversation{}, fmt.Errorf("%w: cannot create a conversation with yourself", parley_errors.ErrInvalidInput)
	}

	actorUser, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("%w: user not found", parley_errors.ErrInvalidInput)
	}
	otherUser, err := s.users.GetByID(ctx, other)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("%w: user not found", parley_errors.ErrInvalidInput)
	}

	if _, err := s.conversations.GetPrivateBetween(ctx, actor, other); err == nil {
		return conversation.Conversation{}, fmt.Errorf("%w: private conversation already exists", parley_errors.ErrConflict)
	} else if !errors.Is(err, parley_errors.ErrNotFound) {
		return conversation.Conversation{}, err
	}

	now := time.Now()
	pairKey := conversation.PairKeyFor(actor, other)
	conv := conversation.Conversation{
		ID:        uuid.New(),
		Type:      conversation.TypePrivate,
		PairKey:   &pairKey,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}

	actorName := customName
	if actorName == "" {
		actorName = otherUser.Phone
	}
	otherName := actorUser.Phone
	participants := []conversation.Participant{
		{ConversationID: conv.ID, UserID: actor, Status: conversation.StatusActive, CustomName: &actorName, JoinedAt: now},
		{ConversationID: conv.ID, UserID: other, Status: conversation.StatusActive, CustomName: &otherName, JoinedAt: now},
	}

	if err := s.conversations.Create(ctx, &conv, participants); err != nil {
		// A concurrent creation between the same pair trips the pair-key
		// unique index and surfaces here as a conflict.
		if errors.Is(err, parley_errors.ErrConflict) {
			return conversation.Conversation{}, fmt.Errorf("%w: private conversation already exists", parley_errors.ErrConflict)
		}
		return conversation.Conversation{}, err
	}
	conv.Participants = participants
	return conv, nil
}

// CreateGroupConversation makes the creator the sole initial Admin.
func (s *ConversationService) CreateGroupConversation(ctx context.Context, actor uuid.UUID, name string) (conversation.Conversation, error) {
	validated, err := validate.Name(name)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if _, err := s.users.GetByID(ctx, actor); err != nil {
		return conversation.Conversation{}, fmt.Errorf("%w: user not found", parley_errors.ErrInvalidInput)
	}

	now := time.Now()
	conv := conversation.Conversation{
		ID:        uuid.New(),
		Type:      conversation.TypeGroup,
		Name:      &validated,
		CreatedBy: actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	participants := []conversation.Participant{
		{ConversationID: conv.ID, UserID: actor, Role: conversation.RoleAdmin, Status: conversation.StatusActive, JoinedAt: now},
	}

	if err := s.conversations.Create(ctx, &conv, participants); err != nil {
		return conversation.Conversation{}, err
	}
	conv.Participants = participants
	return conv, nil
}

// AddTextMessage persists a message from actor. The repository serializes
// the membership re-check, insert and lastMessageAt update per conversation.
func (s *ConversationService) AddTextMessage(ctx context.Context, actor, conversationID uuid.UUID, content string, sentAt time.Time) (message.Message, error) {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return message.Message{}, err
	}
	if err := authz.CanSend(actorP); err != nil {
		return message.Message{}, fmt.Errorf("%w: sender is not a participant in this conversation", err)
	}

	m := message.NewText(conversationID, actor, content, sentAt)
	if err := s.messages.Append(ctx, &m, sentAt); err != nil {
		return message.Message{}, err
	}
	metrics.MessagesStoredTotal.Inc()
	return m, nil
}

func (s *ConversationService) AddParticipant(ctx context.Context, actor, conversationID, target uuid.UUID, role string) error {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	targetP, err := s.participant(ctx, conversationID, target)
	if err != nil {
		return err
	}
	if err := authz.CanAddParticipant(actorP, targetP); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, target); err != nil {
		return fmt.Errorf("%w: user not found", parley_errors.ErrInvalidInput)
	}

	return s.conversations.AddParticipant(ctx, &conversation.Participant{
		ConversationID: conversationID,
		UserID:         target,
		Role:           role,
		Status:         conversation.StatusActive,
		JoinedAt:       time.Now(),
	})
}

func (s *ConversationService) BlockUser(ctx context.Context, actor, conversationID, target uuid.UUID) error {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	targetP, err := s.participant(ctx, conversationID, target)
	if err != nil {
		return err
	}
	if err := authz.CanBlock(actorP, targetP); err != nil {
		return err
	}
	return s.conversations.UpdateParticipantStatus(ctx, conversationID, target, conversation.StatusBlocked)
}

func (s *ConversationService) UnblockUser(ctx context.Context, actor, conversationID, target uuid.UUID) error {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	targetP, err := s.participant(ctx, conversationID, target)
	if err != nil {
		return err
	}
	if err := authz.CanUnblock(actorP, targetP); err != nil {
		return err
	}
	if !targetP.IsBlocked() {
		// Unblocking an active participant is a no-op.
		return nil
	}
	return s.conversations.UpdateParticipantStatus(ctx, conversationID, target, conversation.StatusActive)
}

// RemoveParticipant covers both leaving (actor == target) and admin removal.
func (s *ConversationService) RemoveParticipant(ctx context.Context, actor, conversationID, target uuid.UUID) error {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	targetP, err := s.participant(ctx, conversationID, target)
	if err != nil {
		return err
	}
	if err := authz.CanRemoveParticipant(actorP, targetP); err != nil {
		return err
	}
	return s.conversations.RemoveParticipant(ctx, conversationID, target)
}

func (s *ConversationService) PromoteToAdmin(ctx context.Context, actor, conversationID, target uuid.UUID) error {
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	targetP, err := s.participant(ctx, conversationID, target)
	if err != nil {
		return err
	}
	if err := authz.CanPromote(actorP, targetP); err != nil {
		return err
	}
	return s.conversations.UpdateParticipantRole(ctx, conversationID, target, conversation.RoleAdmin)
}

// UpdateGroupConversationName lets any current participant rename the
// conversation.
func (s *ConversationService) UpdateGroupConversationName(ctx context.Context, actor, conversationID uuid.UUID, name string) error {
	validated, err := validate.Name(name)
	if err != nil {
		return err
	}
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	if err := authz.CanRename(actorP); err != nil {
		return err
	}
	return s.conversations.UpdateName(ctx, conversationID, validated)
}

// DeleteConversation removes the conversation with its participants and
// messages. Private conversations may be deleted by either side; groups only
// by an Admin.
func (s *ConversationService) DeleteConversation(ctx context.Context, actor, conversationID uuid.UUID) error {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	actorP, err := s.participant(ctx, conversationID, actor)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteConversation(conv.Type, actorP); err != nil {
		return err
	}
	return s.conversations.Delete(ctx, conversationID)
}

func (s *ConversationService) DeleteMessage(ctx context.Context, actor, messageID uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteMessage(actor, m.SenderID); err != nil {
		return err
	}
	return s.messages.Delete(ctx, messageID)
}

func (s *ConversationService) DeleteMessageAsAdmin(ctx context.Context, actor, messageID uuid.UUID) error {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	actorP, err := s.participant(ctx, m.ConversationID, actor)
	if err != nil {
		return err
	}
	if err := authz.CanDeleteMessageAsAdmin(actorP); err != nil {
		return err
	}
	return s.messages.Delete(ctx, messageID)
}

func (s *ConversationService) SearchUsers(ctx context.Context, query string) ([]user.User, error) {
	if query == "" {
		return []user.User{}, nil
	}
	return s.users.Search(ctx, query, searchPageSize)
}

func (s *ConversationService) SearchGroups(ctx context.Context, query string) ([]conversation.Conversation, error) {
	if query == "" {
		return []conversation.Conversation{}, nil
	}
	return s.conversations.SearchGroups(ctx, query, searchPageSize)
}

func (s *ConversationService) GetConversationByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

func (s *ConversationService) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.conversations.GetUserConversations(ctx, userID)
}

func (s *ConversationService) GetUserChats(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.conversations.GetUserChats(ctx, userID)
}

func (s *ConversationService) GetUserContacts(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return s.conversations.GetUserContacts(ctx, userID)
}

func (s *ConversationService) GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error) {
	return s.conversations.GetParticipants(ctx, conversationID)
}

func (s *ConversationService) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	return s.messages.ListByConversation(ctx, conversationID)
}

// IsParticipant answers channel-subscription authorization for the realtime
// gateway.
func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	p, err := s.participant(ctx, conversationID, userID)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}
