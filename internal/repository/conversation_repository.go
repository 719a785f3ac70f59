package repository

import (
	"context"
	"errors"

	"parley/internal/domain/conversation"
	"parley/internal/domain/message"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *conversation.Conversation, participants []conversation.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			if isUniqueViolation(err) {
				return parley_errors.ErrConflict
			}
			return err
		}
		for i := range participants {
			if err := tx.Create(&participants[i]).Error; err != nil {
				if isUniqueViolation(err) {
					return parley_errors.ErrConflict
				}
				return err
			}
		}
		return nil
	})
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, parley_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetPrivateBetween(ctx context.Context, userID1, userID2 uuid.UUID) (conversation.Conversation, error) {
	var c conversation.Conversation

	// Private conversation holding both users, order-independent.
	subQuery := r.db.Model(&conversation.Participant{}).
		Select("conversation_id").
		Where("user_id IN (?, ?)", userID1, userID2).
		Group("conversation_id").
		Having("COUNT(DISTINCT user_id) = 2")

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?) AND type = ?", subQuery, conversation.TypePrivate).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Conversation{}, parley_errors.ErrNotFound
		}
		return conversation.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	var conversations []conversation.Conversation

	subQuery := r.db.Model(&conversation.Participant{}).
		Select("conversation_id").
		Where("user_id = ?", userID)

	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", subQuery).
		Order("last_message_at DESC NULLS LAST").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) GetUserChats(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return r.userConversationsByMessages(ctx, userID, true)
}

func (r *PostgresConversationRepository) GetUserContacts(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	return r.userConversationsByMessages(ctx, userID, false)
}

// userConversationsByMessages splits the user's conversations by whether any
// message exists in them. Chats and contacts partition the membership set.
func (r *PostgresConversationRepository) userConversationsByMessages(ctx context.Context, userID uuid.UUID, withMessages bool) ([]conversation.Conversation, error) {
	var conversations []conversation.Conversation

	memberOf := r.db.Model(&conversation.Participant{}).
		Select("conversation_id").
		Where("user_id = ?", userID)

	messaged := r.db.Model(&message.Message{}).
		Select("DISTINCT conversation_id")

	q := r.db.WithContext(ctx).
		Preload("Participants").
		Where("id IN (?)", memberOf)
	if withMessages {
		q = q.Where("id IN (?)", messaged).Order("last_message_at DESC NULLS LAST")
	} else {
		q = q.Where("id NOT IN (?)", messaged).Order("created_at DESC")
	}

	if err := q.Find(&conversations).Error; err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) SearchGroups(ctx context.Context, query string, limit int) ([]conversation.Conversation, error) {
	var conversations []conversation.Conversation
	err := r.db.WithContext(ctx).
		Preload("Participants").
		Where("type = ? AND name ILIKE ?", conversation.TypeGroup, "%"+query+"%").
		Order("name ASC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (r *PostgresConversationRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Conversation{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return parley_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Composition: participants and messages go with the conversation.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&message.Message{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&conversation.Participant{}, "conversation_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&conversation.Conversation{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return parley_errors.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresConversationRepository) AddParticipant(ctx context.Context, p *conversation.Participant) error {
	res := r.db.WithContext(ctx).Create(p)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return parley_errors.ErrConflict
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Delete(&conversation.Participant{}, "conversation_id = ? AND user_id = ?", conversationID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return parley_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresConversationRepository) GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (conversation.Participant, error) {
	var p conversation.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.Participant{}, parley_errors.ErrNotFound
		}
		return conversation.Participant{}, err
	}
	return p, nil
}

func (r *PostgresConversationRepository) GetParticipants(ctx context.Context, conversationID uuid.UUID) ([]conversation.Participant, error) {
	var participants []conversation.Participant
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("joined_at ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *PostgresConversationRepository) UpdateParticipantStatus(ctx context.Context, conversationID, userID uuid.UUID, status string) error {
	return r.updateParticipantColumn(ctx, conversationID, userID, "status", status)
}

func (r *PostgresConversationRepository) UpdateParticipantRole(ctx context.Context, conversationID, userID uuid.UUID, role string) error {
	return r.updateParticipantColumn(ctx, conversationID, userID, "role", role)
}

func (r *PostgresConversationRepository) updateParticipantColumn(ctx context.Context, conversationID, userID uuid.UUID, column string, value string) error {
	res := r.db.WithContext(ctx).
		Model(&conversation.Participant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return parley_errors.ErrNotFound
	}
	return nil
}
