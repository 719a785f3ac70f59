package repository

import (
	"context"
	"errors"
	"time"

	"parley/internal/domain/conversation"
	"parley/internal/domain/message"
	parley_errors "parley/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Append(ctx context.Context, m *message.Message, sentAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Row lock on the conversation serializes concurrent sends: the
		// membership check, the insert and the last_message_at write all
		// happen under it.
		var c conversation.Conversation
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", m.ConversationID).
			First(&c).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return parley_errors.ErrNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&conversation.Participant{}).
			Where("conversation_id = ? AND user_id = ?", m.ConversationID, m.SenderID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return parley_errors.ErrForbidden
		}

		if err := tx.Create(m).Error; err != nil {
			return err
		}

		return tx.Model(&conversation.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("last_message_at", sentAt).Error
	})
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, parley_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&message.Message{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return parley_errors.ErrNotFound
	}
	return nil
}
