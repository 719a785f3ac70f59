package websocket

import (
	"context"
	"strings"

	"parley/internal/events"
	"parley/internal/services"

	"github.com/google/uuid"
)

// ChannelAuthorizer decides whether a connection may subscribe to a channel.
type ChannelAuthorizer struct {
	conversations *services.ConversationService
}

func NewChannelAuthorizer(conversations *services.ConversationService) *ChannelAuthorizer {
	return &ChannelAuthorizer{conversations: conversations}
}

// CanSubscribe allows a user their own private channel and any conversation
// channel they are a participant of. Everything else is denied.
func (a *ChannelAuthorizer) CanSubscribe(ctx context.Context, userID uuid.UUID, channel string) (bool, error) {
	if channel == events.UserChannel(userID) {
		return true, nil
	}

	if strings.HasPrefix(channel, events.ChannelPrefixConversation) {
		convID, err := uuid.Parse(strings.TrimPrefix(channel, events.ChannelPrefixConversation))
		if err != nil {
			return false, nil
		}
		return a.conversations.IsParticipant(ctx, convID, userID)
	}

	return false, nil
}
