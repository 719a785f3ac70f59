package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Channel naming. One broadcast channel per conversation; a private delivery
// channel per user is reserved for direct pushes.
const (
	ChannelPrefixConversation = "channel:conversation:"
	ChannelPrefixUser         = "channel:user:"
	ChannelPattern            = "channel:*"
)

func ConversationChannel(conversationID uuid.UUID) string {
	return ChannelPrefixConversation + conversationID.String()
}

func UserChannel(userID uuid.UUID) string {
	return ChannelPrefixUser + userID.String()
}

// Event types carried on the wire.
const (
	EventTypeMessageCreated = "message.created"
	EventTypeMessageDeleted = "message.deleted"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error
}

// Emit marshals payload into an envelope and publishes it. Errors are
// returned to the caller, which logs and drops; no retry.
func Emit(ctx context.Context, p Publisher, channel, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Envelope{
		EventType:  eventType,
		OccurredAt: time.Now(),
		Payload:    raw,
	})
	if err != nil {
		return err
	}
	return p.Publish(ctx, channel, data)
}
