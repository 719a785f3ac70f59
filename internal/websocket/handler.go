package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"parley/internal/events"
	"parley/internal/metrics"
	"parley/internal/services"
	"parley/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Inbound frame types.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
	frameMessage     = "message"
)

// Outbound frame types.
const (
	frameConnected    = "connected"
	frameConnectError = "connect_error"
	frameSubscribed   = "subscribed"
	frameError        = "error"
)

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
}

type controlFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// messagePayload is what subscribers receive when a message is stored.
type messagePayload struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Handler is the realtime gateway: it binds the caller's session identity to
// the connection, validates submissions against it, persists through the
// conversation service and publishes the stored result to the broker.
type Handler struct {
	auth          *services.AuthService
	users         *services.UserService
	conversations *services.ConversationService
	authorizer    *ChannelAuthorizer
	hub           *Hub
	publisher     events.Publisher
	logger        *logger.Logger
}

func NewHandler(auth *services.AuthService, users *services.UserService, conversations *services.ConversationService, authorizer *ChannelAuthorizer, hub *Hub, publisher events.Publisher, l *logger.Logger) *Handler {
	return &Handler{
		auth:          auth,
		users:         users,
		conversations: conversations,
		authorizer:    authorizer,
		hub:           hub,
		publisher:     publisher,
		logger:        l,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Connect upgrades the transport first and authenticates at the protocol
// level, so a rejected identity is observable as a connect_error frame
// rather than a refused socket.
func (h *Handler) Connect(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	userID, _, err := h.auth.Identify(ctx, c.Query("token"))
	if err != nil {
		h.writeFrame(conn, controlFrame{Type: frameConnectError, Error: "not authenticated"})
		_ = conn.Close()
		return
	}

	client := NewClient(conn, userID)
	h.hub.Register(client)
	metrics.WSConnections.Inc()
	go client.WriteLoop(ctx)

	// All writes after the loop starts go through the client's queue; a
	// direct conn write here would race the ping ticker.
	client.Enqueue(mustMarshal(controlFrame{Type: frameConnected, UserID: userID.String()}))

	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "malformed frame"}))
			continue
		}
		h.dispatch(ctx, client, frame)
	}

	h.hub.Unregister(client)
	metrics.WSConnections.Dec()
}

func (h *Handler) dispatch(ctx context.Context, client *Client, frame inboundFrame) {
	switch frame.Type {
	case frameSubscribe:
		h.handleSubscribe(ctx, client, frame, true)
	case frameUnsubscribe:
		h.handleSubscribe(ctx, client, frame, false)
	case frameMessage:
		h.handleMessage(ctx, client, frame)
	default:
		client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "unknown frame type"}))
	}
}

func (h *Handler) handleSubscribe(ctx context.Context, client *Client, frame inboundFrame, subscribe bool) {
	convID, err := uuid.Parse(frame.ConversationID)
	if err != nil {
		client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "invalid conversation id"}))
		return
	}
	channel := events.ConversationChannel(convID)

	if !subscribe {
		h.hub.Unsubscribe(client, channel)
		return
	}

	allowed, err := h.authorizer.CanSubscribe(ctx, client.UserID, channel)
	if err != nil || !allowed {
		client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "subscription denied", Channel: channel}))
		return
	}
	h.hub.Subscribe(client, channel)
	client.Enqueue(mustMarshal(controlFrame{Type: frameSubscribed, Channel: channel}))
}

// handleMessage rejects a submission whose declared sender differs from the
// connect-time identity, keeps the connection open either way, and never
// retries a failed persist or broadcast.
func (h *Handler) handleMessage(ctx context.Context, client *Client, frame inboundFrame) {
	senderID, err := uuid.Parse(frame.SenderID)
	if err != nil || senderID != client.UserID {
		client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "sender does not match connection identity"}))
		return
	}
	convID, err := uuid.Parse(frame.ConversationID)
	if err != nil {
		client.Enqueue(mustMarshal(controlFrame{Type: frameError, Error: "invalid conversation id"}))
		return
	}

	stored, err := h.conversations.AddTextMessage(ctx, client.UserID, convID, frame.Content, time.Now())
	if err != nil {
		h.logger.Errorf("message persist failed for conversation %s: %s", convID, err)
		return
	}

	sender, err := h.users.GetByID(ctx, client.UserID)
	if err != nil {
		h.logger.Errorf("sender lookup failed for %s: %s", client.UserID, err)
		return
	}

	payload := messagePayload{
		ID:             stored.ID.String(),
		ConversationID: stored.ConversationID.String(),
		SenderID:       stored.SenderID.String(),
		SenderName:     sender.Username,
		Content:        stored.Content,
		CreatedAt:      stored.CreatedAt,
	}
	channel := events.ConversationChannel(convID)
	if err := events.Emit(ctx, h.publisher, channel, events.EventTypeMessageCreated, payload); err != nil {
		// Persisted but not broadcast; clients reconcile via re-fetch.
		h.logger.Errorf("broadcast failed for conversation %s: %s", convID, err)
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, frame controlFrame) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteJSON(frame)
}

func mustMarshal(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}
