package handler

import (
	"net/http"
	"time"

	"parley/internal/events"
	"parley/internal/services"
	"parley/internal/transport/httpdto"
	"parley/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MessageHandler handles message HTTP endpoints. Messages stored over HTTP
// are published to the conversation channel the same way gateway submissions
// are, so REST and websocket senders feed the same fan-out.
type MessageHandler struct {
	conversations *services.ConversationService
	publisher     events.Publisher
	logger        *logger.Logger
}

func NewMessageHandler(conversations *services.ConversationService, publisher events.Publisher, l *logger.Logger) *MessageHandler {
	return &MessageHandler{conversations: conversations, publisher: publisher, logger: l}
}

func (h *MessageHandler) Create(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	m, err := h.conversations.AddTextMessage(c.Request.Context(), userID, convID, req.Content, time.Now())
	if err != nil {
		writeError(c, err)
		return
	}

	dto := httpdto.NewMessageDTO(m)
	channel := events.ConversationChannel(convID)
	if err := events.Emit(c.Request.Context(), h.publisher, channel, events.EventTypeMessageCreated, dto); err != nil {
		// Stored but not broadcast; clients reconcile via re-fetch.
		h.logger.Errorf("broadcast failed for conversation %s: %s", convID, err)
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse("message sent", dto))
}

func (h *MessageHandler) List(c *gin.Context) {
	convID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	messages, err := h.conversations.GetConversationMessages(c.Request.Context(), convID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("messages found", httpdto.NewMessageDTOs(messages)))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	if err := h.conversations.DeleteMessage(c.Request.Context(), userID, messageID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("message deleted", nil))
}

// DeleteAsAdmin removes any message in a group the caller administers.
func (h *MessageHandler) DeleteAsAdmin(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	if err := h.conversations.DeleteMessageAsAdmin(c.Request.Context(), userID, messageID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("message deleted", nil))
}
