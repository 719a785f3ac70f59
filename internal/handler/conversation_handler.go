package handler

import (
	"net/http"

	"parley/internal/domain/conversation"
	"parley/internal/services"
	"parley/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation and membership HTTP endpoints.
type ConversationHandler struct {
	conversations *services.ConversationService
}

func NewConversationHandler(conversations *services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

func (h *ConversationHandler) CreatePrivate(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.CreatePrivateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}
	other, ok := parseUUID(c, req.UserID, "userId")
	if !ok {
		return
	}

	conv, err := h.conversations.CreatePrivateConversation(c.Request.Context(), userID, other, req.CustomName)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse("conversation created", httpdto.NewConversationDTO(conv)))
}

func (h *ConversationHandler) CreateGroup(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	var req httpdto.CreateGroupConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	conv, err := h.conversations.CreateGroupConversation(c.Request.Context(), userID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse("conversation created", httpdto.NewConversationDTO(conv)))
}

func (h *ConversationHandler) GetByID(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	conv, err := h.conversations.GetConversationByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("conversation found", httpdto.NewConversationDTO(conv)))
}

// Delete removes a conversation along with its participants and messages.
func (h *ConversationHandler) Delete(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.conversations.DeleteConversation(c.Request.Context(), userID, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("conversation deleted", nil))
}

// SearchUsers returns an empty page for an empty query.
func (h *ConversationHandler) SearchUsers(c *gin.Context) {
	users, err := h.conversations.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("users found", httpdto.NewUserDTOs(users)))
}

func (h *ConversationHandler) SearchGroups(c *gin.Context) {
	groups, err := h.conversations.SearchGroups(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("groups found", httpdto.NewConversationDTOs(groups)))
}

func (h *ConversationHandler) List(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	conversations, err := h.conversations.GetUserConversations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("conversations found", httpdto.NewConversationDTOs(conversations)))
}

// Chats lists the caller's conversations holding at least one message.
func (h *ConversationHandler) Chats(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	chats, err := h.conversations.GetUserChats(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("chats found", httpdto.NewConversationDTOs(chats)))
}

// Contacts lists the caller's conversations with no messages yet.
func (h *ConversationHandler) Contacts(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}

	contacts, err := h.conversations.GetUserContacts(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("contacts found", httpdto.NewConversationDTOs(contacts)))
}

func (h *ConversationHandler) Participants(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	participants, err := h.conversations.GetParticipants(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse("participants found", httpdto.NewParticipantDTOs(participants)))
}

func (h *ConversationHandler) AddParticipant(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}
	target, ok := parseUUID(c, req.UserID, "userId")
	if !ok {
		return
	}
	role := req.Role
	if role == "" {
		role = conversation.RoleMember
	}

	if err := h.conversations.AddParticipant(c.Request.Context(), userID, id, target, role); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("participant added", nil))
}

func (h *ConversationHandler) UpdateName(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.UpdateConversationNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}

	if err := h.conversations.UpdateGroupConversationName(c.Request.Context(), userID, id, req.Name); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("conversation renamed", nil))
}

func (h *ConversationHandler) Block(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ParticipantActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}
	target, ok := parseUUID(c, req.UserID, "userId")
	if !ok {
		return
	}

	if err := h.conversations.BlockUser(c.Request.Context(), userID, id, target); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("participant blocked", nil))
}

func (h *ConversationHandler) Unblock(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req httpdto.ParticipantActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request"))
		return
	}
	target, ok := parseUUID(c, req.UserID, "userId")
	if !ok {
		return
	}

	if err := h.conversations.UnblockUser(c.Request.Context(), userID, id, target); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("participant unblocked", nil))
}

func (h *ConversationHandler) Promote(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	target, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.conversations.PromoteToAdmin(c.Request.Context(), userID, id, target); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("participant promoted", nil))
}

// RemoveParticipant covers leaving and admin removal; the service decides
// which applies.
func (h *ConversationHandler) RemoveParticipant(c *gin.Context) {
	userID, ok := actor(c)
	if !ok {
		return
	}
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	target, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.conversations.RemoveParticipant(c.Request.Context(), userID, id, target); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any]("participant removed", nil))
}
