package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/chatify/chatify-server/internal/proto"
	"github.com/chatify/chatify-server/internal/service/messaging"
	"github.com/chatify/chatify-server/internal/store"
)

// MessageHandlers provides HTTP handlers for messaging endpoints.
type MessageHandlers struct {
	svc *messaging.Service
	log *zerolog.Logger
}

// NewMessageHandlers creates a new message handlers instance.
func NewMessageHandlers(svc *messaging.Service, logger *zerolog.Logger) *MessageHandlers {
	return &MessageHandlers{svc: svc, log: logger}
}

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// DeleteMessagesRequest represents the delete messages request body.
type DeleteMessagesRequest struct {
	MessageIDs []int64 `json:"message_ids" binding:"required"`
}

// DeleteMessagesResponse reports how many messages were removed.
type DeleteMessagesResponse struct {
	DeletedCount int `json:"deleted_count"`
}

// Contacts lists every other registered user.
// GET /api/messages/contacts
func (h *MessageHandlers) Contacts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.svc.Contacts(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list contacts")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, usersToPayloads(users))
}

// Partners lists the users the caller has exchanged messages with.
// GET /api/messages/partners
func (h *MessageHandlers) Partners(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	users, err := h.svc.ChatPartners(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to list chat partners")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, usersToPayloads(users))
}

// Conversation returns the full history with another user, oldest first.
// GET /api/messages/conversation/:id
func (h *MessageHandlers) Conversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	otherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	messages, err := h.svc.Conversation(c.Request.Context(), userID, otherID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Int64("other_id", otherID).Msg("failed to load conversation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	payloads := make([]proto.MessagePayload, 0, len(messages))
	for _, m := range messages {
		payloads = append(payloads, messagePayload(m))
	}
	c.JSON(http.StatusOK, payloads)
}

// Send persists a direct message and pushes it to the receiver if online.
// POST /api/messages/send/:id
func (h *MessageHandlers) Send(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	receiverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), userID, receiverID, req.Text, req.Image)
	if err != nil {
		switch {
		case errors.Is(err, messaging.ErrEmptyMessage),
			errors.Is(err, messaging.ErrSelfMessage),
			errors.Is(err, messaging.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, messaging.ErrReceiverNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "receiver not found"})
		default:
			h.log.Error().Err(err).Int64("sender_id", userID).Int64("receiver_id", receiverID).Msg("failed to send message")
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		}
		return
	}

	c.JSON(http.StatusCreated, messagePayload(msg))
}

// Delete removes the caller's messages and notifies counterparties.
// POST /api/messages/delete
func (h *MessageHandlers) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	var req DeleteMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MessageIDs) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no message ids provided"})
		return
	}

	count, err := h.svc.Delete(c.Request.Context(), userID, req.MessageIDs)
	if err != nil {
		if errors.Is(err, messaging.ErrNothingDeleted) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "no messages found or you are not the sender"})
			return
		}
		h.log.Error().Err(err).Int64("user_id", userID).Msg("failed to delete messages")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(http.StatusOK, DeleteMessagesResponse{DeletedCount: count})
}

func usersToPayloads(users []*store.User) []proto.UserPayload {
	payloads := make([]proto.UserPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, userPayload(u))
	}
	return payloads
}
