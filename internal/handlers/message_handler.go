package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/effisocial/backend/internal/middleware"
	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/internal/services"
)

// MessageHandler handles direct messages between users
type MessageHandler struct {
	messages *services.MessageService
}

func NewMessageHandler(messages *services.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// RegisterMessageRoutes registers message routes under /messages
func (h *MessageHandler) RegisterMessageRoutes(g *echo.Group) {
	g.GET("", h.GetConversations)
	g.POST("", h.SendMessage)
	g.GET("/:userId", h.GetConversation)
	g.DELETE("/:id", h.DeleteMessage)
}

// SendMessage accepts JSON or multipart with an optional media file
func (h *MessageHandler) SendMessage(c echo.Context) error {
	var req models.SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	media, err := optionalFile(c, "media")
	if err != nil {
		return err
	}
	msg, err := h.messages.Send(c.Request().Context(), middleware.Actor(c), req, media)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetConversations lists the latest message exchanged with each counterpart
func (h *MessageHandler) GetConversations(c echo.Context) error {
	conversations, err := h.messages.Conversations(c.Request().Context(), middleware.Actor(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, conversations)
}

// GetConversation returns the messages exchanged with one user, oldest
// first, and marks the received ones as read
func (h *MessageHandler) GetConversation(c echo.Context) error {
	otherID, err := uintParam(c, "userId")
	if err != nil {
		return err
	}
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	messages, err := h.messages.Conversation(c.Request().Context(), middleware.Actor(c), otherID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) DeleteMessage(c echo.Context) error {
	if err := h.messages.Delete(c.Request().Context(), middleware.Actor(c), c.Param("id")); err != nil {
		return err
	}
	return ok(c, "message deleted")
}
