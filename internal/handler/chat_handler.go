package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/internal/service"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/middleware"
	"github.com/Abduqodir7007/twitter-clone/pkg/response"
)

// ChatHandler handles the direct-message endpoints.
type ChatHandler struct {
	chats          service.ChatService
	authMiddleware *middleware.AuthMiddleware
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chats service.ChatService, authMiddleware *middleware.AuthMiddleware) *ChatHandler {
	return &ChatHandler{chats: chats, authMiddleware: authMiddleware}
}

// RegisterRoutes registers the chat route group. The websocket route is
// registered separately by WSHandler.
func (h *ChatHandler) RegisterRoutes(api *gin.RouterGroup) {
	chat := api.Group("/chat", h.authMiddleware.RequireAuth())
	{
		chat.GET("/", h.List)
		chat.POST("/create", h.Create)
		chat.GET("/:chat_id/messages", h.History)
		chat.POST("/:chat_id/messages", h.Send)
	}
}

// List returns all chats of the current user with last-message previews.
func (h *ChatHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	chats, err := h.chats.ListChats(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("chat list failed")
		response.InternalError(c, "failed to load chats")
		return
	}

	response.Success(c, chats)
}

// Create returns the chat with the given recipient, creating it on first use.
func (h *ChatHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var req domain.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	chat, err := h.chats.CreateOrGet(ctx, userID, req.RecipientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.BadRequest(c, "recipient does not exist")
			return
		}
		l.Error().Err(err).Msg("chat create failed")
		response.InternalError(c, "failed to create chat")
		return
	}

	response.Created(c, chat)
}

// History returns the messages of a chat, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	chatID := c.Param("chat_id")

	messages, err := h.chats.History(ctx, chatID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			response.NotFound(c, "chat not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("chat history failed")
		response.InternalError(c, "failed to load messages")
		return
	}

	response.Success(c, messages)
}

// Send persists a message and pushes it to every connection in the chat room.
func (h *ChatHandler) Send(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)
	chatID := c.Param("chat_id")

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.chats.Send(ctx, chatID, userID, req.Content)
	if err != nil {
		if errors.Is(err, repository.ErrChatNotFound) {
			response.NotFound(c, "chat not found")
			return
		}
		l.Error().Err(err).Str(log.FieldChatID, chatID).Msg("message send failed")
		response.InternalError(c, "failed to send message")
		return
	}

	response.Created(c, msg)
}
