package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Abduqodir7007/twitter-clone/internal/config"
	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/hub"
	"github.com/Abduqodir7007/twitter-clone/internal/service"
	"github.com/Abduqodir7007/twitter-clone/pkg/jwt"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
)

// WSHandler upgrades websocket requests and runs the connection lifecycle
// against the hub.
type WSHandler struct {
	hub      *hub.Hub
	posts    service.PostService
	tokens   *jwt.Manager
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new websocket handler.
func NewWSHandler(h *hub.Hub, posts service.PostService, tokens *jwt.Manager, cfg config.WebSocketConfig) *WSHandler {
	return &WSHandler{
		hub:    h,
		posts:  posts,
		tokens: tokens,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers the websocket routes alongside the REST groups.
func (h *WSHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/chat/ws/:chat_id", h.ChatSocket)
	api.GET("/post/ws", h.FeedSocket)
}

// ChatSocket joins a connection to a chat room. The room is taken from the
// path as-is; messages arrive over the REST send endpoint, so inbound
// frames on this socket are drained and ignored.
func (h *WSHandler) ChatSocket(c *gin.Context) {
	chatID := c.Param("chat_id")
	l := log.Ctx(c.Request.Context()).With().Str(log.FieldChatID, chatID).Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, chatID, h.cfg)
	h.hub.Register(chatID, client)
	l.Info().Str(log.FieldClientID, client.ID).Msg("chat socket connected")

	go client.WritePump()
	client.ReadPump(nil)

	h.hub.Unregister(chatID, client)
	l.Info().Str(log.FieldClientID, client.ID).Msg("chat socket disconnected")
}

// FeedSocket joins a connection to the global feed. Auth comes from a
// token query parameter because browsers cannot set headers on websocket
// requests. The client may send {"type":"posts"} to pull the current feed.
func (h *WSHandler) FeedSocket(c *gin.Context) {
	claims, err := h.tokens.ValidateAccessToken(c.Query("token"))
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	userID := claims.UserID
	l := log.Ctx(c.Request.Context()).With().Str(log.FieldUserID, userID).Logger()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, "", h.cfg)
	h.hub.RegisterGlobal(client)
	l.Info().Str(log.FieldClientID, client.ID).Msg("feed socket connected")

	go client.WritePump()
	client.ReadPump(func(raw []byte) {
		var req struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &req); err != nil || req.Type != domain.EventPosts {
			return
		}

		posts, err := h.posts.Feed(context.Background(), userID)
		if err != nil {
			l.Error().Err(err).Msg("feed pull failed")
			return
		}

		payload, err := json.Marshal(gin.H{"type": domain.EventPosts, "data": posts})
		if err != nil {
			l.Error().Err(err).Msg("feed payload marshal failed")
			return
		}
		client.Send(payload)
	})

	h.hub.UnregisterGlobal(client)
	l.Info().Str(log.FieldClientID, client.ID).Msg("feed socket disconnected")
}
