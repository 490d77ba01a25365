package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/internal/service"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/middleware"
	"github.com/Abduqodir7007/twitter-clone/pkg/response"
)

// PostHandler handles the feed, posts, replies and like endpoints.
type PostHandler struct {
	posts          service.PostService
	authMiddleware *middleware.AuthMiddleware
}

// NewPostHandler creates a new post handler.
func NewPostHandler(posts service.PostService, authMiddleware *middleware.AuthMiddleware) *PostHandler {
	return &PostHandler{posts: posts, authMiddleware: authMiddleware}
}

// RegisterRoutes registers the post route group.
func (h *PostHandler) RegisterRoutes(api *gin.RouterGroup) {
	post := api.Group("/post")
	{
		post.GET("/:id", h.Replies)

		protected := post.Group("", h.authMiddleware.RequireAuth())
		{
			protected.GET("/", h.Feed)
			protected.POST("/create", h.Create)
			protected.DELETE("/delete/:id", h.Delete)
			protected.POST("/create_delete_like/:id", h.ToggleLike)
			protected.POST("/:id/reply", h.Reply)
			protected.DELETE("/reply/:reply_id", h.DeleteReply)
			protected.POST("/reply/:reply_id/create-delete-like", h.ToggleReplyLike)
		}
	}
}

// Feed returns all posts, newest first, annotated for the viewer.
func (h *PostHandler) Feed(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	posts, err := h.posts.Feed(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("feed lookup failed")
		response.InternalError(c, "failed to load feed")
		return
	}

	response.Success(c, posts)
}

// Replies returns the replies of a single post.
func (h *PostHandler) Replies(c *gin.Context) {
	ctx := c.Request.Context()
	postID := c.Param("id")

	replies, err := h.posts.Replies(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("replies lookup failed")
		response.InternalError(c, "failed to load replies")
		return
	}

	response.Success(c, replies)
}

// Create creates a post from multipart form data, with an optional image.
func (h *PostHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	text := c.PostForm("text")
	if text == "" {
		response.BadRequest(c, "text is required")
		return
	}

	var image *service.Upload
	if file, err := c.FormFile("image"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			response.BadRequest(c, "unreadable image")
			return
		}
		defer f.Close()
		image = &service.Upload{
			Reader:      f,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
			Filename:    file.Filename,
		}
	}

	post, err := h.posts.Create(ctx, userID, text, image)
	if err != nil {
		l.Error().Err(err).Msg("post create failed")
		response.InternalError(c, "failed to create post")
		return
	}

	response.Created(c, post)
}

// Delete removes the caller's own post and everything attached to it.
func (h *PostHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	if err := h.posts.Delete(ctx, userID, postID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPostNotFound):
			response.NotFound(c, "post not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not your post")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("post delete failed")
			response.InternalError(c, "failed to delete post")
		}
		return
	}

	response.Success(c, gin.H{"msg": "Deleted"})
}

// ToggleLike likes the post, or removes the like if already present.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	liked, err := h.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("like toggle failed")
		response.InternalError(c, "failed to update like")
		return
	}

	if liked {
		response.Success(c, gin.H{"msg": "Liked"})
		return
	}
	response.Success(c, gin.H{"msg": "Unliked"})
}

// Reply adds a reply to a post.
func (h *PostHandler) Reply(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	postID := c.Param("id")

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reply, err := h.posts.Reply(ctx, userID, postID, req.Text)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "post not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("reply create failed")
		response.InternalError(c, "failed to create reply")
		return
	}

	response.Created(c, reply)
}

// DeleteReply removes the caller's own reply.
func (h *PostHandler) DeleteReply(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	replyID := c.Param("reply_id")

	if err := h.posts.DeleteReply(ctx, userID, replyID); err != nil {
		switch {
		case errors.Is(err, repository.ErrReplyNotFound):
			response.NotFound(c, "reply not found")
		case errors.Is(err, service.ErrForbidden):
			response.Forbidden(c, "not your reply")
		default:
			log.Ctx(ctx).Error().Err(err).Msg("reply delete failed")
			response.InternalError(c, "failed to delete reply")
		}
		return
	}

	response.Success(c, gin.H{"msg": "Deleted"})
}

// ToggleReplyLike likes the reply, or removes the like if already present.
func (h *PostHandler) ToggleReplyLike(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	replyID := c.Param("reply_id")

	liked, err := h.posts.ToggleReplyLike(ctx, userID, replyID)
	if err != nil {
		if errors.Is(err, repository.ErrReplyNotFound) {
			response.NotFound(c, "reply not found")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("reply like toggle failed")
		response.InternalError(c, "failed to update like")
		return
	}

	if liked {
		response.Success(c, gin.H{"msg": "Liked"})
		return
	}
	response.Success(c, gin.H{"msg": "Unliked"})
}
