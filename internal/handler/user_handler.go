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

// UserHandler handles auth, profile and follow endpoints.
type UserHandler struct {
	users          service.UserService
	authMiddleware *middleware.AuthMiddleware
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, authMiddleware *middleware.AuthMiddleware) *UserHandler {
	return &UserHandler{users: users, authMiddleware: authMiddleware}
}

// RegisterRoutes registers the auth route group.
func (h *UserHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		protected := auth.Group("", h.authMiddleware.RequireAuth())
		{
			protected.GET("/me", h.Me)
			protected.POST("/me/update", h.UpdateProfile)
			protected.GET("/user/posts", h.OwnPosts)
			protected.POST("/follow/:id", h.ToggleFollow)
			protected.GET("/follow/recommendation", h.FollowSuggestions)
		}
	}
}

// Register handles user registration.
func (h *UserHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid register request")
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.users.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			response.Conflict(c, "user with this email already exists")
			return
		}
		l.Error().Err(err).Msg("register failed")
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, tokens)
}

// Login handles user login.
func (h *UserHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("invalid login request")
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.users.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		l.Error().Err(err).Msg("login failed")
		response.InternalError(c, "failed to login")
		return
	}

	response.Success(c, tokens)
}

// Refresh exchanges a refresh token for a new pair.
func (h *UserHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req domain.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tokens, err := h.users.Refresh(ctx, req.RefreshToken)
	if err != nil {
		response.Unauthorized(c, "invalid or expired refresh token")
		return
	}

	response.Success(c, tokens)
}

// Me returns the current user's profile with aggregate counts.
func (h *UserHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	profile, err := h.users.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.Unauthorized(c, "unknown user")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("profile lookup failed")
		response.InternalError(c, "failed to load profile")
		return
	}

	response.Success(c, profile)
}

// UpdateProfile updates names and, optionally, the profile picture.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)
	userID := middleware.GetUserID(c)

	var firstName, lastName *string
	if v, ok := c.GetPostForm("first_name"); ok {
		firstName = &v
	}
	if v, ok := c.GetPostForm("last_name"); ok {
		lastName = &v
	}

	var avatar *service.Upload
	if file, err := c.FormFile("profile_picture"); err == nil && file != nil {
		f, err := file.Open()
		if err != nil {
			response.BadRequest(c, "unreadable profile picture")
			return
		}
		defer f.Close()
		avatar = &service.Upload{
			Reader:      f,
			Size:        file.Size,
			ContentType: file.Header.Get("Content-Type"),
			Filename:    file.Filename,
		}
	}

	if err := h.users.UpdateProfile(ctx, userID, firstName, lastName, avatar); err != nil {
		l.Error().Err(err).Msg("profile update failed")
		response.InternalError(c, "failed to update profile")
		return
	}

	response.Success(c, gin.H{"msg": "Updated"})
}

// OwnPosts lists the current user's posts.
func (h *UserHandler) OwnPosts(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	posts, err := h.users.OwnPosts(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("own posts lookup failed")
		response.InternalError(c, "failed to load posts")
		return
	}

	response.Success(c, posts)
}

// ToggleFollow follows the target user, or unfollows if already following.
func (h *UserHandler) ToggleFollow(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)
	targetID := c.Param("id")

	following, err := h.users.ToggleFollow(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			response.BadRequest(c, "user does not exist")
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			response.BadRequest(c, "cannot follow yourself")
			return
		}
		log.Ctx(ctx).Error().Err(err).Msg("follow toggle failed")
		response.InternalError(c, "failed to update follow state")
		return
	}

	if following {
		response.Success(c, gin.H{"msg": "Followed"})
		return
	}
	response.Success(c, gin.H{"msg": "Unfollowed"})
}

// FollowSuggestions lists users to follow, annotated with follow state.
func (h *UserHandler) FollowSuggestions(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	suggestions, err := h.users.FollowSuggestions(ctx, userID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("follow suggestions failed")
		response.InternalError(c, "failed to load suggestions")
		return
	}

	response.Success(c, suggestions)
}
