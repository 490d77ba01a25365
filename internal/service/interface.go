package service

import (
	"context"
	"errors"
	"io"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("operation not allowed")
)

// Dispatcher is the realtime fan-out surface the services depend on.
// *hub.Hub satisfies it.
type Dispatcher interface {
	Dispatch(roomID string, payload []byte)
	Broadcast(payload []byte)
}

// Upload is a file received from a client, to be handed to blob storage.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

// UserService covers registration, authentication, profiles and the
// follow graph.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error)
	Profile(ctx context.Context, userID string) (*domain.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, firstName, lastName *string, avatar *Upload) error
	OwnPosts(ctx context.Context, userID string) ([]domain.PostResponse, error)
	// ToggleFollow flips the follow edge towards targetID; reports the new state.
	ToggleFollow(ctx context.Context, userID, targetID string) (following bool, err error)
	FollowSuggestions(ctx context.Context, userID string) ([]domain.FollowSuggestion, error)
}

// PostService covers the post feed, likes and replies.
type PostService interface {
	Feed(ctx context.Context, viewerID string) ([]domain.PostResponse, error)
	Replies(ctx context.Context, postID string) ([]domain.ReplyResponse, error)
	Create(ctx context.Context, userID, text string, image *Upload) (*domain.Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ToggleLike(ctx context.Context, userID, postID string) (liked bool, err error)
	Reply(ctx context.Context, userID, postID, text string) (*domain.PostReply, error)
	DeleteReply(ctx context.Context, userID, replyID string) error
	ToggleReplyLike(ctx context.Context, userID, replyID string) (liked bool, err error)
}

// ChatService bridges chat persistence and realtime dispatch.
type ChatService interface {
	CreateOrGet(ctx context.Context, userID, recipientID string) (*domain.ChatResponse, error)
	ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error)
	History(ctx context.Context, chatID, requesterID string) ([]domain.MessageResponse, error)
	// Send persists the message, fans it out to the chat's live
	// connections, and returns the stored message. Fan-out failure never
	// fails the send; the message is already durable.
	Send(ctx context.Context, chatID, senderID, content string) (*domain.MessageResponse, error)
}
