package repository

import (
	"context"
	"errors"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already exists")
	ErrChatNotFound  = errors.New("chat not found")
	ErrPostNotFound  = errors.New("post not found")
	ErrReplyNotFound = errors.New("reply not found")
)

// UserRepository defines user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByIDs returns the found users keyed by id; absent ids are simply missing.
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// FollowRepository defines the follow graph persistence.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) error
	Unfollow(ctx context.Context, followerID, followeeID string) error
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int64, error)
	CountFollowing(ctx context.Context, userID string) (int64, error)
	// ListSuggestions returns every other user annotated with whether
	// userID already follows them.
	ListSuggestions(ctx context.Context, userID string) ([]domain.FollowSuggestion, error)
}

// PostRepository defines post, like and reply persistence.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	Delete(ctx context.Context, id string) error
	CountByUser(ctx context.Context, userID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Post, error)
	// ListFeed returns all posts newest first, annotated with like/reply
	// counts and whether viewerID liked each one.
	ListFeed(ctx context.Context, viewerID string) ([]domain.PostResponse, error)
	// ToggleLike flips viewer's like on a post; reports the new state.
	ToggleLike(ctx context.Context, userID, postID string) (liked bool, err error)
	CreateReply(ctx context.Context, reply *domain.PostReply) error
	GetReply(ctx context.Context, id string) (*domain.PostReply, error)
	DeleteReply(ctx context.Context, id string) error
	ListReplies(ctx context.Context, postID string) ([]domain.ReplyResponse, error)
	ToggleReplyLike(ctx context.Context, userID, replyID string) (liked bool, err error)
}

// ChatRepository defines chat and message persistence.
type ChatRepository interface {
	// CreateOrGet returns the unique chat for the pair, creating it if
	// absent. Exactly one chat exists per unordered pair afterwards,
	// even under concurrent calls.
	CreateOrGet(ctx context.Context, userA, userB string) (*domain.Chat, error)
	// GetForUser returns the chat only if userID is one of its
	// participants; a foreign or absent chat is ErrChatNotFound either way.
	GetForUser(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Chat, error)
	CreateMessage(ctx context.Context, msg *domain.Message) error
	// ListMessages returns the chat's non-deleted messages, oldest first.
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	LatestMessage(ctx context.Context, chatID string) (*domain.Message, error)
}
