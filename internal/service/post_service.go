package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/storage"
)

type postService struct {
	posts      repository.PostRepository
	blobs      storage.Storage
	dispatcher Dispatcher
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository, blobs storage.Storage, dispatcher Dispatcher) PostService {
	return &postService{
		posts:      posts,
		blobs:      blobs,
		dispatcher: dispatcher,
	}
}

func (s *postService) Feed(ctx context.Context, viewerID string) ([]domain.PostResponse, error) {
	return s.posts.ListFeed(ctx, viewerID)
}

func (s *postService) Replies(ctx context.Context, postID string) ([]domain.ReplyResponse, error) {
	return s.posts.ListReplies(ctx, postID)
}

func (s *postService) Create(ctx context.Context, userID, text string, image *Upload) (*domain.Post, error) {
	post := &domain.Post{
		Text:   text,
		UserID: userID,
	}

	if image != nil {
		ext := strings.ToLower(filepath.Ext(image.Filename))
		key := fmt.Sprintf("images/%s%s", uuid.New().String(), ext)
		if err := s.blobs.Write(ctx, key, image.Reader, image.Size, image.ContentType); err != nil {
			return nil, fmt.Errorf("failed to store post image: %w", err)
		}
		url, err := s.blobs.GetURL(ctx, key, avatarURLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve post image url: %w", err)
		}
		post.ImagePath = &url
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	// Best effort: feed listeners learn there is something new to pull.
	event := domain.PostEvent{
		Type:   domain.EventNewPost,
		PostID: post.ID,
		UserID: post.UserID,
	}
	if payload, err := json.Marshal(event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str(log.FieldPostID, post.ID).Msg("failed to encode post event")
	} else {
		s.dispatcher.Broadcast(payload)
	}

	return post, nil
}

func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return s.posts.Delete(ctx, postID)
}

func (s *postService) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	return s.posts.ToggleLike(ctx, userID, postID)
}

func (s *postService) Reply(ctx context.Context, userID, postID, text string) (*domain.PostReply, error) {
	reply := &domain.PostReply{
		Reply:  text,
		PostID: postID,
		UserID: userID,
	}
	if err := s.posts.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (s *postService) DeleteReply(ctx context.Context, userID, replyID string) error {
	reply, err := s.posts.GetReply(ctx, replyID)
	if err != nil {
		return err
	}
	if reply.UserID != userID {
		return ErrForbidden
	}
	return s.posts.DeleteReply(ctx, replyID)
}

func (s *postService) ToggleReplyLike(ctx context.Context, userID, replyID string) (bool, error) {
	return s.posts.ToggleReplyLike(ctx, userID, replyID)
}

var _ PostService = (*postService)(nil)
