package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
	"github.com/Abduqodir7007/twitter-clone/pkg/jwt"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/storage"
)

const avatarURLTTL = 7 * 24 * time.Hour

type userService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	posts   repository.PostRepository
	tokens  *jwt.Manager
	blobs   storage.Storage
}

// NewUserService creates a new user service.
func NewUserService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	posts repository.PostRepository,
	tokens *jwt.Manager,
	blobs storage.Storage,
) UserService {
	return &userService{
		users:   users,
		follows: follows,
		posts:   posts,
		tokens:  tokens,
		blobs:   blobs,
	}
}

// normalizeName lowercases and strips whitespace from a name part.
func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

func (s *userService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.TokenResponse, error) {
	l := log.Ctx(ctx)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		l.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := &domain.User{
		FirstName:      normalizeName(req.FirstName),
		LastName:       normalizeName(req.LastName),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		HashedPassword: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

func (s *userService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	access, refresh, err := s.tokens.RefreshTokens(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

func (s *userService) Profile(ctx context.Context, userID string) (*domain.ProfileResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	postCount, err := s.posts.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	followers, err := s.follows.CountFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.follows.CountFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.ProfileResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		ImagePath: user.ImagePath,
		PostCount: postCount,
		Followers: followers,
		Following: following,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, firstName, lastName *string, avatar *Upload) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if firstName != nil {
		user.FirstName = normalizeName(*firstName)
	}
	if lastName != nil {
		user.LastName = normalizeName(*lastName)
	}

	if avatar != nil {
		url, err := s.storeImage(ctx, avatar)
		if err != nil {
			return err
		}
		user.ImagePath = &url
	}

	return s.users.Update(ctx, user)
}

// storeImage writes an upload under a fresh key and returns its URL.
func (s *userService) storeImage(ctx context.Context, up *Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(up.Filename))
	key := fmt.Sprintf("images/%s%s", uuid.New().String(), ext)

	if err := s.blobs.Write(ctx, key, up.Reader, up.Size, up.ContentType); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	url, err := s.blobs.GetURL(ctx, key, avatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to resolve image url: %w", err)
	}
	return url, nil
}

func (s *userService) OwnPosts(ctx context.Context, userID string) ([]domain.PostResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	author := domain.PostAuthor{FirstName: user.FirstName, LastName: user.LastName}
	out := make([]domain.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, domain.PostResponse{
			ID:        p.ID,
			Text:      p.Text,
			CreatedAt: p.CreatedAt,
			ImagePath: p.ImagePath,
			User:      author,
		})
	}
	return out, nil
}

func (s *userService) ToggleFollow(ctx context.Context, userID, targetID string) (bool, error) {
	if userID == targetID {
		return false, ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	following, err := s.follows.IsFollowing(ctx, userID, targetID)
	if err != nil {
		return false, err
	}

	if following {
		if err := s.follows.Unfollow(ctx, userID, targetID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.follows.Follow(ctx, userID, targetID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *userService) FollowSuggestions(ctx context.Context, userID string) ([]domain.FollowSuggestion, error) {
	return s.follows.ListSuggestions(ctx, userID)
}

func (s *userService) issueTokens(user *domain.User) (*domain.TokenResponse, error) {
	access, refresh, err := s.tokens.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &domain.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
	}, nil
}

var _ UserService = (*userService)(nil)
