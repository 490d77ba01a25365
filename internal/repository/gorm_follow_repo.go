package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

// GormFollowRepository implements FollowRepository using GORM.
type GormFollowRepository struct {
	db *gorm.DB
}

// NewGormFollowRepository creates a new GORM-backed follow repository.
func NewGormFollowRepository(db *gorm.DB) *GormFollowRepository {
	return &GormFollowRepository{db: db}
}

func (r *GormFollowRepository) Follow(ctx context.Context, followerID, followeeID string) error {
	edge := domain.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		// Concurrent double-follow lands on the composite key; the edge
		// exists, which is what the caller asked for.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return err
	}
	return nil
}

func (r *GormFollowRepository) Unfollow(ctx context.Context, followerID, followeeID string) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&domain.Follow{}).Error
}

func (r *GormFollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormFollowRepository) CountFollowers(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *GormFollowRepository) CountFollowing(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *GormFollowRepository) ListSuggestions(ctx context.Context, userID string) ([]domain.FollowSuggestion, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id <> ?", userID).Find(&users).Error; err != nil {
		return nil, err
	}

	var edges []domain.Follow
	if err := r.db.WithContext(ctx).Where("follower_id = ?", userID).Find(&edges).Error; err != nil {
		return nil, err
	}
	following := make(map[string]bool, len(edges))
	for _, e := range edges {
		following[e.FolloweeID] = true
	}

	suggestions := make([]domain.FollowSuggestion, 0, len(users))
	for _, u := range users {
		suggestions = append(suggestions, domain.FollowSuggestion{
			ID:          u.ID,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			ImagePath:   u.ImagePath,
			IsFollowing: following[u.ID],
		})
	}
	return suggestions, nil
}

var _ FollowRepository = (*GormFollowRepository)(nil)
