package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

// GormPostRepository implements PostRepository using GORM.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GORM-based post repository.
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

func (r *GormPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *GormPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Delete removes a post together with its likes and replies.
func (r *GormPostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Post{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPostNotFound
		}

		if err := tx.Where("post_id = ?", id).Delete(&domain.PostLike{}).Error; err != nil {
			return err
		}

		var replyIDs []string
		if err := tx.Model(&domain.PostReply{}).Where("post_id = ?", id).Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		if len(replyIDs) > 0 {
			if err := tx.Where("reply_id IN ?", replyIDs).Delete(&domain.ReplyLike{}).Error; err != nil {
				return err
			}
		}
		return tx.Where("post_id = ?", id).Delete(&domain.PostReply{}).Error
	})
}

func (r *GormPostRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) ListByUser(ctx context.Context, userID string) ([]domain.Post, error) {
	var posts []domain.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

type countRow struct {
	RowKey   string `gorm:"column:row_key"`
	RowCount int64  `gorm:"column:row_count"`
}

// ListFeed returns all posts newest first with per-post aggregates. The
// counts are fetched as three grouped queries rather than correlated
// subqueries so the same code works on every supported driver.
func (r *GormPostRepository) ListFeed(ctx context.Context, viewerID string) ([]domain.PostResponse, error) {
	var posts []domain.Post
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []domain.PostResponse{}, nil
	}

	likeCounts, err := r.groupCount(ctx, &domain.PostLike{}, "post_id", nil)
	if err != nil {
		return nil, err
	}
	replyCounts, err := r.groupCount(ctx, &domain.PostReply{}, "post_id", nil)
	if err != nil {
		return nil, err
	}
	likedByViewer, err := r.groupCount(ctx, &domain.PostLike{}, "post_id", map[string]interface{}{"user_id": viewerID})
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		authorIDs = append(authorIDs, p.UserID)
	}
	var authors []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[string]domain.User, len(authors))
	for _, a := range authors {
		authorByID[a.ID] = a
	}

	feed := make([]domain.PostResponse, 0, len(posts))
	for _, p := range posts {
		author := authorByID[p.UserID]
		feed = append(feed, domain.PostResponse{
			ID:         p.ID,
			Text:       p.Text,
			CreatedAt:  p.CreatedAt,
			LikesCount: likeCounts[p.ID],
			IsLiked:    likedByViewer[p.ID] > 0,
			ImagePath:  p.ImagePath,
			ReplyCount: replyCounts[p.ID],
			User: domain.PostAuthor{
				FirstName: author.FirstName,
				LastName:  author.LastName,
			},
		})
	}
	return feed, nil
}

func (r *GormPostRepository) groupCount(ctx context.Context, model interface{}, keyColumn string, where map[string]interface{}) (map[string]int64, error) {
	q := r.db.WithContext(ctx).Model(model).
		Select(keyColumn + " AS row_key, COUNT(*) AS row_count").
		Group(keyColumn)
	if where != nil {
		q = q.Where(where)
	}

	var rows []countRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.RowKey] = row.RowCount
	}
	return counts, nil
}

func (r *GormPostRepository) ToggleLike(ctx context.Context, userID, postID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&domain.Post{}, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		result := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&domain.PostLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		liked = true
		like := domain.PostLike{ID: uuid.New().String(), UserID: userID, PostID: postID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		return nil
	})
	return liked, err
}

func (r *GormPostRepository) CreateReply(ctx context.Context, reply *domain.PostReply) error {
	if reply.ID == "" {
		reply.ID = uuid.New().String()
	}

	if err := r.db.WithContext(ctx).First(&domain.Post{}, "id = ?", reply.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	return r.db.WithContext(ctx).Create(reply).Error
}

func (r *GormPostRepository) GetReply(ctx context.Context, id string) (*domain.PostReply, error) {
	var reply domain.PostReply
	if err := r.db.WithContext(ctx).First(&reply, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReplyNotFound
		}
		return nil, err
	}
	return &reply, nil
}

func (r *GormPostRepository) DeleteReply(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.PostReply{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReplyNotFound
		}
		return tx.Where("reply_id = ?", id).Delete(&domain.ReplyLike{}).Error
	})
}

func (r *GormPostRepository) ListReplies(ctx context.Context, postID string) ([]domain.ReplyResponse, error) {
	var replies []domain.PostReply
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	if len(replies) == 0 {
		return []domain.ReplyResponse{}, nil
	}

	likeCounts, err := r.groupCount(ctx, &domain.ReplyLike{}, "reply_id", nil)
	if err != nil {
		return nil, err
	}

	authorIDs := make([]string, 0, len(replies))
	for _, rep := range replies {
		authorIDs = append(authorIDs, rep.UserID)
	}
	var authors []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", authorIDs).Find(&authors).Error; err != nil {
		return nil, err
	}
	authorByID := make(map[string]*domain.User, len(authors))
	for i := range authors {
		authorByID[authors[i].ID] = &authors[i]
	}

	out := make([]domain.ReplyResponse, 0, len(replies))
	for _, rep := range replies {
		out = append(out, domain.ReplyResponse{
			ID:        rep.ID,
			Reply:     rep.Reply,
			CreatedAt: rep.CreatedAt,
			LikeCount: likeCounts[rep.ID],
			User:      domain.NewUserInfo(authorByID[rep.UserID]),
		})
	}
	return out, nil
}

func (r *GormPostRepository) ToggleReplyLike(ctx context.Context, userID, replyID string) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&domain.PostReply{}, "id = ?", replyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReplyNotFound
			}
			return err
		}

		result := tx.Where("user_id = ? AND reply_id = ?", userID, replyID).Delete(&domain.ReplyLike{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		liked = true
		like := domain.ReplyLike{ID: uuid.New().String(), UserID: userID, ReplyID: replyID}
		if err := tx.Create(&like).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}
		return nil
	})
	return liked, err
}

var _ PostRepository = (*GormPostRepository)(nil)
