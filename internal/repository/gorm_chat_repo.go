package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// orderPair returns the two ids canonically ordered. Chats are stored
// with user1_id < user2_id so the unique index on the ordered pair also
// covers the reversed pair.
func orderPair(a, b string) (string, string) {
	if strings.Compare(a, b) > 0 {
		return b, a
	}
	return a, b
}

func (r *GormChatRepository) CreateOrGet(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	u1, u2 := orderPair(userA, userB)

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		First(&chat, "user1_id = ? AND user2_id = ?", u1, u2).Error
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat = domain.Chat{
		ID:        uuid.New().String(),
		IsPrivate: true,
		User1ID:   &u1,
		User2ID:   &u2,
	}
	if err := r.db.WithContext(ctx).Create(&chat).Error; err != nil {
		// Lost the race against a concurrent CreateOrGet for the same
		// pair; the winner's row is the chat.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing domain.Chat
			if err := r.db.WithContext(ctx).
				First(&existing, "user1_id = ? AND user2_id = ?", u1, u2).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}
	return &chat, nil
}

// GetForUser scopes the lookup to chats the requester participates in.
// An absent chat and someone else's chat are indistinguishable to the
// caller on purpose.
func (r *GormChatRepository) GetForUser(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Where("id = ? AND (user1_id = ? OR user2_id = ?)", chatID, userID, userID).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *GormChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&chats).Error
	return chats, err
}

func (r *GormChatRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *GormChatRepository) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND is_deleted = ?", chatID, false).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormChatRepository) LatestMessage(ctx context.Context, chatID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND is_deleted = ?", chatID, false).
		Order("created_at DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

var _ ChatRepository = (*GormChatRepository)(nil)
