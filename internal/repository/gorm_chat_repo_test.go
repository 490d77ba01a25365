package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

func TestCreateOrGetIsIdempotentAcrossOrientations(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	first, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	same, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, same.ID)

	// Reversed pair resolves to the same chat.
	reversed, err := repo.CreateOrGet(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, reversed.ID)

	var count int64
	require.NoError(t, db.Model(&domain.Chat{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateOrGetConcurrentPairYieldsOneChat(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	const attempts = 8
	ids := make([]string, attempts)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			a, b := alice.ID, bob.ID
			if n%2 == 1 {
				a, b = b, a
			}
			chat, err := repo.CreateOrGet(ctx, a, b)
			if err != nil {
				errs[n] = err
				return
			}
			ids[n] = chat.ID
		}(i)
	}
	wg.Wait()

	for n := 0; n < attempts; n++ {
		require.NoError(t, errs[n])
		require.Equal(t, ids[0], ids[n])
	}

	var count int64
	require.NoError(t, db.Model(&domain.Chat{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetForUserHidesForeignChats(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	eve := createUser(t, db, "eve@example.com")

	chat, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	got, err := repo.GetForUser(ctx, chat.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, chat.ID, got.ID)

	// A non-participant gets the same error as a missing chat.
	_, err = repo.GetForUser(ctx, chat.ID, eve.ID)
	require.ErrorIs(t, err, ErrChatNotFound)

	_, err = repo.GetForUser(ctx, uuid.New().String(), alice.ID)
	require.ErrorIs(t, err, ErrChatNotFound)
}

func TestListMessagesOrderAndDeletionFilter(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	chat, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Now().Add(-time.Hour).UTC()
	mk := func(content, sender string, offset time.Duration, deleted bool) {
		require.NoError(t, repo.CreateMessage(ctx, &domain.Message{
			ChatID:    chat.ID,
			SenderID:  sender,
			Content:   content,
			IsDeleted: deleted,
			CreatedAt: base.Add(offset),
		}))
	}

	mk("second", bob.ID, 2*time.Minute, false)
	mk("first", alice.ID, 1*time.Minute, false)
	mk("hidden", alice.ID, 3*time.Minute, true)

	messages, err := repo.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "first", messages[0].Content)
	require.Equal(t, "second", messages[1].Content)

	latest, err := repo.LatestMessage(ctx, chat.ID)
	require.NoError(t, err)
	require.Equal(t, "second", latest.Content)
}

func TestLatestMessageEmptyChat(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	chat, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	latest, err := repo.LatestMessage(ctx, chat.ID)
	require.NoError(t, err)
	require.Nil(t, latest)

	messages, err := repo.ListMessages(ctx, chat.ID)
	require.NoError(t, err)
	require.Empty(t, messages)
}

func TestListForUserReturnsOwnChatsOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormChatRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	eve := createUser(t, db, "eve@example.com")

	ab, err := repo.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = repo.CreateOrGet(ctx, bob.ID, eve.ID)
	require.NoError(t, err)

	chats, err := repo.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, ab.ID, chats[0].ID)

	chats, err = repo.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)
}
