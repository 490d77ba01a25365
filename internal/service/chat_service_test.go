package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
	"github.com/Abduqodir7007/twitter-clone/internal/repository"
)

// fakeDispatcher records every fan-out instead of touching sockets.
type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []dispatchCall
	broadcasts [][]byte
}

type dispatchCall struct {
	room    string
	payload []byte
}

func (f *fakeDispatcher) Dispatch(roomID string, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, dispatchCall{room: roomID, payload: payload})
}

func (f *fakeDispatcher) Broadcast(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, payload)
}

func (f *fakeDispatcher) calls() []dispatchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatchCall(nil), f.dispatched...)
}

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.PostLike{},
		&domain.PostReply{},
		&domain.ReplyLike{},
		&domain.Chat{},
		&domain.Message{},
	))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, first, email string) *domain.User {
	t.Helper()

	u := &domain.User{
		ID:             uuid.New().String(),
		FirstName:      first,
		LastName:       "test",
		Email:          email,
		HashedPassword: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func newChatServiceUnderTest(t *testing.T) (ChatService, *gorm.DB, *fakeDispatcher) {
	t.Helper()

	db := newServiceTestDB(t)
	dispatcher := &fakeDispatcher{}
	svc := NewChatService(
		repository.NewGormChatRepository(db),
		repository.NewGormUserRepository(db),
		dispatcher,
	)
	return svc, db, dispatcher
}

func TestSendPersistsAndDispatches(t *testing.T) {
	svc, db, dispatcher := newChatServiceUnderTest(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")

	chat, err := svc.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	sent, err := svc.Send(ctx, chat.ID, alice.ID, "hello bob")
	require.NoError(t, err)
	require.NotEmpty(t, sent.ID)
	require.True(t, sent.IsOwn)
	require.Equal(t, alice.ID, sent.SenderID)

	calls := dispatcher.calls()
	require.Len(t, calls, 1)
	require.Equal(t, chat.ID, calls[0].room)

	var event domain.MessageEvent
	require.NoError(t, json.Unmarshal(calls[0].payload, &event))
	require.Equal(t, domain.EventNewMessage, event.Type)
	require.Equal(t, sent.ID, event.Message.ID)
	require.Equal(t, "hello bob", event.Message.Content)
	require.Equal(t, alice.ID, event.Message.SenderID)
	require.Equal(t, "alice", event.Message.Sender.FirstName)

	// The pushed payload carries no per-recipient ownership flag.
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(calls[0].payload, &raw))
	var msgFields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["message"], &msgFields))
	require.NotContains(t, msgFields, "is_own")
}

func TestSendThenHistoryRoundTrip(t *testing.T) {
	svc, db, _ := newChatServiceUnderTest(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")

	chat, err := svc.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, chat.ID, alice.ID, "hi")
	require.NoError(t, err)
	_, err = svc.Send(ctx, chat.ID, bob.ID, "hey back")
	require.NoError(t, err)

	history, err := svc.History(ctx, chat.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "hi", history[0].Content)
	require.True(t, history[0].IsOwn)
	require.Equal(t, "hey back", history[1].Content)
	require.False(t, history[1].IsOwn)

	// The same history viewed by the other participant flips ownership.
	history, err = svc.History(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, history[0].IsOwn)
	require.True(t, history[1].IsOwn)
}

func TestSendToForeignChatIsRejected(t *testing.T) {
	svc, db, dispatcher := newChatServiceUnderTest(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	eve := seedUser(t, db, "eve", "eve@example.com")

	chat, err := svc.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, chat.ID, eve.ID, "let me in")
	require.ErrorIs(t, err, repository.ErrChatNotFound)
	require.Empty(t, dispatcher.calls())

	_, err = svc.History(ctx, chat.ID, eve.ID)
	require.ErrorIs(t, err, repository.ErrChatNotFound)
}

func TestCreateOrGetUnknownRecipient(t *testing.T) {
	svc, db, _ := newChatServiceUnderTest(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")

	_, err := svc.CreateOrGet(ctx, alice.ID, uuid.New().String())
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestListChatsIncludesPreview(t *testing.T) {
	svc, db, _ := newChatServiceUnderTest(t)
	ctx := context.Background()

	alice := seedUser(t, db, "alice", "alice@example.com")
	bob := seedUser(t, db, "bob", "bob@example.com")
	eve := seedUser(t, db, "eve", "eve@example.com")

	withBob, err := svc.CreateOrGet(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.CreateOrGet(ctx, alice.ID, eve.ID)
	require.NoError(t, err)

	_, err = svc.Send(ctx, withBob.ID, bob.ID, "latest from bob")
	require.NoError(t, err)

	chats, err := svc.ListChats(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	byID := make(map[string]domain.ChatSummary, len(chats))
	for _, c := range chats {
		byID[c.ID] = c
	}

	require.Equal(t, "bob", byID[withBob.ID].OtherUser.FirstName)
	require.NotNil(t, byID[withBob.ID].LastMessage)
	require.Equal(t, "latest from bob", byID[withBob.ID].LastMessage.Content)
	require.Equal(t, bob.ID, byID[withBob.ID].LastMessage.SenderID)

	for id, c := range byID {
		if id != withBob.ID {
			require.Nil(t, c.LastMessage, "empty chat has no preview")
		}
	}
}
