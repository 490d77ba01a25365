package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

func TestUserCreateAndLookup(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := &domain.User{
		FirstName:      "alice",
		LastName:       "smith",
		Email:          "alice@example.com",
		HashedPassword: "hash",
	}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, uuid.New().String())
	require.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{
		FirstName:      "alice",
		LastName:       "smith",
		Email:          "alice@example.com",
		HashedPassword: "hash",
	}))

	err := repo.Create(ctx, &domain.User{
		FirstName:      "other",
		LastName:       "person",
		Email:          "alice@example.com",
		HashedPassword: "hash",
	})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestUserUpdateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "alice@example.com")
	u.FirstName = "renamed"

	require.NoError(t, repo.Update(ctx, u))

	// Resubmitting the same values changes no rows; that is not an error.
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", got.FirstName)
}

func TestUserGetByIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")

	users, err := repo.GetByIDs(ctx, []string{alice.ID, bob.ID, uuid.New().String()})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice@example.com", users[alice.ID].Email)
	require.Equal(t, "bob@example.com", users[bob.ID].Email)
}

func TestFollowGraph(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	eve := createUser(t, db, "eve@example.com")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	// Following twice is not an error and leaves one edge.
	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, repo.Follow(ctx, eve.ID, bob.ID))

	following, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, following)

	followers, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, followers)

	followingCount, err := repo.CountFollowing(ctx, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, followingCount)

	require.NoError(t, repo.Unfollow(ctx, alice.ID, bob.ID))
	following, err = repo.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, following)
}

func TestListSuggestionsAnnotatesFollowState(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFollowRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice@example.com")
	bob := createUser(t, db, "bob@example.com")
	eve := createUser(t, db, "eve@example.com")

	require.NoError(t, repo.Follow(ctx, alice.ID, bob.ID))

	suggestions, err := repo.ListSuggestions(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	byID := make(map[string]domain.FollowSuggestion, len(suggestions))
	for _, s := range suggestions {
		require.NotEqual(t, alice.ID, s.ID, "the requester is never suggested")
		byID[s.ID] = s
	}
	require.True(t, byID[bob.ID].IsFollowing)
	require.False(t, byID[eve.ID].IsFollowing)
}
