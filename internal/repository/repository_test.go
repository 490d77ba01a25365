package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Abduqodir7007/twitter-clone/internal/domain"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection so every session sees the same in-memory database.
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

// createUser inserts a user with a generated id and returns it.
func createUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()

	u := &domain.User{
		ID:             uuid.New().String(),
		FirstName:      "test",
		LastName:       "user",
		Email:          email,
		HashedPassword: "x",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}
