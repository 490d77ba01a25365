package domain

import "time"

// User is the GORM model for the users table.
type User struct {
	ID             string    `gorm:"type:varchar(36);primaryKey"`
	FirstName      string    `gorm:"type:varchar(100);not null"`
	LastName       string    `gorm:"type:varchar(100);not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	HashedPassword string    `gorm:"type:varchar(255);not null"`
	ImagePath      *string   `gorm:"type:varchar(512)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Follow is the GORM model for the self-referential followers edge table.
type Follow struct {
	FollowerID string    `gorm:"type:varchar(36);primaryKey"`
	FolloweeID string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (Follow) TableName() string { return "followers" }

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=3,max=25"`
	LastName  string `json:"last_name" binding:"required,min=3,max=25"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents a token refresh request.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries an issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// UserInfo is the embedded user shape used inside chat and post payloads.
type UserInfo struct {
	ID        *string `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	ImagePath *string `json:"image_path"`
}

// NewUserInfo builds a UserInfo, tolerating a missing user the way the
// API always has (placeholder identity instead of an error).
func NewUserInfo(u *User) UserInfo {
	if u == nil {
		return UserInfo{FirstName: "Unknown", LastName: "User"}
	}
	id := u.ID
	return UserInfo{
		ID:        &id,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ImagePath: u.ImagePath,
	}
}

// ProfileResponse is the current user's profile with aggregate counts.
type ProfileResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	ImagePath *string `json:"image_path"`
	PostCount int64   `json:"post_count"`
	Followers int64   `json:"followers"`
	Following int64   `json:"following"`
}

// FollowSuggestion is one entry of the who-to-follow listing.
type FollowSuggestion struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	ImagePath   *string `json:"image_path"`
	IsFollowing bool    `json:"is_following"`
}
