package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Type   string `json:"type"` // "access" or "refresh"
}

// Manager signs and validates HMAC tokens.
type Manager struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	issuer          string
}

// NewManager creates a new JWT manager.
func NewManager(secret string, accessDuration, refreshDuration time.Duration, issuer string) *Manager {
	return &Manager{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		issuer:          issuer,
	}
}

// GenerateTokenPair creates access and refresh tokens for a user.
func (m *Manager) GenerateTokenPair(userID, email string) (accessToken, refreshToken string, err error) {
	accessToken, err = m.sign(userID, email, TypeAccess, m.accessDuration)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = m.sign(userID, email, TypeRefresh, m.refreshDuration)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateAccessToken validates a token and requires it to be an access token.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := m.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokens creates a new token pair from a valid refresh token.
func (m *Manager) RefreshTokens(refreshTokenString string) (accessToken, refreshToken string, err error) {
	claims, err := m.ValidateToken(refreshTokenString)
	if err != nil {
		return "", "", err
	}

	if claims.Type != TypeRefresh {
		return "", "", ErrInvalidToken
	}

	return m.GenerateTokenPair(claims.UserID, claims.Email)
}

func (m *Manager) sign(userID, email, typ string, dur time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(dur)),
		},
		UserID: userID,
		Email:  email,
		Type:   typ,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
