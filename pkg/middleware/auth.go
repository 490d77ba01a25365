package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abduqodir7007/twitter-clone/pkg/jwt"
)

const (
	UserIDKey     = "user_id"
	EmailKey      = "email"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthMiddleware validates bearer tokens with a local jwt.Manager.
type AuthMiddleware struct {
	tokens *jwt.Manager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *jwt.Manager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireAuth returns a Gin middleware that rejects requests without a
// valid access token and stores the actor's identity in the context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid authorization format",
			})
			return
		}

		claims, err := m.tokens.ValidateAccessToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)

		c.Next()
	}
}

// GetUserID extracts the authenticated user's id from the Gin context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(UserIDKey); exists {
		return id.(string)
	}
	return ""
}

// GetEmail extracts the authenticated user's email from the Gin context.
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get(EmailKey); exists {
		return email.(string)
	}
	return ""
}
