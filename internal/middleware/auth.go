package middleware

import (
	"fmt"
	"net/http"
	"strings"

	userDto "anoa.com/skillswap/internal/modules/user/dto"
	userService "anoa.com/skillswap/internal/modules/user/service"
	"anoa.com/skillswap/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the token payload issued by the identity provider.
type SessionClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the caller once per request and stores the id under "user_id".
type AuthMiddleware struct {
	identity userService.IdentityService
	secret   []byte
}

func NewAuthMiddleware(identity userService.IdentityService, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
		secret:   []byte(secret),
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		session, err := m.parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		userID, err := m.identity.Resolve(c.Request.Context(), session)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}
		if userID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		setUser(c, *userID)
		c.Next()
	}
}

// OptionalAuth resolves the caller when a valid token is present and otherwise continues anonymously.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		session, err := m.parse(tokenString)
		if err != nil {
			c.Next()
			return
		}

		userID, err := m.identity.Resolve(c.Request.Context(), session)
		if err != nil {
			response.ResponseError(c, err)
			c.Abort()
			return
		}
		if userID != nil {
			setUser(c, *userID)
		}
		c.Next()
	}
}

func (m *AuthMiddleware) parse(tokenString string) (*userDto.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &userDto.Session{
		Subject:   claims.Subject,
		Email:     claims.Email,
		FullName:  claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, nil
}

// extractToken reads the bearer header, falling back to the "token" query
// parameter for WebSocket clients.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	return c.Query("token")
}

func setUser(c *gin.Context, userID uuid.UUID) {
	c.Set("user_id", userID.String())
}
