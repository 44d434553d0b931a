package middleware

import (
	"errors"
	"strings"

	"github.com/blogd/blogd/internal/models"
	"github.com/blogd/blogd/internal/pkg/jwt"
	"github.com/blogd/blogd/internal/pkg/response"
	sessionpkg "github.com/blogd/blogd/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextKeyIdentity = "identity"
	TokenCookie        = "token"

	msgNotAuthenticated = "User not authenticated"
)

var errNoToken = errors.New("token is required")

// Identity is the per-request view of a verified session token.
type Identity struct {
	UserID    string `json:"id"`
	SessionID string `json:"-"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && models.Role(i.Role) == models.RoleAdmin
}

// OptionalAuth attaches the identity when a valid token is present and never blocks.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := ValidateTokenClaims(db, extractToken(c)); err == nil {
			c.Set(ContextKeyIdentity, identityFromClaims(claims))
			sessionpkg.Touch(db, claims.UserID, claims.SessionID)
		}
		c.Next()
	}
}

// Auth rejects the request with 401 unless OptionalAuth found an identity.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentIdentity(c) == nil {
			response.Unauthorized(c, msgNotAuthenticated)
			return
		}
		c.Next()
	}
}

// RequireAdmin answers 401 for anonymous callers and for any role but ADMIN.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentIdentity(c).IsAdmin() {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		c.Next()
	}
}

// ValidateTokenClaims checks signature, expiry and that the backing session is live.
func ValidateTokenClaims(db *gorm.DB, rawToken string) (*jwt.Claims, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, errNoToken
	}

	claims, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := sessionpkg.IsActive(db, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, errors.New("session expired or revoked")
	}
	return claims, nil
}

// CurrentIdentity returns the request identity or nil.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(ContextKeyIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

// CurrentUserID returns the authenticated user id, or "".
func CurrentUserID(c *gin.Context) string {
	if id := CurrentIdentity(c); id != nil {
		return id.UserID
	}
	return ""
}

func identityFromClaims(claims *jwt.Claims) *Identity {
	return &Identity{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		Avatar:    claims.Avatar,
	}
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return NormalizeToken(cookie)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips an optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
