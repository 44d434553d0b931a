package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/blogd/blogd/internal/models"
)

type LoginDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      userSummary `json:"user"`
}

type userSummary struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	Avatar string      `json:"avatar"`
	Bio    string      `json:"bio"`
}

type sessionResponse struct {
	ID        string     `json:"id"`
	IP        string     `json:"ip"`
	UA        string     `json:"ua"`
	Current   bool       `json:"current"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt"`
	LastSeen  *time.Time `json:"lastSeenAt"`
}

var (
	errMissingCredentials = errors.New("email and password are required")
	errUserExists         = errors.New("user already exists")
	errInvalidCredentials = errors.New("invalid email or password")
	errUserBlocked        = errors.New("user is blocked")
)

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func summarize(u *models.User) userSummary {
	return userSummary{
		ID:     u.ID,
		Name:   u.DisplayName(),
		Email:  u.Email,
		Role:   u.Role,
		Avatar: u.Avatar,
		Bio:    u.Bio,
	}
}
