package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

const defaultSecret = "blogd-secret-change-me"

var secret = []byte(defaultSecret)

var ErrInvalidToken = errors.New("invalid token")

// SetSecret configures the signing secret (call on startup).
func SetSecret(s string) {
	if s != "" {
		secret = []byte(s)
	}
}

// Claims is the token payload. Identity fields ride along so a request
// can be served without loading the user row.
type Claims struct {
	UserID    string `json:"uid"`
	SessionID string `json:"sid,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Avatar    string `json:"avatar,omitempty"`
	jwtlib.RegisteredClaims
}

// Identity is the subset of Claims a caller fills when signing.
type Identity struct {
	UserID    string
	SessionID string
	Name      string
	Email     string
	Role      string
	Avatar    string
}

// Sign creates an HS256 token for the identity, valid for ttl.
func Sign(id Identity, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID:    id.UserID,
		SessionID: id.SessionID,
		Name:      id.Name,
		Email:     id.Email,
		Role:      id.Role,
		Avatar:    id.Avatar,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   id.UserID,
			ID:        id.SessionID,
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates a token string and returns the claims.
func Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
