package session

import (
	"strings"
	"time"

	"github.com/blogd/blogd/internal/models"
	jwtpkg "github.com/blogd/blogd/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 2 * time.Hour

// Issued is a freshly signed token plus the session row behind it.
type Issued struct {
	Token     string
	ExpiresAt time.Time
	Session   *models.Session
}

// Issue creates a DB session and signs a token bound to it.
func Issue(db *gorm.DB, user *models.User, ip, ua string, ttl time.Duration) (*Issued, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.Session{
		UserID:    user.ID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.Create(s).Error; err != nil {
		return nil, err
	}

	token, exp, err := jwtpkg.Sign(jwtpkg.Identity{
		UserID:    user.ID,
		SessionID: s.ID,
		Name:      user.DisplayName(),
		Email:     user.Email,
		Role:      string(user.Role),
		Avatar:    user.Avatar,
	}, ttl)
	if err != nil {
		_ = db.Delete(s).Error
		return nil, err
	}
	return &Issued{Token: token, ExpiresAt: exp, Session: s}, nil
}

func IsActive(db *gorm.DB, userID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func Touch(db *gorm.DB, userID, sessionID string) {
	now := time.Now()
	_ = db.Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("last_seen_at", &now).Error
}

func ListActive(db *gorm.DB, userID string) ([]models.Session, error) {
	var sessions []models.Session
	err := db.Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func Revoke(db *gorm.DB, userID, sessionID string) error {
	now := time.Now()
	res := db.Model(&models.Session{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RevokeAll revokes every live session of the user and returns how many.
func RevokeAll(db *gorm.DB, userID string) (int64, error) {
	now := time.Now()
	res := db.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", &now)
	return res.RowsAffected, res.Error
}

// Purge hard-deletes sessions that expired, or were revoked, before cutoff.
func Purge(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Where("expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)", cutoff, cutoff).
		Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
