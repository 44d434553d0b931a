package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blogd/blogd/internal/models"
	sessionpkg "github.com/blogd/blogd/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpdateProfile applies only the fields present in dto.
func (s *Service) UpdateProfile(ctx context.Context, id string, dto *UpdateProfileDTO) (*models.User, error) {
	updates := map[string]interface{}{}
	if dto.Name != nil {
		name := strings.TrimSpace(*dto.Name)
		if name == "" {
			return nil, errEmptyName
		}
		updates["name"] = name
	}
	if dto.Bio != nil {
		updates["bio"] = strings.TrimSpace(*dto.Bio)
	}
	if dto.Avatar != nil {
		updates["avatar"] = strings.TrimSpace(*dto.Avatar)
	}
	if dto.Social != nil {
		updates["social_twitter"] = strings.TrimSpace(dto.Social.Twitter)
		updates["social_github"] = strings.TrimSpace(dto.Social.GitHub)
		updates["social_linkedin"] = strings.TrimSpace(dto.Social.LinkedIn)
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return s.GetByID(ctx, id)
}

// ChangePassword swaps the hash and revokes every other session of the user.
func (s *Service) ChangePassword(ctx context.Context, id, keepSessionID string, dto *ChangePasswordDTO) error {
	if len(dto.NewPassword) < minPasswordLength {
		return errWeakPassword
	}
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return gorm.ErrRecordNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(dto.OldPassword)); err != nil {
		return errWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", id).Update("password", string(hash)).Error; err != nil {
			return err
		}
		now := time.Now()
		return tx.Model(&models.Session{}).
			Where("user_id = ? AND id <> ? AND revoked_at IS NULL", id, keepSessionID).
			Update("revoked_at", &now).Error
	})
}

func (s *Service) List(ctx context.Context) ([]adminUserRow, error) {
	var rows []adminUserRow
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Select("id", "name", "email", "role", "blocked", "created_at").
		Order("created_at DESC").
		Scan(&rows).Error
	return rows, err
}

// UpdateRole returns (nil, nil) when the user does not exist. A changed role
// revokes every live session, since tokens carry the role they were signed with.
func (s *Service) UpdateRole(ctx context.Context, id, rawRole string) (*models.User, error) {
	role, ok := models.ParseRole(rawRole)
	if !ok {
		return nil, errInvalidRole
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.User
		if err := tx.Select("id", "role").First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if current.Role == role {
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", id).Update("role", role).Error; err != nil {
			return err
		}
		_, err := sessionpkg.RevokeAll(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes the user and their sessions. Posts, comments and likes stay.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		found = res.RowsAffected > 0
		if !found {
			return nil
		}
		return tx.Where("user_id = ?", id).Delete(&models.Session{}).Error
	})
	return found, err
}

// SetBlocked flips the flag; blocking also revokes all live sessions.
func (s *Service) SetBlocked(ctx context.Context, id string, blocked bool) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		found = true
		if err := tx.Model(&models.User{}).Where("id = ?", id).Update("blocked", blocked).Error; err != nil {
			return err
		}
		if !blocked {
			return nil
		}
		_, err := sessionpkg.RevokeAll(tx, id)
		return err
	})
	return found, err
}
