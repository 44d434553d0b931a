package user

import (
	"errors"
	"time"

	"github.com/blogd/blogd/internal/models"
)

type UpdateProfileDTO struct {
	Name   *string        `json:"name"`
	Bio    *string        `json:"bio"`
	Avatar *string        `json:"avatar"`
	Social *models.Social `json:"social"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword" binding:"min=6"`
}

type UpdateRoleDTO struct {
	UserID  string `json:"userId" binding:"required"`
	NewRole string `json:"newRole" binding:"required"`
}

type DeleteUserDTO struct {
	UserID string `json:"userId" binding:"required"`
}

type BlockDTO struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

type profileResponse struct {
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Bio    string        `json:"bio"`
	Avatar string        `json:"avatar"`
	Role   models.Role   `json:"role"`
	Social models.Social `json:"social"`
}

// adminUserRow is the only projection admins see; the hash is never selected.
type adminUserRow struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Blocked   bool        `json:"blocked"`
	CreatedAt time.Time   `json:"createdAt"`
}

const minPasswordLength = 6

var (
	errInvalidRole   = errors.New("invalid role")
	errWrongPassword = errors.New("wrong password")
	errWeakPassword  = errors.New("password too short")
	errEmptyName     = errors.New("name cannot be empty")
)

func toProfile(u *models.User) profileResponse {
	return profileResponse{
		Name:   u.DisplayName(),
		Email:  u.Email,
		Bio:    u.Bio,
		Avatar: u.Avatar,
		Role:   u.Role,
		Social: u.Social,
	}
}
