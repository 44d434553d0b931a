package models

import "strings"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleWriter Role = "WRITER"
	RoleReader Role = "READER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleWriter, RoleReader:
		return true
	}
	return false
}

// ParseRole normalizes case and whitespace; ok is false for anything outside the enum.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Social holds optional profile links.
type Social struct {
	Twitter  string `json:"twitter"  gorm:"column:twitter"`
	GitHub   string `json:"github"   gorm:"column:github"`
	LinkedIn string `json:"linkedin" gorm:"column:linkedin"`
}

type User struct {
	Base
	Email    string `json:"email"    gorm:"type:varchar(191);uniqueIndex;not null"`
	Password string `json:"-"        gorm:"not null"`
	Name     string `json:"name"     gorm:"type:varchar(100)"`
	Role     Role   `json:"role"     gorm:"type:varchar(16);not null;default:WRITER"`
	Blocked  bool   `json:"blocked"  gorm:"not null;default:false"`
	Avatar   string `json:"avatar"`
	Bio      string `json:"bio"      gorm:"type:text"`
	Social   Social `json:"social"   gorm:"embedded;embeddedPrefix:social_"`
}

func (User) TableName() string { return "users" }

// DisplayName falls back to "User" when no name was set at signup.
func (u *User) DisplayName() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return "User"
}
