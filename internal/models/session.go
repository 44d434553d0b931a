package models

import "time"

// Session backs one issued JWT. A token is only honoured while its row is
// neither revoked nor expired.
type Session struct {
	Base
	UserID     string     `json:"userId"     gorm:"type:char(36);index;not null"`
	IP         string     `json:"ip"`
	UA         string     `json:"ua"         gorm:"type:text"`
	ExpiresAt  time.Time  `json:"expiresAt"  gorm:"index;not null"`
	RevokedAt  *time.Time `json:"revokedAt"  gorm:"index"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
}

func (Session) TableName() string { return "sessions" }
