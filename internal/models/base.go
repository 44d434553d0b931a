package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is embedded by every table. Deletes are physical, so there is no DeletedAt.
type Base struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// All returns every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Tag{},
		&Post{},
		&Comment{},
		&Like{},
		&Session{},
	}
}
