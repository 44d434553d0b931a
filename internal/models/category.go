package models

type Category struct {
	Base
	Name        string `json:"name"        gorm:"type:varchar(100);uniqueIndex;not null"`
	Slug        string `json:"slug"        gorm:"type:varchar(120);uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:varchar(200)"`
	PostCount   int    `json:"postCount"   gorm:"not null;default:0"`
	IsActive    bool   `json:"isActive"    gorm:"not null;default:true"`
}

func (Category) TableName() string { return "categories" }
