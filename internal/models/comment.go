package models

// CommentAuthor is a snapshot of the commenter taken at write time.
// Later profile edits do not reach existing comments.
type CommentAuthor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type Comment struct {
	Base
	Content  string        `json:"content"  gorm:"type:text;not null"`
	Author   CommentAuthor `json:"author"   gorm:"type:text;serializer:json"`
	PostID   string        `json:"postId"   gorm:"type:varchar(64);index;not null"`
	IsEdited bool          `json:"isEdited" gorm:"not null;default:false"`
}

func (Comment) TableName() string { return "comments" }
