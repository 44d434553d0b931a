package models

type Post struct {
	Base
	Title      string    `json:"title"              gorm:"not null"`
	Slug       string    `json:"slug"               gorm:"type:varchar(191);uniqueIndex;not null"`
	Content    string    `json:"content"            gorm:"type:longtext"`
	Excerpt    string    `json:"excerpt"            gorm:"type:text"`
	Published  bool      `json:"published"          gorm:"index;not null;default:false"`
	AuthorID   string    `json:"authorId"           gorm:"type:char(36);index;not null"`
	Author     *User     `json:"author,omitempty"   gorm:"foreignKey:AuthorID"`
	CategoryID string    `json:"categoryId"         gorm:"type:char(36);index;not null"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	LikesCount int       `json:"likesCount"         gorm:"not null;default:0"`
	Tags       []Tag     `json:"tags"               gorm:"many2many:post_tags"`
}

func (Post) TableName() string { return "posts" }

// Like records one user's like of one post. The composite unique index
// is what stops a double like from landing twice.
type Like struct {
	Base
	PostID string `json:"postId" gorm:"type:char(36);not null;uniqueIndex:idx_likes_post_user,priority:1"`
	UserID string `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_likes_post_user,priority:2;index"`
}

func (Like) TableName() string { return "likes" }

type Tag struct {
	Base
	Name  string `json:"name"            gorm:"type:varchar(64);uniqueIndex;not null"`
	Posts []Post `json:"posts,omitempty" gorm:"many2many:post_tags"`
}

func (Tag) TableName() string { return "tags" }
