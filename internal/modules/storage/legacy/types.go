package legacy

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names of the document store this importer reads.
const (
	collUsers      = "users"
	collCategories = "categories"
	collTags       = "tags"
	collPosts      = "posts"
	collComments   = "comments"
	collLikes      = "likes"

	batchSize = 200
)

type legacyUser struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	Blocked   bool               `bson:"blocked"`
	Avatar    string             `bson:"avatar"`
	Bio       string             `bson:"bio"`
	Social    legacySocial       `bson:"social"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type legacySocial struct {
	Twitter  string `bson:"twitter"`
	GitHub   string `bson:"github"`
	LinkedIn string `bson:"linkedin"`
}

type legacyCategory struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Slug        string             `bson:"slug"`
	Description string             `bson:"description"`
	PostCount   int                `bson:"postCount"`
	IsActive    *bool              `bson:"isActive"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type legacyTag struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type legacyPost struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Title      string               `bson:"title"`
	Content    string               `bson:"content"`
	Excerpt    string               `bson:"excerpt"`
	Slug       string               `bson:"slug"`
	Published  bool                 `bson:"published"`
	Author     primitive.ObjectID   `bson:"author"`
	Category   primitive.ObjectID   `bson:"category"`
	Tags       []primitive.ObjectID `bson:"tags"`
	LikesCount int                  `bson:"likesCount"`
	CreatedAt  time.Time            `bson:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt"`
}

type legacyComment struct {
	ID     primitive.ObjectID `bson:"_id"`
	Author struct {
		ID     string `bson:"id"`
		Name   string `bson:"name"`
		Email  string `bson:"email"`
		Avatar string `bson:"avatar"`
	} `bson:"author"`
	Content   string    `bson:"content"`
	PostID    string    `bson:"postId"`
	IsEdited  bool      `bson:"isEdited"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type legacyLike struct {
	ID        primitive.ObjectID `bson:"_id"`
	PostID    primitive.ObjectID `bson:"postId"`
	UserID    primitive.ObjectID `bson:"userId"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// Report counts the rows written per table.
type Report struct {
	Users      int `json:"users"`
	Categories int `json:"categories"`
	Tags       int `json:"tags"`
	Posts      int `json:"posts"`
	PostTags   int `json:"postTags"`
	Comments   int `json:"comments"`
	Likes      int `json:"likes"`
}
