package comment

import (
	"errors"

	"github.com/blogd/blogd/internal/models"
)

type CreateCommentDTO struct {
	Content string `json:"content" binding:"required,max=1000"`
	PostID  string `json:"postId" binding:"required"`
}

type UpdateCommentDTO struct {
	Content string `json:"content" binding:"required,max=1000"`
}

const maxContentLength = 1000

// deletedPostTitle stands in for the title of a post that no longer exists.
const deletedPostTitle = "[DELETED POST]"

type postRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

// adminComment is a comment plus the post it hangs off.
type adminComment struct {
	models.Comment
	Post postRef `json:"post"`
}

var (
	errContentRequired = errors.New("content is required")
	errContentTooLong  = errors.New("content too long")
	errForbidden       = errors.New("not the comment author")
)
