package post

import "errors"

const maxTagLength = 64

var (
	errTitleRequired    = errors.New("title is required")
	errContentRequired  = errors.New("content is required")
	errCategoryRequired = errors.New("category is required")
	errCategoryNotFound = errors.New("category not found")
	errSlugConflict     = errors.New("slug already exists")
	errTagTooLong       = errors.New("tag too long")
	errForbidden        = errors.New("not the author")
	errPostNotFound     = errors.New("post not found")
	errInvalidBody      = errors.New("invalid request body")
)
