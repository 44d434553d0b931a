package category

import "errors"

type CreateCategoryDTO struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"max=200"`
}

type UpdateCategoryDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	IsActive    *bool   `json:"isActive"`
}

const maxDescriptionLength = 200

var (
	errNameRequired       = errors.New("category name is required")
	errCategoryExists     = errors.New("category already exists")
	errDescriptionTooLong = errors.New("description too long")
	errInvalidBody        = errors.New("invalid request body")
)
