package validate

import (
	"errors"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name string `json:"name" binding:"required"`
	Bio  string `json:"bio" binding:"max=3"`
}

func TestFirstError(t *testing.T) {
	field, tag, ok := FirstError(binding.Validator.ValidateStruct(&sample{}))
	assert.True(t, ok)
	assert.Equal(t, "Name", field)
	assert.Equal(t, "required", tag)

	field, tag, ok = FirstError(binding.Validator.ValidateStruct(&sample{Name: "x", Bio: "long"}))
	assert.True(t, ok)
	assert.Equal(t, "Bio", field)
	assert.Equal(t, "max", tag)

	_, _, ok = FirstError(errors.New("unexpected EOF"))
	assert.False(t, ok)
	assert.NoError(t, binding.Validator.ValidateStruct(&sample{Name: "x", Bio: "ok"}))
}
