package slug

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory(t *testing.T) {
	cases := map[string]string{
		"Tech News":            "tech-news",
		"  Go   Tips  ":        "go-tips",
		"C++ & Rust!":          "c-rust",
		"a -- b":               "a-b",
		"--Leading/Trailing--": "leadingtrailing",
		"Ünïcödé":              "ncd",
		"!!!":                  "category",
		"":                     "category",
	}
	for in, want := range cases {
		assert.Equal(t, want, Category(in), in)
	}
}

func TestCategoryShape(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	inputs := []string{
		"Tech News", "Hello, World", "  x  ", "Mixed CASE 123", "tabs\tand\nnewlines",
		"dash-dash--dash", "emoji 🚀 launch", "中文 分类", "- - -", "UPPER-lower",
	}
	for _, in := range inputs {
		got := Category(in)
		assert.Regexp(t, valid, got, in)
		assert.Equal(t, strings.ToLower(got), got)
		assert.NotContains(t, got, "--")
	}
}

func TestPost(t *testing.T) {
	assert.Equal(t, "hello-world", Post("Hello World"))
	assert.Equal(t, "whats-new-in-go-122", Post("What's new in Go 1.22?"))
	assert.Equal(t, "你好-世界", Post("你好 世界"))
	assert.Equal(t, "post", Post("???"))
}

func TestUnique(t *testing.T) {
	used := map[string]bool{"hello": true, "hello-2": true}
	got, err := Unique("hello", func(c string) (bool, error) { return used[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "hello-3", got)

	got, err = Unique("fresh", func(c string) (bool, error) { return used[c], nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)

	boom := errors.New("db down")
	_, err = Unique("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}
