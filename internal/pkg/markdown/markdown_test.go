package markdown

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	html, err := Render("# Hello\n\nSome **bold** text with ~~strike~~.")
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hello</h1>")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, "<del>strike</del>")

	empty, err := Render("   ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRenderDropsRawHTML(t *testing.T) {
	html, err := Render("hi <script>alert(1)</script>")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestPlainText(t *testing.T) {
	src := "# Title\n\nFirst *para* here\nline two.\n\n```go\nfmt.Println(1)\n```\n\n![img](a.png) see https://example.com"
	got := PlainText(src)
	assert.Equal(t, "Title First para here line two. see https://example.com", got)
}

func TestExcerpt(t *testing.T) {
	short := Excerpt("Just a few words.", 50)
	assert.Equal(t, "Just a few words.", short)

	long := strings.Repeat("word ", 100)
	got := Excerpt(long, 40)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, utf8.RuneCountInString(got), 41)
	assert.NotContains(t, got, "wor…")
}
