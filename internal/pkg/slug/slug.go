// Package slug derives URL slugs for categories and posts.
package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	categoryStrip = regexp.MustCompile(`[^a-z0-9 -]`)
	whitespace    = regexp.MustCompile(`\s+`)
	hyphens       = regexp.MustCompile(`-+`)
)

// Category lowercases name, keeps only [a-z0-9 -], turns whitespace into
// hyphens and collapses hyphen runs. The result is never empty.
func Category(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = categoryStrip.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "category"
	}
	return s
}

// Post lowercases title and joins words with hyphens. Letters and digits
// of any script survive; other punctuation is dropped.
func Post(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = whitespace.ReplaceAllString(s, "-")
	s = strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
	s = hyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "post"
	}
	return s
}

// Unique returns base, or base-2, base-3, ... whichever taken reports free first.
func Unique(base string, taken func(candidate string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
		if i > 1000 {
			return "", fmt.Errorf("slug %q: no free suffix", base)
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
