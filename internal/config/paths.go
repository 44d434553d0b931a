package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveRuntimePath makes raw absolute, relative to the working directory.
// An empty raw falls back to fallbackSubdir.
func ResolveRuntimePath(raw string, fallbackSubdir string) string {
	target := strings.TrimSpace(raw)
	if target == "" {
		target = strings.TrimSpace(fallbackSubdir)
	}
	if target == "" || target == "-" {
		return target
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	wd, err := os.Getwd()
	if err != nil || strings.TrimSpace(wd) == "" {
		wd = "."
	}
	return filepath.Clean(filepath.Join(wd, target))
}
