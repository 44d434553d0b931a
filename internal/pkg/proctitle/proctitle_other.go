//go:build !linux

package proctitle

import (
	"os"
	"strings"
)

// Set only rewrites os.Args outside Linux.
func Set(title string) error {
	if title = strings.TrimSpace(title); title != "" && len(os.Args) > 0 {
		os.Args[0] = title
	}
	return nil
}
