//go:build linux

package proctitle

import (
	"errors"
	"os"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Linux truncates comm names to 15 bytes.
const maxComm = 15

// Set renames the process as shown by ps/top.
func Set(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return errors.New("empty process title")
	}
	if len(os.Args) > 0 {
		os.Args[0] = title
	}

	buf := make([]byte, maxComm+1)
	copy(buf, title)
	return unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(&buf[0])), 0, 0, 0)
}
