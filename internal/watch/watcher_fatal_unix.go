// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"syscall"
)

// watcherBroken reports whether err means inotify ran out of watches or
// descriptors. Watch mode stops on such errors instead of relinking against
// a partially watched node_modules tree.
func watcherBroken(err error) bool {
	for _, errno := range []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
