// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import (
	"errors"
	"syscall"
)

// Win32 error codes returned by ReadDirectoryChangesW once a watch is lost.
var brokenWatchErrnos = []syscall.Errno{
	4, // ERROR_TOO_MANY_OPEN_FILES
	6, // ERROR_INVALID_HANDLE: search path removed or unmounted
	8, // ERROR_NOT_ENOUGH_MEMORY
}

// watcherBroken reports whether err leaves the watcher unable to observe
// the search paths.
func watcherBroken(err error) bool {
	for _, errno := range brokenWatchErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
