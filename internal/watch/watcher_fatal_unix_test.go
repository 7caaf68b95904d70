// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"fmt"
	"syscall"
	"testing"
)

func TestWatcherBroken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "ENOSPC breaks the watcher", err: syscall.ENOSPC, want: true},
		{name: "EMFILE breaks the watcher", err: syscall.EMFILE, want: true},
		{name: "ENFILE breaks the watcher", err: syscall.ENFILE, want: true},
		{name: "wrapped ENOSPC breaks the watcher", err: fmt.Errorf("fsnotify: %w", syscall.ENOSPC), want: true},
		{name: "EPERM is recoverable", err: syscall.EPERM, want: false},
		{name: "EACCES is recoverable", err: syscall.EACCES, want: false},
		{name: "generic error is recoverable", err: fmt.Errorf("something went wrong"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := watcherBroken(tt.err); got != tt.want {
				t.Errorf("watcherBroken(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
