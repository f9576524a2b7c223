//go:build unix

package utils

import "golang.org/x/sys/unix"

func writable(path string) bool {
	return unix.Access(path, unix.W_OK|unix.X_OK) == nil
}
