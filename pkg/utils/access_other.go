//go:build !unix

package utils

import "os"

func writable(path string) bool {
	f, err := os.CreateTemp(path, ".listsync-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	return os.Remove(name) == nil
}
