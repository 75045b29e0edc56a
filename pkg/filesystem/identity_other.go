//go:build !unix

package filesystem

import "io/fs"

// Identity is unavailable outside Unix; cycle detection then relies on the
// operating system's own loop limit.
func Identity(info fs.FileInfo) (FileID, bool) {
	return FileID{}, false
}
