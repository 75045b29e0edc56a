//go:build unix

package filesystem

import (
	"io/fs"
	"syscall"
)

// Identity returns the (device, inode) pair behind info.
func Identity(info fs.FileInfo) (FileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return FileID{}, false
	}
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, true
}
