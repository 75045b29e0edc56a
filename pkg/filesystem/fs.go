package filesystem

import (
	"io/fs"
)

// FS is the filesystem interface required for reading and writing trees
type FS interface {
	// Classification
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)

	// Directory operations
	ReadDir(name string) ([]fs.DirEntry, error)
	Mkdir(name string, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error

	// File operations
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Removal
	Remove(name string) error
	RemoveAll(path string) error
}

// FileID identifies a filesystem object independently of the path used to
// reach it.
type FileID struct {
	Dev uint64
	Ino uint64
}

// IdentityFunc extracts a FileID from a FileInfo.
type IdentityFunc func(fs.FileInfo) (FileID, bool)

// Identifier is implemented by filesystems whose FileInfo values carry an
// identity that Identity cannot decode.
type Identifier interface {
	Identity(fs.FileInfo) (FileID, bool)
}

// IdentityOf returns the identity of info as seen by fsys.
func IdentityOf(fsys FS, info fs.FileInfo) (FileID, bool) {
	if id, ok := fsys.(Identifier); ok {
		return id.Identity(info)
	}
	return Identity(info)
}
