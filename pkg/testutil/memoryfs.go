package testutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/arthur-debert/fstree/pkg/filesystem"
)

// maxLinkHops mirrors the kernel's symlink resolution limit.
const maxLinkHops = 40

// MemoryFS implements filesystem.FS with in-memory storage. Symlinks are
// resolved like the kernel does (intermediate components always, the last
// one only for Stat), every node has a stable inode number, and failures can
// be injected per path.
type MemoryFS struct {
	mu      sync.RWMutex
	root    *fileNode
	nextIno uint64

	// Error injection
	errorPaths map[string]error

	// Statistics
	readCount  int
	writeCount int
}

// fileNode represents a file, directory or symlink in memory
type fileNode struct {
	ino      uint64
	mode     os.FileMode
	modTime  time.Time
	content  []byte
	linkDest string
	children map[string]*fileNode
}

func (n *fileNode) isDir() bool  { return n.mode.IsDir() }
func (n *fileNode) isLink() bool { return n.mode&os.ModeSymlink != 0 }

// NewMemoryFS creates a new in-memory filesystem holding an empty root
func NewMemoryFS() *MemoryFS {
	m := &MemoryFS{errorPaths: make(map[string]error)}
	m.root = m.newNode(0755 | os.ModeDir)
	return m
}

var _ filesystem.FS = (*MemoryFS)(nil)
var _ filesystem.Identifier = (*MemoryFS)(nil)

func (m *MemoryFS) newNode(mode os.FileMode) *fileNode {
	m.nextIno++
	n := &fileNode{ino: m.nextIno, mode: mode, modTime: time.Now()}
	if mode.IsDir() {
		n.children = make(map[string]*fileNode)
	}
	return n
}

// normalizePath converts a path to absolute, cleaned form
func normalizePath(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join("/", path)
	}
	return filepath.Clean(path)
}

func pathErr(op, path string, err error) error {
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// injected returns the error configured for path, if any
func (m *MemoryFS) injected(op, path string) error {
	if err, ok := m.errorPaths[normalizePath(path)]; ok {
		return pathErr(op, path, err)
	}
	return nil
}

// resolve walks path from the root. Symlinks met on intermediate components
// are always followed; the last component is followed only when followLast.
func (m *MemoryFS) resolve(op, path string, followLast bool) (*fileNode, error) {
	return m.resolveHops(op, path, followLast, 0)
}

func (m *MemoryFS) resolveHops(op, path string, followLast bool, hops int) (*fileNode, error) {
	clean := normalizePath(path)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if clean == "/" {
		parts = nil
	}

	cur := m.root
	for i, part := range parts {
		if !cur.isDir() {
			return nil, pathErr(op, path, syscall.ENOTDIR)
		}
		child, ok := cur.children[part]
		if !ok {
			return nil, pathErr(op, path, fs.ErrNotExist)
		}
		last := i == len(parts)-1
		if child.isLink() && (!last || followLast) {
			if hops >= maxLinkHops {
				return nil, pathErr(op, path, syscall.ELOOP)
			}
			target := child.linkDest
			if !filepath.IsAbs(target) {
				target = filepath.Join("/", filepath.Join(parts[:i]...), target)
			}
			rest := append([]string{target}, parts[i+1:]...)
			return m.resolveHops(op, filepath.Join(rest...), followLast, hops+1)
		}
		cur = child
	}
	return cur, nil
}

// parentOf resolves the directory that holds path and returns it with the base name
func (m *MemoryFS) parentOf(op, path string) (*fileNode, string, error) {
	clean := normalizePath(path)
	if clean == "/" {
		return nil, "", pathErr(op, path, fs.ErrExist)
	}
	parent, err := m.resolve(op, filepath.Dir(clean), true)
	if err != nil {
		return nil, "", err
	}
	if !parent.isDir() {
		return nil, "", pathErr(op, path, syscall.ENOTDIR)
	}
	return parent, filepath.Base(clean), nil
}

// Stat returns file info, following symlinks
func (m *MemoryFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount++

	if err := m.injected("stat", name); err != nil {
		return nil, err
	}
	node, err := m.resolve("stat", name, true)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(normalizePath(name))}, nil
}

// Lstat returns file info without following a final symlink
func (m *MemoryFS) Lstat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount++

	if err := m.injected("lstat", name); err != nil {
		return nil, err
	}
	node, err := m.resolve("lstat", name, false)
	if err != nil {
		return nil, err
	}
	return &fileInfo{node: node, name: filepath.Base(normalizePath(name))}, nil
}

// ReadDir reads a directory and returns its entries sorted by name
func (m *MemoryFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount++

	if err := m.injected("readdir", name); err != nil {
		return nil, err
	}
	node, err := m.resolve("readdir", name, true)
	if err != nil {
		return nil, err
	}
	if !node.isDir() {
		return nil, pathErr("readdir", name, syscall.ENOTDIR)
	}

	entries := make([]fs.DirEntry, 0, len(node.children))
	for childName, child := range node.children {
		entries = append(entries, &dirEntry{info: &fileInfo{node: child, name: childName}})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Readlink returns the destination of a symbolic link
func (m *MemoryFS) Readlink(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCount++

	if err := m.injected("readlink", name); err != nil {
		return "", err
	}
	node, err := m.resolve("readlink", name, false)
	if err != nil {
		return "", err
	}
	if !node.isLink() {
		return "", pathErr("readlink", name, syscall.EINVAL)
	}
	return node.linkDest, nil
}

// Mkdir creates a single directory; the parent must exist
func (m *MemoryFS) Mkdir(name string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("mkdir", name); err != nil {
		return err
	}
	return m.mkdir(name, perm)
}

func (m *MemoryFS) mkdir(name string, perm fs.FileMode) error {
	parent, base, err := m.parentOf("mkdir", name)
	if err != nil {
		return err
	}
	if _, exists := parent.children[base]; exists {
		return pathErr("mkdir", name, fs.ErrExist)
	}
	parent.children[base] = m.newNode(perm.Perm() | os.ModeDir)
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (m *MemoryFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("mkdir", path); err != nil {
		return err
	}

	clean := normalizePath(path)
	current := "/"
	for _, part := range strings.Split(strings.TrimPrefix(clean, "/"), "/") {
		if part == "" {
			continue
		}
		current = filepath.Join(current, part)
		node, err := m.resolve("mkdir", current, true)
		if err == nil {
			if !node.isDir() {
				return pathErr("mkdir", current, syscall.ENOTDIR)
			}
			continue
		}
		if err := m.mkdir(current, perm); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes data to a file, creating it if necessary; the parent must exist
func (m *MemoryFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("open", name); err != nil {
		return err
	}

	if node, err := m.resolve("open", name, true); err == nil {
		if node.isDir() {
			return pathErr("open", name, syscall.EISDIR)
		}
		node.content = append([]byte(nil), data...)
		node.modTime = time.Now()
		return nil
	}

	parent, base, err := m.parentOf("open", name)
	if err != nil {
		return err
	}
	node := m.newNode(perm.Perm())
	node.content = append([]byte(nil), data...)
	parent.children[base] = node
	return nil
}

// Symlink creates a symbolic link at newname pointing to oldname
func (m *MemoryFS) Symlink(oldname, newname string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("symlink", newname); err != nil {
		return err
	}
	parent, base, err := m.parentOf("symlink", newname)
	if err != nil {
		return err
	}
	if _, exists := parent.children[base]; exists {
		return pathErr("symlink", newname, fs.ErrExist)
	}
	node := m.newNode(0777 | os.ModeSymlink)
	node.linkDest = oldname
	parent.children[base] = node
	return nil
}

// Remove removes a file, symlink or empty directory
func (m *MemoryFS) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("remove", name); err != nil {
		return err
	}
	parent, base, err := m.parentOf("remove", name)
	if err != nil {
		return err
	}
	node, ok := parent.children[base]
	if !ok {
		return pathErr("remove", name, fs.ErrNotExist)
	}
	if node.isDir() && len(node.children) > 0 {
		return pathErr("remove", name, syscall.ENOTEMPTY)
	}
	delete(parent.children, base)
	return nil
}

// RemoveAll removes a path and everything below it; a missing path is not an error
func (m *MemoryFS) RemoveAll(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCount++

	if err := m.injected("remove", path); err != nil {
		return err
	}
	parent, base, err := m.parentOf("remove", path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	delete(parent.children, base)
	return nil
}

// Identity implements filesystem.Identifier
func (m *MemoryFS) Identity(info fs.FileInfo) (filesystem.FileID, bool) {
	fi, ok := info.(*fileInfo)
	if !ok {
		return filesystem.FileID{}, false
	}
	return filesystem.FileID{Dev: 1, Ino: fi.node.ino}, true
}

// WithError configures the filesystem to return err for any operation on path
func (m *MemoryFS) WithError(path string, err error) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.errorPaths[normalizePath(path)] = err
	return m
}

// Stats returns filesystem operation statistics
func (m *MemoryFS) Stats() (reads, writes int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readCount, m.writeCount
}

// fileInfo implements fs.FileInfo
type fileInfo struct {
	node *fileNode
	name string
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return int64(len(fi.node.content)) }
func (fi *fileInfo) Mode() os.FileMode  { return fi.node.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.node.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.node.isDir() }
func (fi *fileInfo) Sys() interface{}   { return fi.node }

// dirEntry implements fs.DirEntry
type dirEntry struct {
	info *fileInfo
}

func (de *dirEntry) Name() string               { return de.info.name }
func (de *dirEntry) IsDir() bool                { return de.info.IsDir() }
func (de *dirEntry) Type() os.FileMode          { return de.info.Mode().Type() }
func (de *dirEntry) Info() (os.FileInfo, error) { return de.info, nil }
