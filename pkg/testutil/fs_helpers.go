package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/fstree/pkg/filesystem"
)

// CreateFileT creates an empty file in fsys, creating parent directories as needed
func CreateFileT(t *testing.T, fsys filesystem.FS, path string) {
	t.Helper()

	dir := filepath.Dir(path)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", path, err)
	}

	if err := fsys.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
}

// CreateDirT creates a directory in fsys
func CreateDirT(t *testing.T, fsys filesystem.FS, path string) {
	t.Helper()

	if err := fsys.MkdirAll(path, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", path, err)
	}
}

// CreateSymlinkT creates a symlink at link pointing to target in fsys
func CreateSymlinkT(t *testing.T, fsys filesystem.FS, target, link string) {
	t.Helper()

	dir := filepath.Dir(link)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create parent directories for %s: %v", link, err)
	}

	if err := fsys.Symlink(target, link); err != nil {
		t.Fatalf("Failed to create symlink %s -> %s: %v", link, target, err)
	}
}
