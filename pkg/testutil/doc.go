// Package testutil provides utilities for testing fstree components.
//
// Key components:
//   - Real-disk helpers (TempDir, CreateFile, CreateSymlink, ...) for tests
//     that must observe kernel behaviour such as ELOOP or permission errors
//   - MemoryFS: in-memory filesystem.FS with symlink resolution, stable
//     inode numbers and per-path error injection
//   - CreateFileT, CreateDirT, CreateSymlinkT: the same helpers for any
//     filesystem.FS, typically a MemoryFS
//
// Usage guidelines:
//   - Prefer MemoryFS when a test only needs structure or injected failures
//   - Use the disk helpers for behaviour that only a real kernel reproduces
//   - All test data should be defined inline, not in external files
package testutil
