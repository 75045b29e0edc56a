// Package filesystem provides the filesystem seam used by the reader and the
// writer.
//
// FS is the small set of Unix operations a tree walk or a tree write needs.
// NewOS returns the real implementation; pkg/testutil provides an in-memory
// one for tests that need deterministic failures.
package filesystem
