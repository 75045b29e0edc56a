// Package writer materializes trees on disk and checks disk contents against
// trees.
//
// WriteAt walks the tree in pre-order, so a directory always exists before
// its children are created. Directories are created, regular files are
// created empty and symlinks get their stored target verbatim. Existing
// entries of the same kind are left alone; anything else at a path is
// DESTINATION_OCCUPIED unless Options.Overwrite replaces it.
//
// With Options.Atomic the whole write is checked up front and then run as
// one synthfs pipeline with rollback, so a failed write leaves no new entry
// behind.
//
// ReadCopyAt re-reads a path and reports the first structural divergence
// from the expected tree; Exists reports whether every path of a tree is
// present on disk.
package writer
