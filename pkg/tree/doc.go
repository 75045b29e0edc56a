// Package tree is the in-memory model of a filesystem subtree.
//
// A tree is a *Node that is either a Regular file, a Directory holding named
// children, or a Symlink holding its raw target. Paths inside a tree are
// relative and slash separated; the root is unnamed and has the empty path.
//
// The package provides:
//   - construction and path operations (NewDir, Insert, Get, Remove)
//   - a lazy, filterable pre-order Iterator (Node.Iter)
//   - structural comparison (Equal, Diff)
//   - an all-or-nothing Merge that reports every Conflict
//
// Reading trees from disk lives in package reader, writing them in package
// writer, and text based construction in package builder.
package tree
