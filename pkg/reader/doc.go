// Package reader builds trees by walking the real filesystem.
//
// Both entry points share one recursive walk parameterized by a
// types.ReadMode:
//
//   - ModeFollow resolves every symlink. Directories currently on the
//     resolution path are tracked by (device, inode); reaching one again
//     fails with SYMLINK_CYCLE. The resulting tree has no Symlink nodes.
//   - ModeAware records each symlink as a leaf holding its raw target and
//     never enters it.
//
// Per-entry failures follow the types.ErrorPolicy: abort returns the first
// failure and no tree, best-effort omits the failing entry from the partial
// tree and collects the failure in Result.Errors. Cancellation is checked
// at every recursion entry and always returns CANCELLED with no tree.
package reader
