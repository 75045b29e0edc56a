// Package builder constructs trees in memory without touching the real
// filesystem.
//
// Two front ends feed the same insert sequence:
//
//   - the literal builder, New().Dir("a").File("a/b").Symlink("l", "a").Build()
//   - the path-text parser, Parse, reading one entry per line:
//
//     # comments and blank lines are ignored
//     docs/readme           regular file
//     docs/img/             directory (trailing slash)
//     current -> docs/img   symlink, target stored verbatim
//
// Intermediate directories are created implicitly. When a later entry lands
// on a path that already holds a node, the later entry wins and the path is
// reported by Builder.Replaced. Format renders a tree back into path text.
package builder
