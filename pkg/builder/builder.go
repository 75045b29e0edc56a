package builder

import (
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/tree"
)

// Builder accumulates inserts into an initially empty directory. The first
// failing insert is kept and every later call becomes a no-op, so a chain of
// calls needs a single error check at Build.
type Builder struct {
	root     *tree.Node
	replaced []string
	err      error
}

// New returns a builder rooted at an empty directory.
func New() *Builder {
	return &Builder{root: tree.NewDir()}
}

// File adds a regular file at p.
func (b *Builder) File(p string) *Builder {
	return b.Insert(p, tree.NewRegular())
}

// Files adds a regular file at each of paths.
func (b *Builder) Files(paths ...string) *Builder {
	for _, p := range paths {
		b.File(p)
	}
	return b
}

// Dir adds an empty directory at p. A directory already present at p is
// kept along with its children.
func (b *Builder) Dir(p string) *Builder {
	if b.err != nil {
		return b
	}
	if existing, err := b.root.Get(p); err == nil && existing.IsDir() {
		return b
	}
	return b.Insert(p, tree.NewDir())
}

// Symlink adds a link at p whose raw target is target.
func (b *Builder) Symlink(p, target string) *Builder {
	return b.Insert(p, tree.NewSymlink(target))
}

// Insert places node at p. A node previously at p is replaced and p is
// recorded in Replaced.
func (b *Builder) Insert(p string, node *tree.Node) *Builder {
	if b.err != nil {
		return b
	}
	prev, err := b.root.Insert(p, node)
	if err != nil {
		b.err = err
		return b
	}
	if prev != nil {
		logger := logging.GetLogger("builder")
		logger.Debug().
			Str("path", p).
			Str("previous", prev.Describe()).
			Str("replacement", node.Describe()).
			Msg("Entry replaced")
		b.replaced = append(b.replaced, p)
	}
	return b
}

// Replaced lists, in insert order, every path whose earlier node was
// overwritten by a later insert.
func (b *Builder) Replaced() []string {
	return b.replaced
}

// Err returns the first insert failure, if any.
func (b *Builder) Err() error {
	return b.err
}

// Build hands over the constructed tree. The builder is spent afterwards:
// further inserts are ignored and another Build fails.
func (b *Builder) Build() (*tree.Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	root := b.root
	b.root = nil
	b.err = errors.New(errors.ErrInvalidInput, "builder already built")
	return root, nil
}

// FromPath builds the chain of directories ending in a regular file named
// by the slash separated path p, so FromPath("a/b/c") yields a/b/c.
func FromPath(p string) (*tree.Node, error) {
	segments, err := tree.SplitPath(p)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.Newf(errors.ErrInvalidPath, "empty path %q", p).
			WithDetail(errors.DetailPath, p)
	}
	return tree.FromPathPieces(segments...)
}

// FromPaths builds a tree holding a regular file at each of paths.
func FromPaths(paths ...string) (*tree.Node, error) {
	return New().Files(paths...).Build()
}
