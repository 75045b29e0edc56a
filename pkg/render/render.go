// Package render draws trees for terminal output.
package render

import (
	"io"
	"path"
	"strings"

	"github.com/ddddddO/gtree"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/tree"
)

// Options narrows what Tree draws
type Options struct {
	// MaxDepth limits the drawing to entries at most this deep; 0 draws everything
	MaxDepth int

	// Only keeps entries of these kinds, plus the directories leading to
	// them; empty keeps every kind
	Only []tree.Kind
}

// Tree draws root as an indented tree headed by name. Directories end with
// "/" and symlinks show their target.
func Tree(w io.Writer, name string, root *tree.Node, opts Options) error {
	if root == nil {
		return errors.New(errors.ErrInvalidInput, "cannot render a nil tree")
	}

	top := gtree.NewRoot(label(name, root))
	nodes := map[string]*gtree.Node{"": top}

	// ensure returns the drawing node for p, adding missing ancestors first
	var ensure func(p string, n *tree.Node) *gtree.Node
	ensure = func(p string, n *tree.Node) *gtree.Node {
		if g, ok := nodes[p]; ok {
			return g
		}
		parent := path.Dir(p)
		if parent == "." {
			parent = ""
		}
		g := ensure(parent, tree.NewDir()).Add(label(path.Base(p), n))
		nodes[p] = g
		return g
	}

	it := root.Iter()
	if opts.MaxDepth > 0 {
		it = it.MaxDepth(opts.MaxDepth)
	}
	if len(opts.Only) > 0 {
		it = it.Only(opts.Only...)
	}
	for e := range it.All() {
		ensure(e.Path, e.Node)
	}

	if err := gtree.OutputFromRoot(w, top); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to render tree")
	}
	return nil
}

func label(name string, n *tree.Node) string {
	switch n.Kind() {
	case tree.Directory:
		if strings.HasSuffix(name, "/") {
			return name
		}
		return name + "/"
	case tree.Symlink:
		return name + " -> " + n.Target()
	default:
		return name
	}
}
