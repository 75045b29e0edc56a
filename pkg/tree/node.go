package tree

import (
	"sort"

	"github.com/arthur-debert/fstree/pkg/errors"
)

// Kind is the variant tag of a Node
type Kind int

const (
	// Regular is a leaf standing for a regular file (content is not tracked)
	Regular Kind = iota
	// Directory holds named children
	Directory
	// Symlink is a leaf holding the raw, unresolved link target
	Symlink
)

// String returns a human readable name used in conflict and divergence reports.
func (k Kind) String() string {
	switch k {
	case Regular:
		return "regular file"
	case Directory:
		return "directory"
	case Symlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// Node is one element of a filesystem tree. A Directory exclusively owns its
// children; a tree never shares subtrees and never holds parent pointers.
type Node struct {
	kind     Kind
	target   string
	children map[string]*Node
}

// NewDir returns an empty directory node.
func NewDir() *Node {
	return &Node{kind: Directory, children: make(map[string]*Node)}
}

// NewRegular returns a regular file leaf.
func NewRegular() *Node {
	return &Node{kind: Regular}
}

// NewSymlink returns a symlink leaf pointing at target, stored verbatim.
func NewSymlink(target string) *Node {
	return &Node{kind: Symlink, target: target}
}

// Kind returns the variant of n.
func (n *Node) Kind() Kind { return n.kind }

// IsDir reports whether n is a Directory.
func (n *Node) IsDir() bool { return n.kind == Directory }

// IsRegular reports whether n is a Regular file.
func (n *Node) IsRegular() bool { return n.kind == Regular }

// IsSymlink reports whether n is a Symlink.
func (n *Node) IsSymlink() bool { return n.kind == Symlink }

// Target returns the raw target of a symlink, or "" for other kinds.
func (n *Node) Target() string { return n.target }

// IsLeaf reports whether n has no children: files, symlinks and empty directories.
func (n *Node) IsLeaf() bool {
	return n.kind != Directory || len(n.children) == 0
}

// Names returns the child keys of a directory in lexical order. It returns nil
// for non-directories.
func (n *Node) Names() []string {
	if n.kind != Directory {
		return nil
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Child returns the direct child called name.
func (n *Node) Child(name string) (*Node, bool) {
	if n.kind != Directory {
		return nil, false
	}
	c, ok := n.children[name]
	return c, ok
}

// NumChildren returns the number of direct children (0 for leaves).
func (n *Node) NumChildren() int {
	return len(n.children)
}

// SetChild attaches child under name, replacing and returning any previous
// child with that name. The name must be a single valid segment, and child
// must not contain n. SetChild only sees n, so attaching an ancestor of n
// from further up the tree is the caller's responsibility; Insert checks the
// whole path.
func (n *Node) SetChild(name string, child *Node) (*Node, error) {
	if n.kind != Directory {
		return nil, errors.Newf(errors.ErrPathPrefixNotADirectory, "cannot add %q to a %s", name, n.kind)
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if child == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "nil node for %q", name)
	}
	if child.reaches(n) {
		return nil, cycleError(name)
	}
	prev := n.children[name]
	n.children[name] = child
	return prev, nil
}

// reaches reports whether any of targets is n or lies below n.
func (n *Node) reaches(targets ...*Node) bool {
	for _, t := range targets {
		if n == t {
			return true
		}
	}
	for _, c := range n.children {
		if c.reaches(targets...) {
			return true
		}
	}
	return false
}

func cycleError(p string) *errors.TreeError {
	return errors.Newf(errors.ErrInvalidInput, "inserting at %s would make the node its own descendant", p).
		WithDetail(errors.DetailPath, p)
}

// Len counts every node in the tree, including n itself.
func (n *Node) Len() int {
	total := 1
	for _, c := range n.children {
		total += c.Len()
	}
	return total
}

// LenLeaves counts leaf nodes (see IsLeaf).
func (n *Node) LenLeaves() int {
	if n.IsLeaf() {
		return 1
	}
	total := 0
	for _, c := range n.children {
		total += c.LenLeaves()
	}
	return total
}

// Clone returns a deep copy of n. Trees otherwise move their subtrees around
// (Merge, Insert), so Clone is the way to keep an independent copy.
func (n *Node) Clone() *Node {
	out := &Node{kind: n.kind, target: n.target}
	if n.kind == Directory {
		out.children = make(map[string]*Node, len(n.children))
		for name, c := range n.children {
			out.children[name] = c.Clone()
		}
	}
	return out
}

// Describe renders n for conflict and divergence reports.
func (n *Node) Describe() string {
	if n == nil {
		return "nothing"
	}
	if n.kind == Symlink {
		return "symlink -> " + n.target
	}
	return n.kind.String()
}
