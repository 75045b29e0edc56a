package tree

import (
	"strings"

	"github.com/arthur-debert/fstree/pkg/errors"
)

// Separator joins the segments of a relative path.
const Separator = "/"

// ValidateName checks that name is usable as a single path segment: not
// empty, not "." or "..", and free of separators.
func ValidateName(name string) error {
	switch {
	case name == "":
		return errors.New(errors.ErrInvalidPath, "empty path segment")
	case name == "." || name == "..":
		return errors.Newf(errors.ErrInvalidPath, "invalid path segment %q", name).
			WithDetail(errors.DetailPath, name)
	case strings.ContainsAny(name, "/\x00"):
		return errors.Newf(errors.ErrInvalidPath, "path segment %q contains a separator", name).
			WithDetail(errors.DetailPath, name)
	}
	return nil
}

// SplitPath breaks a slash separated relative path into segments. "" and "."
// denote the root and yield no segments; "." segments and repeated slashes
// are dropped. Absolute paths and ".." segments are rejected.
func SplitPath(p string) ([]string, error) {
	if strings.HasPrefix(p, Separator) {
		return nil, errors.Newf(errors.ErrInvalidPath, "path %q is absolute", p).
			WithDetail(errors.DetailPath, p)
	}
	var segments []string
	for _, seg := range strings.Split(p, Separator) {
		if seg == "" || seg == "." {
			continue
		}
		if err := ValidateName(seg); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidPath, "invalid path %q", p).
				WithDetail(errors.DetailPath, p)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// JoinPath joins segments into a relative path.
func JoinPath(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Get looks up the node at relative path p. Lookup walks segment by segment
// and never resolves symlinks; anything unreachable yields NotFound.
func (n *Node) Get(p string) (*Node, error) {
	segments, err := SplitPath(p)
	if err != nil {
		return nil, err
	}
	cur := n
	for i, seg := range segments {
		next, ok := cur.Child(seg)
		if !ok {
			return nil, errors.Newf(errors.ErrNotFound, "no node at %s", JoinPath(segments[:i+1]...)).
				WithDetail(errors.DetailPath, JoinPath(segments...))
		}
		cur = next
	}
	return cur, nil
}

// Has reports whether a node exists at p.
func (n *Node) Has(p string) bool {
	_, err := n.Get(p)
	return err == nil
}

// Insert places node at relative path p, creating intermediate directories as
// needed. An existing node at p is replaced and returned so callers can
// detect an accidental overwrite. If any prefix of p denotes a non-directory
// the insert fails with PathPrefixNotADirectory and n is left unchanged. A
// node that contains n or a directory on the way to p is rejected with
// InvalidInput, since the tree would contain itself.
func (n *Node) Insert(p string, node *Node) (*Node, error) {
	if node == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "nil node for %q", p)
	}
	segments, err := SplitPath(p)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.New(errors.ErrInvalidPath, "cannot insert at the root path").
			WithDetail(errors.DetailPath, p)
	}

	// Check the whole prefix before creating anything.
	cur := n
	onPath := []*Node{n}
	for i, seg := range segments[:len(segments)-1] {
		if !cur.IsDir() {
			return nil, prefixError(segments[:i], cur)
		}
		next, ok := cur.children[seg]
		if !ok {
			break
		}
		cur = next
		onPath = append(onPath, cur)
	}
	if !cur.IsDir() {
		return nil, prefixError(segments[:len(segments)-1], cur)
	}
	if node.reaches(onPath...) {
		return nil, cycleError(JoinPath(segments...))
	}

	cur = n
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur.children[seg]
		if !ok {
			next = NewDir()
			cur.children[seg] = next
		}
		cur = next
	}
	name := segments[len(segments)-1]
	prev := cur.children[name]
	cur.children[name] = node
	return prev, nil
}

func prefixError(prefix []string, at *Node) *errors.TreeError {
	p := JoinPath(prefix...)
	if p == "" {
		p = "."
	}
	return errors.Newf(errors.ErrPathPrefixNotADirectory, "%s is a %s, not a directory", p, at.Kind()).
		WithDetail(errors.DetailPath, p)
}

// Remove detaches and returns the node at p. The root itself cannot be removed.
func (n *Node) Remove(p string) (*Node, error) {
	segments, err := SplitPath(p)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, errors.New(errors.ErrInvalidPath, "cannot remove the root").
			WithDetail(errors.DetailPath, p)
	}
	parent, err := n.Get(JoinPath(segments[:len(segments)-1]...))
	if err != nil {
		return nil, errors.Newf(errors.ErrNotFound, "no node at %s", JoinPath(segments...)).
			WithDetail(errors.DetailPath, JoinPath(segments...))
	}
	name := segments[len(segments)-1]
	child, ok := parent.Child(name)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no node at %s", JoinPath(segments...)).
			WithDetail(errors.DetailPath, JoinPath(segments...))
	}
	delete(parent.children, name)
	return child, nil
}

// FromPathPieces builds a chain of directories ending in a regular file, so
// FromPathPieces("a", "b", "c") is a/b/c with c a regular file. With no
// pieces it returns a lone regular file.
func FromPathPieces(pieces ...string) (*Node, error) {
	if len(pieces) == 0 {
		return NewRegular(), nil
	}
	root := NewDir()
	if _, err := root.Insert(JoinPath(pieces...), NewRegular()); err != nil {
		return nil, err
	}
	return root, nil
}
