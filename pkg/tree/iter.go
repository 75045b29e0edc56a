package tree

import (
	"iter"
	"math"
)

// Entry is one item produced by an Iterator
type Entry struct {
	// Path is relative to the iterated root; the root itself has Path "".
	Path  string
	Depth int
	Node  *Node
}

// Iterator is a lazy, restartable pre-order traversal over a tree. Siblings
// are visited in lexical key order and a parent always precedes its
// descendants. Configuration methods return a modified copy, so an Iterator
// value can be shared and re-run.
//
// The tree must not be structurally modified while a traversal is running.
type Iterator struct {
	root     *Node
	skip     [3]bool
	minDepth int
	maxDepth int
	filters  []func(Entry) bool
	prunes   []func(Entry) bool
}

// Iter returns an iterator over the descendants of n (the root is excluded
// unless IncludeRoot is set).
func (n *Node) Iter() Iterator {
	return Iterator{root: n, minDepth: 1, maxDepth: math.MaxInt}
}

// Paths is shorthand for n.Iter().Paths().
func (n *Node) Paths() iter.Seq[string] {
	return n.Iter().Paths()
}

// IncludeRoot makes the root itself the first entry, at depth 0.
func (it Iterator) IncludeRoot() Iterator {
	it.minDepth = 0
	return it
}

// SkipRegular drops regular files from the output.
func (it Iterator) SkipRegular() Iterator {
	it.skip[Regular] = true
	return it
}

// SkipDirs drops directories from the output; their contents are still visited.
func (it Iterator) SkipDirs() Iterator {
	it.skip[Directory] = true
	return it
}

// SkipSymlinks drops symlinks from the output.
func (it Iterator) SkipSymlinks() Iterator {
	it.skip[Symlink] = true
	return it
}

// Only keeps entries whose kind is one of kinds.
func (it Iterator) Only(kinds ...Kind) Iterator {
	it.skip = [3]bool{true, true, true}
	for _, k := range kinds {
		if int(k) < len(it.skip) {
			it.skip[k] = false
		}
	}
	return it
}

// MinDepth hides entries shallower than depth.
func (it Iterator) MinDepth(depth int) Iterator {
	it.minDepth = depth
	return it
}

// MaxDepth stops descending below depth.
func (it Iterator) MaxDepth(depth int) Iterator {
	it.maxDepth = depth
	return it
}

// Filter hides entries for which keep returns false. Descendants of a hidden
// directory are still visited; see Prune to cut a subtree.
func (it Iterator) Filter(keep func(Entry) bool) Iterator {
	it.filters = append(append([]func(Entry) bool(nil), it.filters...), keep)
	return it
}

// Prune hides every entry for which cut returns true together with its
// whole subtree; none of its descendants are visited.
func (it Iterator) Prune(cut func(Entry) bool) Iterator {
	it.prunes = append(append([]func(Entry) bool(nil), it.prunes...), cut)
	return it
}

// All yields the entries of the traversal.
func (it Iterator) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if it.root == nil {
			return
		}
		it.walk(Entry{Node: it.root}, yield)
	}
}

// Seq2 yields (path, node) pairs.
func (it Iterator) Seq2() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for e := range it.All() {
			if !yield(e.Path, e.Node) {
				return
			}
		}
	}
}

// Paths yields the relative path of each entry.
func (it Iterator) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		for e := range it.All() {
			if !yield(e.Path) {
				return
			}
		}
	}
}

// Nodes yields each entry's node.
func (it Iterator) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for e := range it.All() {
			if !yield(e.Node) {
				return
			}
		}
	}
}

// Collect runs the traversal and returns all entries.
func (it Iterator) Collect() []Entry {
	var out []Entry
	for e := range it.All() {
		out = append(out, e)
	}
	return out
}

// walk returns false once the consumer has stopped.
func (it Iterator) walk(e Entry, yield func(Entry) bool) bool {
	if e.Depth > 0 {
		for _, cut := range it.prunes {
			if cut(e) {
				return true
			}
		}
	}
	if it.visible(e) && !yield(e) {
		return false
	}
	if !e.Node.IsDir() || e.Depth >= it.maxDepth {
		return true
	}
	for _, name := range e.Node.Names() {
		child := Entry{
			Path:  joinChild(e.Path, name),
			Depth: e.Depth + 1,
			Node:  e.Node.children[name],
		}
		if !it.walk(child, yield) {
			return false
		}
	}
	return true
}

func (it Iterator) visible(e Entry) bool {
	if e.Depth < it.minDepth || e.Depth > it.maxDepth {
		return false
	}
	if k := e.Node.Kind(); int(k) < len(it.skip) && it.skip[k] {
		return false
	}
	for _, keep := range it.filters {
		if !keep(e) {
			return false
		}
	}
	return true
}

func joinChild(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + Separator + name
}
