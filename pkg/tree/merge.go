package tree

import (
	"fmt"

	"github.com/arthur-debert/fstree/pkg/errors"
)

// Conflict is a path where two merged trees disagree
type Conflict struct {
	Path  string
	Left  string
	Right string
}

func (c Conflict) String() string {
	p := c.Path
	if p == "" {
		p = "."
	}
	return fmt.Sprintf("%s: %s vs %s", p, c.Left, c.Right)
}

// Merge combines b into a. Directories present on both sides are merged
// recursively; a key present on one side only is taken as is; equal leaves
// (same variant, same symlink target) are kept once. Every other collision is
// a Conflict.
//
// Merge is all or nothing: if any conflict exists, it returns a MergeConflict
// error listing every conflicting path and neither input is modified. On
// success the result is a, with b's subtrees moved into it; b must not be
// used afterwards (Clone first to keep it).
func Merge(a, b *Node) (*Node, error) {
	if a == nil || b == nil {
		return nil, errors.New(errors.ErrInvalidInput, "cannot merge a nil tree")
	}
	if a == b {
		return a, nil
	}
	if b.reaches(a) {
		return nil, errors.New(errors.ErrInvalidInput, "cannot merge a tree into one of its own subtrees")
	}
	if conflicts := Conflicts(a, b); len(conflicts) > 0 {
		return nil, conflictError(conflicts)
	}
	if !a.IsDir() {
		// Two equal leaves.
		return a, nil
	}
	mergeInto(a, b)
	return a, nil
}

// ConflictsWith reports whether merging a and b would fail. It stops at the
// first conflict.
func ConflictsWith(a, b *Node) bool {
	found := false
	collectConflicts(a, b, nil, func(Conflict) bool {
		found = true
		return false
	})
	return found
}

// Conflicts lists every path where a and b cannot be merged, in pre-order,
// lexical key order. Neither tree is modified.
func Conflicts(a, b *Node) []Conflict {
	var out []Conflict
	collectConflicts(a, b, nil, func(c Conflict) bool {
		out = append(out, c)
		return true
	})
	return out
}

// ConflictsOf extracts the conflict list carried by a MergeConflict error.
func ConflictsOf(err error) []Conflict {
	if conflicts, ok := errors.GetErrorDetails(err)[errors.DetailConflicts].([]Conflict); ok {
		return conflicts
	}
	return nil
}

// collectConflicts returns false when report asked to stop.
func collectConflicts(a, b *Node, prefix []string, report func(Conflict) bool) bool {
	if a.IsDir() && b.IsDir() {
		for _, name := range a.Names() {
			other, ok := b.children[name]
			if !ok {
				continue
			}
			childPrefix := append(append([]string(nil), prefix...), name)
			if !collectConflicts(a.children[name], other, childPrefix, report) {
				return false
			}
		}
		return true
	}
	if a.kind == b.kind && a.target == b.target {
		return true
	}
	return report(Conflict{Path: JoinPath(prefix...), Left: a.Describe(), Right: b.Describe()})
}

// mergeInto moves b's children into a. Both must be directories and
// conflict free.
func mergeInto(a, b *Node) {
	for name, right := range b.children {
		left, ok := a.children[name]
		if !ok {
			a.children[name] = right
			continue
		}
		if left.IsDir() {
			mergeInto(left, right)
		}
	}
	b.children = make(map[string]*Node)
}

func conflictError(conflicts []Conflict) *errors.TreeError {
	msg := fmt.Sprintf("%d merge conflict(s)", len(conflicts))
	if len(conflicts) > 0 {
		msg += ", first at " + conflicts[0].String()
	}
	return errors.New(errors.ErrMergeConflict, msg).
		WithDetail(errors.DetailConflicts, conflicts)
}
