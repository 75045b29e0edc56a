package tree

import (
	"fmt"
	"sort"
)

// DivergenceKind classifies the first structural difference between two trees
type DivergenceKind string

const (
	// DivergenceMissing means the expected tree has a path the actual tree lacks
	DivergenceMissing DivergenceKind = "missing"
	// DivergenceExtra means the actual tree has a path the expected tree lacks
	DivergenceExtra DivergenceKind = "extra"
	// DivergenceType means both trees have the path but with different variants
	DivergenceType DivergenceKind = "type-mismatch"
	// DivergenceTarget means both have a symlink at the path with different targets
	DivergenceTarget DivergenceKind = "target-mismatch"
)

// Divergence describes where two trees stop being structurally equal
type Divergence struct {
	Kind     DivergenceKind
	Path     string
	Expected string
	Actual   string
}

func (d *Divergence) String() string {
	p := d.Path
	if p == "" {
		p = "."
	}
	switch d.Kind {
	case DivergenceMissing:
		return fmt.Sprintf("%s: missing (expected %s)", p, d.Expected)
	case DivergenceExtra:
		return fmt.Sprintf("%s: unexpected %s", p, d.Actual)
	default:
		return fmt.Sprintf("%s: expected %s, found %s", p, d.Expected, d.Actual)
	}
}

// Equal reports whether a and b are structurally equal: the same paths with
// the same variants, and the same targets for symlinks.
func Equal(a, b *Node) bool {
	return Diff(a, b) == nil
}

// Diff returns the first divergence between expected and actual in pre-order,
// lexical key order, or nil when they are structurally equal.
func Diff(expected, actual *Node) *Divergence {
	return diff(expected, actual, nil)
}

func diff(expected, actual *Node, prefix []string) *Divergence {
	path := JoinPath(prefix...)
	if expected.kind != actual.kind {
		return &Divergence{Kind: DivergenceType, Path: path, Expected: expected.Describe(), Actual: actual.Describe()}
	}
	switch expected.kind {
	case Symlink:
		if expected.target != actual.target {
			return &Divergence{Kind: DivergenceTarget, Path: path, Expected: expected.Describe(), Actual: actual.Describe()}
		}
		return nil
	case Regular:
		return nil
	}

	for _, name := range unionNames(expected, actual) {
		childPath := append(append([]string(nil), prefix...), name)
		e, inExpected := expected.children[name]
		a, inActual := actual.children[name]
		switch {
		case !inActual:
			return &Divergence{Kind: DivergenceMissing, Path: JoinPath(childPath...), Expected: e.Describe(), Actual: "nothing"}
		case !inExpected:
			return &Divergence{Kind: DivergenceExtra, Path: JoinPath(childPath...), Expected: "nothing", Actual: a.Describe()}
		}
		if d := diff(e, a, childPath); d != nil {
			return d
		}
	}
	return nil
}

// unionNames returns the sorted union of both directories' child keys.
func unionNames(a, b *Node) []string {
	seen := make(map[string]struct{}, len(a.children)+len(b.children))
	for name := range a.children {
		seen[name] = struct{}{}
	}
	for name := range b.children {
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
