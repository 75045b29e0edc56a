// pkg/tree/node_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test node construction, insertion, lookup and removal

package tree_test

import (
	"testing"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entry describes one node to insert when building a fixture tree.
type entry struct {
	path string
	node *tree.Node
}

func buildTree(t *testing.T, entries ...entry) *tree.Node {
	t.Helper()
	root := tree.NewDir()
	for _, e := range entries {
		_, err := root.Insert(e.path, e.node)
		require.NoError(t, err, "insert %s", e.path)
	}
	return root
}

func file(p string) entry { return entry{p, tree.NewRegular()} }
func dir(p string) entry { return entry{p, tree.NewDir()} }
func link(p, target string) entry { return entry{p, tree.NewSymlink(target)} }

func TestKindString(t *testing.T) {
	assert.Equal(t, "regular file", tree.Regular.String())
	assert.Equal(t, "directory", tree.Directory.String())
	assert.Equal(t, "symlink", tree.Symlink.String())
	assert.Equal(t, "unknown", tree.Kind(42).String())
}

func TestInsert_CreatesIntermediateDirectories(t *testing.T) {
	root := tree.NewDir()

	for _, p := range []string{"docs/readme", "docs/img/logo", "config"} {
		prev, err := root.Insert(p, tree.NewRegular())
		require.NoError(t, err)
		assert.Nil(t, prev)
	}

	assert.Equal(t, []string{"config", "docs"}, root.Names())

	docs, err := root.Get("docs")
	require.NoError(t, err)
	assert.True(t, docs.IsDir())
	assert.Equal(t, []string{"img", "readme"}, docs.Names())

	img, err := root.Get("docs/img")
	require.NoError(t, err)
	assert.Equal(t, []string{"logo"}, img.Names())

	logo, err := root.Get("docs/img/logo")
	require.NoError(t, err)
	assert.True(t, logo.IsRegular())
}

func TestInsert_OverwriteReturnsPrevious(t *testing.T) {
	root := buildTree(t, link("a/link", "first"))

	prev, err := root.Insert("a/link", tree.NewSymlink("second"))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "first", prev.Target())

	got, err := root.Get("a/link")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Target())
}

func TestInsert_UnderNonDirectoryFails(t *testing.T) {
	tests := []struct {
		name     string
		existing entry
		insert   string
		wantPath string
	}{
		{"direct_parent_is_file", file("a/f"), "a/f/child", "a/f"},
		{"deep_prefix_is_file", file("a/f"), "a/f/x/y/z", "a/f"},
		{"prefix_is_symlink", link("l", "somewhere"), "l/child", "l"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := buildTree(t, tt.existing)
			before := root.Clone()

			_, err := root.Insert(tt.insert, tree.NewRegular())
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrPathPrefixNotADirectory))
			assert.Equal(t, tt.wantPath, errors.GetErrorDetails(err)[errors.DetailPath])
			assert.True(t, tree.Equal(before, root), "failed insert must not modify the tree")
		})
	}
}

func TestInsert_IntoLeafRoot(t *testing.T) {
	root := tree.NewRegular()
	_, err := root.Insert("x", tree.NewRegular())
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathPrefixNotADirectory))
}

func TestInsert_InvalidPaths(t *testing.T) {
	root := tree.NewDir()
	for _, p := range []string{"", ".", "/abs", "a/../b", ".."} {
		_, err := root.Insert(p, tree.NewRegular())
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath), "path %q", p)
	}
	_, err := root.Insert("ok", nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, 0, root.NumChildren())
}

func TestInsert_RejectsCycles(t *testing.T) {
	root := buildTree(t, file("a/b/f"), file("other"))
	a, err := root.Get("a")
	require.NoError(t, err)
	b, err := root.Get("a/b")
	require.NoError(t, err)
	holder := tree.NewDir()
	_, err = holder.SetChild("inner", root)
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		node *tree.Node
	}{
		{name: "root_under_itself", path: "a/loop", node: root},
		{name: "ancestor_on_path", path: "a/b/loop", node: a},
		{name: "parent_into_itself", path: "a/b/loop", node: b},
		{name: "tree_holding_root", path: "x", node: holder},
		{name: "ancestor_below_new_dirs", path: "a/new/deeper/loop", node: a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := root.Len()
			_, err := root.Insert(tt.path, tt.node)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
			assert.Equal(t, before, root.Len(), "rejected insert must not modify the tree")
		})
	}

	t.Run("sibling_subtree_is_allowed", func(t *testing.T) {
		other := buildTree(t, file("x/y"))
		_, err := root.Insert("a/b/graft", other)
		require.NoError(t, err)
		assert.True(t, root.Has("a/b/graft/x/y"))
	})
}

func TestGet(t *testing.T) {
	root := buildTree(t, file("a/b/c"))

	t.Run("root_paths", func(t *testing.T) {
		for _, p := range []string{"", ".", "./", "././."} {
			got, err := root.Get(p)
			require.NoError(t, err)
			assert.Same(t, root, got)
		}
	})

	t.Run("dots_are_ignored", func(t *testing.T) {
		got, err := root.Get("./a/./b/c/.")
		require.NoError(t, err)
		assert.True(t, got.IsRegular())
	})

	t.Run("missing_intermediate", func(t *testing.T) {
		_, err := root.Get("a/x/c")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("through_a_file", func(t *testing.T) {
		_, err := root.Get("a/b/c/d")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
	})

	t.Run("symlinks_are_not_resolved", func(t *testing.T) {
		withLink := buildTree(t, dir("real"), file("real/f"), link("alias", "real"))
		_, err := withLink.Get("alias/f")
		assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
		assert.True(t, withLink.Has("real/f"))
	})
}

func TestRemove(t *testing.T) {
	root := buildTree(t, file("a/b"), file("a/c"))

	removed, err := root.Remove("a/b")
	require.NoError(t, err)
	assert.True(t, removed.IsRegular())
	assert.False(t, root.Has("a/b"))
	assert.True(t, root.Has("a/c"))

	_, err = root.Remove("a/b")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = root.Remove("missing/child")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	_, err = root.Remove("")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
}

func TestSetChild(t *testing.T) {
	root := tree.NewDir()

	prev, err := root.SetChild("a", tree.NewRegular())
	require.NoError(t, err)
	assert.Nil(t, prev)

	_, err = root.SetChild("a/b", tree.NewRegular())
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	_, err = tree.NewRegular().SetChild("x", tree.NewRegular())
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathPrefixNotADirectory))

	_, err = root.SetChild("self", root)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	wrapper := tree.NewDir()
	_, err = wrapper.SetChild("root", root)
	require.NoError(t, err)
	_, err = root.SetChild("wrapper", wrapper)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Equal(t, 1, root.NumChildren())
}

func TestCounts(t *testing.T) {
	root := buildTree(t, file("a/x"), file("a/y"), dir("empty"), link("l", "t"))

	// root, a, a/x, a/y, empty, l
	assert.Equal(t, 6, root.Len())
	// a/x, a/y, empty, l
	assert.Equal(t, 4, root.LenLeaves())
	assert.Equal(t, 1, tree.NewRegular().Len())
	assert.Equal(t, 1, tree.NewDir().LenLeaves())
}

func TestClone_IsIndependent(t *testing.T) {
	root := buildTree(t, file("a/x"), link("l", "t"))
	clone := root.Clone()

	require.True(t, tree.Equal(root, clone))

	_, err := clone.Insert("a/new", tree.NewRegular())
	require.NoError(t, err)
	assert.False(t, root.Has("a/new"))
	assert.False(t, tree.Equal(root, clone))
}

func TestFromPathPieces(t *testing.T) {
	got, err := tree.FromPathPieces("a", "b", "c")
	require.NoError(t, err)

	expected := buildTree(t, file("a/b/c"))
	assert.True(t, tree.Equal(expected, got))

	leaf, err := tree.FromPathPieces()
	require.NoError(t, err)
	assert.True(t, leaf.IsRegular())

	_, err = tree.FromPathPieces("a", "..")
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
}

func TestDescribe(t *testing.T) {
	var missing *tree.Node
	assert.Equal(t, "nothing", missing.Describe())
	assert.Equal(t, "symlink -> ../x", tree.NewSymlink("../x").Describe())
	assert.Equal(t, "directory", tree.NewDir().Describe())
}
