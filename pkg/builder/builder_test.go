// pkg/builder/builder_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test the literal tree builder

package builder_test

import (
	"slices"
	"testing"

	"github.com/arthur-debert/fstree/pkg/builder"
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_ExampleScenario(t *testing.T) {
	root, err := builder.New().
		File("docs/readme").
		File("docs/img/logo").
		File("config").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"config", "docs"}, root.Names())

	docs, err := root.Get("docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"img", "readme"}, docs.Names())

	img, err := root.Get("docs/img")
	require.NoError(t, err)
	assert.Equal(t, []string{"logo"}, img.Names())

	assert.Equal(t,
		[]string{"config", "docs", "docs/img", "docs/img/logo", "docs/readme"},
		slices.Collect(root.Paths()))
}

func TestBuilder_AllKinds(t *testing.T) {
	root, err := builder.New().
		Dir("empty").
		File("a/f").
		Symlink("a/l", "../empty").
		Build()
	require.NoError(t, err)

	empty, err := root.Get("empty")
	require.NoError(t, err)
	assert.True(t, empty.IsDir())
	assert.Zero(t, empty.NumChildren())

	l, err := root.Get("a/l")
	require.NoError(t, err)
	assert.True(t, l.IsSymlink())
	assert.Equal(t, "../empty", l.Target())
}

func TestBuilder_ReplacementsAreReported(t *testing.T) {
	b := builder.New().
		File("x").
		Symlink("x", "elsewhere").
		File("y")

	root, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, b.Replaced())

	x, err := root.Get("x")
	require.NoError(t, err)
	assert.True(t, x.IsSymlink(), "last insert wins")
}

func TestBuilder_DirKeepsExistingDirectory(t *testing.T) {
	b := builder.New().File("d/inner").Dir("d")

	root, err := b.Build()
	require.NoError(t, err)
	assert.True(t, root.Has("d/inner"))
	assert.Empty(t, b.Replaced())
}

func TestBuilder_FirstErrorSticks(t *testing.T) {
	b := builder.New().
		File("f").
		File("f/child").
		File("later")

	require.Error(t, b.Err())
	assert.True(t, errors.IsErrorCode(b.Err(), errors.ErrPathPrefixNotADirectory))

	root, err := b.Build()
	assert.Nil(t, root)
	assert.Equal(t, b.Err(), err)
}

func TestBuilder_IsSpentAfterBuild(t *testing.T) {
	b := builder.New().File("a")
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.File("b").Build()
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestFromPath(t *testing.T) {
	got, err := builder.FromPath("a/b/c")
	require.NoError(t, err)

	want, err := builder.New().File("a/b/c").Build()
	require.NoError(t, err)
	assert.True(t, tree.Equal(want, got))

	for _, bad := range []string{"", ".", "/abs", "a/../b"} {
		_, err := builder.FromPath(bad)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath), "path %q", bad)
	}
}

func TestFromPaths(t *testing.T) {
	got, err := builder.FromPaths("b", "a/x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a/x", "b"}, slices.Collect(got.Paths()))
}
