// pkg/reader/reader_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (temp dirs), MemoryFS
// PURPOSE: Test following and symlink-aware reads, cycles, dangling links and error policies

package reader_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/arthur-debert/fstree/pkg/builder"
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/reader"
	"github.com/arthur-debert/fstree/pkg/testutil"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/arthur-debert/fstree/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *tree.Node {
	t.Helper()
	root, err := builder.ParseString(text)
	require.NoError(t, err)
	return root
}

func TestReadAt_AwareVersusFollow(t *testing.T) {
	testutil.SkipOnWindows(t)
	dir := testutil.TempDir(t)
	testutil.CreateFile(t, dir, "docs/readme", "")
	testutil.CreateFile(t, dir, "docs/img/logo", "")
	testutil.CreateFile(t, dir, "config", "")
	testutil.CreateSymlink(t, "docs/img", filepath.Join(dir, "current"))

	ctx := context.Background()

	t.Run("aware", func(t *testing.T) {
		got, err := reader.Aware(ctx, dir, reader.Options{})
		require.NoError(t, err)

		want := mustParse(t, "config\ndocs/readme\ndocs/img/logo\ncurrent -> docs/img\n")
		assert.Nil(t, tree.Diff(want, got))
	})

	t.Run("follow", func(t *testing.T) {
		got, err := reader.Follow(ctx, dir, reader.Options{})
		require.NoError(t, err)

		want := mustParse(t, "config\ndocs/readme\ndocs/img/logo\ncurrent/logo\n")
		assert.Nil(t, tree.Diff(want, got))

		for e := range got.Iter().All() {
			assert.False(t, e.Node.IsSymlink(), "following read produced a symlink at %s", e.Path)
		}
	})
}

func TestReadAt_SymlinkCycle(t *testing.T) {
	testutil.SkipOnWindows(t)
	dir := testutil.TempDir(t)
	testutil.CreateFile(t, dir, "a/file", "")
	testutil.CreateSymlink(t, "..", filepath.Join(dir, "a", "link"))

	ctx := context.Background()

	t.Run("follow_fails", func(t *testing.T) {
		res, err := reader.ReadAt(ctx, dir, reader.Options{Mode: types.ModeFollow})
		require.Error(t, err)
		assert.Nil(t, res)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkCycle))

		details := errors.GetErrorDetails(err)
		assert.Equal(t, "a/link", details[errors.DetailPath])
		assert.Equal(t, "a/link", details[errors.DetailLink])
		assert.Equal(t, []string{".", "a", "a/link"}, details[errors.DetailChain])
	})

	t.Run("follow_from_inside_the_loop_names_the_link", func(t *testing.T) {
		_, err := reader.ReadAt(ctx, filepath.Join(dir, "a"), reader.Options{Mode: types.ModeFollow})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSymlinkCycle))

		details := errors.GetErrorDetails(err)
		assert.Equal(t, "link/a", details[errors.DetailPath], "the entry that re-entered the loop")
		assert.Equal(t, "link", details[errors.DetailLink], "the symlink that closed the loop")
		assert.Equal(t, []string{".", "link", "link/a"}, details[errors.DetailChain])
		assert.Contains(t, err.Error(), "link leads back into .")
	})

	t.Run("follow_best_effort_skips_link", func(t *testing.T) {
		res, err := reader.ReadAt(ctx, dir, reader.Options{Policy: types.PolicyBestEffort})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "a/file"}, slices.Collect(res.Tree.Paths()))
		assert.Equal(t, []string{"a/link"}, res.Errors.Paths())
	})

	t.Run("aware_succeeds", func(t *testing.T) {
		got, err := reader.Aware(ctx, dir, reader.Options{})
		require.NoError(t, err)

		link, err := got.Get("a/link")
		require.NoError(t, err)
		assert.True(t, link.IsSymlink())
		assert.Equal(t, "..", link.Target())
	})
}

func TestReadAt_LinkToSiblingIsNotACycle(t *testing.T) {
	testutil.SkipOnWindows(t)
	dir := testutil.TempDir(t)
	testutil.CreateFile(t, dir, "shared/f", "")
	testutil.CreateSymlink(t, "../shared", filepath.Join(dir, "one", "s"))
	testutil.CreateSymlink(t, "../shared", filepath.Join(dir, "two", "s"))

	got, err := reader.Follow(context.Background(), dir, reader.Options{})
	require.NoError(t, err)
	assert.True(t, got.Has("one/s/f"))
	assert.True(t, got.Has("two/s/f"))
}

func TestReadAt_SingleNode(t *testing.T) {
	testutil.SkipOnWindows(t)
	dir := testutil.TempDir(t)
	file := testutil.CreateFile(t, dir, "plain", "content")
	link := filepath.Join(dir, "alias")
	testutil.CreateSymlink(t, "plain", link)

	ctx := context.Background()

	got, err := reader.Follow(ctx, file, reader.Options{})
	require.NoError(t, err)
	assert.True(t, got.IsRegular(), "a file is read as a lone node, not wrapped in a directory")

	got, err = reader.Aware(ctx, link, reader.Options{})
	require.NoError(t, err)
	assert.True(t, got.IsSymlink())
	assert.Equal(t, "plain", got.Target())

	got, err = reader.Follow(ctx, link, reader.Options{})
	require.NoError(t, err)
	assert.True(t, got.IsRegular())
}

func TestReadAt_DanglingSymlink(t *testing.T) {
	testutil.SkipOnWindows(t)
	dir := testutil.TempDir(t)
	testutil.CreateFile(t, dir, "ok", "")
	testutil.CreateSymlink(t, "missing", filepath.Join(dir, "broken"))

	ctx := context.Background()

	t.Run("fail", func(t *testing.T) {
		_, err := reader.ReadAt(ctx, dir, reader.Options{})
		assert.True(t, errors.IsErrorCode(err, errors.ErrBrokenSymlink))
		assert.Equal(t, "broken", errors.GetErrorDetails(err)[errors.DetailPath])
	})

	t.Run("record", func(t *testing.T) {
		res, err := reader.ReadAt(ctx, dir, reader.Options{Dangling: types.DanglingRecord})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, slices.Collect(res.Tree.Paths()))
		require.Len(t, res.Errors, 1)
		assert.True(t, errors.IsErrorCode(res.Errors[0], errors.ErrBrokenSymlink))
		assert.False(t, res.OK())
	})

	t.Run("aware_keeps_it", func(t *testing.T) {
		got, err := reader.Aware(ctx, dir, reader.Options{})
		require.NoError(t, err)
		broken, err := got.Get("broken")
		require.NoError(t, err)
		assert.Equal(t, "missing", broken.Target())
	})

	t.Run("root_is_always_fatal", func(t *testing.T) {
		_, err := reader.ReadAt(ctx, filepath.Join(dir, "broken"), reader.Options{Dangling: types.DanglingRecord})
		assert.True(t, errors.IsErrorCode(err, errors.ErrBrokenSymlink))
	})
}

func TestReadAt_EmptyDirectory(t *testing.T) {
	dir := testutil.TempDir(t)

	res, err := reader.ReadAt(context.Background(), dir, reader.Options{})
	require.NoError(t, err)
	assert.True(t, res.Tree.IsDir())
	assert.Zero(t, res.Tree.NumChildren())
	assert.True(t, res.OK())
}

func TestReadAt_MissingRoot(t *testing.T) {
	dir := testutil.TempDir(t)

	_, err := reader.ReadAt(context.Background(), filepath.Join(dir, "nope"), reader.Options{Policy: types.PolicyBestEffort})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestReadAt_PermissionDenied(t *testing.T) {
	testutil.SkipOnWindows(t)
	testutil.SkipIfRoot(t)
	dir := testutil.TempDir(t)
	testutil.CreateFile(t, dir, "open/f", "")
	locked := testutil.CreateDir(t, dir, "locked")
	testutil.CreateFile(t, locked, "hidden", "")
	testutil.Chmod(t, locked, 0000)

	res, err := reader.ReadAt(context.Background(), dir, reader.Options{Policy: types.PolicyBestEffort})
	require.NoError(t, err)
	assert.Equal(t, []string{"open", "open/f"}, slices.Collect(res.Tree.Paths()))
	require.Len(t, res.Errors, 1)
	assert.True(t, errors.IsErrorCode(res.Errors[0], errors.ErrPermissionDenied))
	assert.ErrorIs(t, res.Errors[0], os.ErrPermission)
}
