package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOS(t *testing.T) {
	fs := NewOS()
	assert.NotNil(t, fs)

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	require.NoError(t, fs.WriteFile(testFile, nil, 0644))

	info, err := fs.Stat(testFile)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", info.Name())
	assert.True(t, info.Mode().IsRegular())

	require.NoError(t, fs.Mkdir(filepath.Join(tmpDir, "single"), 0755))
	require.NoError(t, fs.MkdirAll(filepath.Join(tmpDir, "sub", "dir"), 0755))

	link := filepath.Join(tmpDir, "link")
	require.NoError(t, fs.Symlink("test.txt", link))

	target, err := fs.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "test.txt", target)

	linfo, err := fs.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, linfo.Mode()&os.ModeSymlink)

	entries, err := fs.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Len(t, entries, 4) // test.txt, single/, sub/, link

	require.NoError(t, fs.Remove(testFile))
	_, err = fs.Stat(testFile)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, fs.RemoveAll(filepath.Join(tmpDir, "sub")))
	_, err = fs.Lstat(filepath.Join(tmpDir, "sub"))
	assert.True(t, os.IsNotExist(err))
}

func TestIdentity(t *testing.T) {
	fs := NewOS()
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "dir")
	require.NoError(t, fs.Mkdir(dir, 0755))
	require.NoError(t, fs.Symlink("dir", filepath.Join(tmpDir, "alias")))

	direct, err := fs.Stat(dir)
	require.NoError(t, err)
	viaLink, err := fs.Stat(filepath.Join(tmpDir, "alias"))
	require.NoError(t, err)

	id1, ok := IdentityOf(fs, direct)
	require.True(t, ok)
	id2, ok := IdentityOf(fs, viaLink)
	require.True(t, ok)
	assert.Equal(t, id1, id2)

	parent, err := fs.Stat(tmpDir)
	require.NoError(t, err)
	id3, _ := Identity(parent)
	assert.NotEqual(t, id1, id3)
}
