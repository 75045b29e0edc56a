// pkg/builder/pathtext_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test the path-text grammar and its formatter

package builder_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/fstree/pkg/builder"
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Grammar(t *testing.T) {
	input := `
# dotfiles layout
./.config/i3/config
.config/i3/scripts/
  .config/current -> i3/config  

docs/readme
`
	root, err := builder.ParseString(input)
	require.NoError(t, err)

	want, err := builder.New().
		File(".config/i3/config").
		Dir(".config/i3/scripts").
		Symlink(".config/current", "i3/config").
		File("docs/readme").
		Build()
	require.NoError(t, err)

	assert.Nil(t, tree.Diff(want, root))
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.ErrorCode
		wantLine int
	}{
		{"absolute", "ok\n/etc/passwd", errors.ErrInvalidPath, 2},
		{"dot_dot", "a/../b", errors.ErrInvalidPath, 1},
		{"empty_segment", "\n\na//b", errors.ErrInvalidPath, 3},
		{"inner_dot", "a/./b", errors.ErrInvalidPath, 1},
		{"root_only", "./", errors.ErrInvalidPath, 1},
		{"link_without_target", "l -> ", errors.ErrInvalidInput, 1},
		{"under_a_file", "f\nf/g", errors.ErrPathPrefixNotADirectory, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := builder.ParseString(tt.input)
			require.Error(t, err)
			assert.Nil(t, root)
			assert.Equal(t, tt.wantCode, errors.GetErrorCode(err))
			assert.Equal(t, tt.wantLine, errors.GetErrorDetails(err)[errors.DetailLine])
		})
	}
}

func TestParse_LaterLineReplaces(t *testing.T) {
	b := builder.New()
	require.NoError(t, b.Parse(strings.NewReader("x\nx -> y\n")))
	assert.Equal(t, []string{"x"}, b.Replaced())

	root, err := b.Build()
	require.NoError(t, err)
	x, err := root.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "y", x.Target())
}

func TestParse_Empty(t *testing.T) {
	root, err := builder.ParseString("# nothing here\n\n")
	require.NoError(t, err)
	assert.True(t, root.IsDir())
	assert.Zero(t, root.NumChildren())
}

func TestFormat_RoundTrip(t *testing.T) {
	original, err := builder.New().
		File("docs/readme").
		Dir("docs/img").
		Symlink("docs/latest", "../releases/v2").
		File("config").
		Build()
	require.NoError(t, err)

	text, err := builder.FormatString(original)
	require.NoError(t, err)
	assert.Equal(t, "config\ndocs/\ndocs/img/\ndocs/latest -> ../releases/v2\ndocs/readme\n", text)

	parsed, err := builder.ParseString(text)
	require.NoError(t, err)
	assert.True(t, tree.Equal(original, parsed))
}

func TestFormat_Rejects(t *testing.T) {
	_, err := builder.FormatString(tree.NewRegular())
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	withArrow := tree.NewDir()
	_, err = withArrow.Insert("a -> b", tree.NewRegular())
	require.NoError(t, err)
	_, err = builder.FormatString(withArrow)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	comment := tree.NewDir()
	_, err = comment.Insert("#notes", tree.NewRegular())
	require.NoError(t, err)
	_, err = builder.FormatString(comment)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))
}
