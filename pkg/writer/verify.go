package writer

import (
	"context"
	"path/filepath"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/reader"
	"github.com/arthur-debert/fstree/pkg/tree"
)

// ReadCopyAt reads path back and compares it with expected. It returns the
// first structural divergence, or nil when the two trees are equal. The zero
// reader.Options read with symlinks followed.
//
// A divergence is a result, not an error: the error is only set when the
// read itself failed. A missing path is reported as a divergence at the root.
func ReadCopyAt(ctx context.Context, expected *tree.Node, path string, opts reader.Options) (*tree.Divergence, error) {
	if expected == nil {
		return nil, errors.New(errors.ErrInvalidInput, "cannot compare against a nil tree")
	}

	logger := logging.GetLogger("writer")

	res, err := reader.ReadAt(ctx, path, opts)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrNotFound) && errors.GetErrorDetails(err)[errors.DetailPath] == "" {
			return &tree.Divergence{
				Kind:     tree.DivergenceMissing,
				Expected: expected.Describe(),
				Actual:   "nothing",
			}, nil
		}
		return nil, err
	}

	d := tree.Diff(expected, res.Tree)
	if d != nil {
		logger.Debug().Str("path", path).Str("divergence", d.String()).Msg("Copy diverges")
	}
	return d, res.Errors.Err()
}

// Exists reports whether every path of root is present under path, without
// checking kinds. A nil fsys means the OS filesystem.
func Exists(ctx context.Context, root *tree.Node, path string, fsys filesystem.FS) (bool, error) {
	if root == nil {
		return false, errors.New(errors.ErrInvalidInput, "cannot check a nil tree")
	}
	if fsys == nil {
		fsys = filesystem.NewOS()
	}

	for e := range root.Iter().IncludeRoot().All() {
		if err := ctx.Err(); err != nil {
			return false, errors.Wrap(err, errors.ErrCancelled, "existence check cancelled")
		}
		full := filepath.Join(path, filepath.FromSlash(e.Path))
		if _, err := fsys.Lstat(full); err != nil {
			if errors.ClassifyOS(err) == errors.ErrNotFound {
				return false, nil
			}
			return false, errors.FromOS(err, "lstat", displayPath(e.Path), full)
		}
	}
	return true, nil
}
