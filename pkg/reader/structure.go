package reader

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/tree"
)

// ReadStructureAt reads only the paths that shape names, relative to path.
// The result is the intersection of shape and the disk: paths missing on
// disk are skipped, and each present path gets the type found on disk, which
// may differ from the one in shape. Descendants are only looked up below
// paths that are directories on disk. It makes at most shape.Len() lookups
// and never lists a directory.
func ReadStructureAt(ctx context.Context, shape *tree.Node, path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if shape == nil || !shape.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidInput, "structure must be a directory, got %s", shape.Describe())
	}

	logger := logging.GetLogger("reader")
	done := logging.LogOperationStart(logger, "ReadStructureAt")
	defer done()

	w := newWalker(opts, logger)
	out := tree.NewDir()
	if err := w.readShape(ctx, shape, filepath.Clean(path), "", out); err != nil {
		return nil, err
	}

	w.errs.Sort()
	return &Result{Tree: out, Errors: w.errs}, nil
}

func (w *walker) readShape(ctx context.Context, shape *tree.Node, full, rel string, out *tree.Node) error {
	stat := w.fsys.Lstat
	if w.follow {
		stat = w.fsys.Stat
	}

	for _, name := range shape.Names() {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.ErrCancelled, "read cancelled").
				WithDetail(errors.DetailPath, rel)
		}

		want, _ := shape.Child(name)
		childFull := filepath.Join(full, name)
		childRel := joinRel(rel, name)

		info, err := stat(childFull)
		if err != nil {
			if errors.ClassifyOS(err) == errors.ErrNotFound {
				continue
			}
			if _, err := w.fail(errors.FromOS(err, "stat", childRel, childFull), false); err != nil {
				return err
			}
			continue
		}

		var node *tree.Node
		switch {
		case info.Mode()&fs.ModeSymlink != 0:
			target, err := w.fsys.Readlink(childFull)
			if err != nil {
				if _, err := w.fail(errors.FromOS(err, "readlink", childRel, childFull), false); err != nil {
					return err
				}
				continue
			}
			node = tree.NewSymlink(target)
		case info.IsDir():
			node = tree.NewDir()
			if want.IsDir() {
				if err := w.readShape(ctx, want, childFull, childRel, node); err != nil {
					return err
				}
			}
		case info.Mode().IsRegular():
			node = tree.NewRegular()
		default:
			continue
		}

		if _, err := out.SetChild(name, node); err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "attaching %s", childRel)
		}
	}
	return nil
}
