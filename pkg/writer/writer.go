package writer

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/tree"
)

const (
	dirMode  fs.FileMode = 0755
	fileMode fs.FileMode = 0644
)

// WriteAt materializes root at target. A directory root becomes target
// itself; a leaf root is written as the single entry target. Missing
// ancestors of target are created.
//
// The returned error is set when the write aborted: any failure under
// PolicyAbort, a failure creating the ancestors of target, or cancellation.
// The report is returned in every case and lists what was done before the
// abort. Under PolicyBestEffort a failing entry is skipped together with its
// subtree and listed in Report.Errors.
func WriteAt(ctx context.Context, root *tree.Node, target string, opts Options) (*Report, error) {
	if root == nil {
		return nil, errors.New(errors.ErrInvalidInput, "cannot write a nil tree")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("writer")
	done := logging.LogOperationStart(logger, "WriteAt")
	defer done()

	target = filepath.Clean(target)
	if opts.Atomic {
		return writeAtomic(ctx, root, target, logger)
	}

	w := &writer{fsys: opts.fs(), opts: opts, logger: logger, report: &Report{}}
	if err := w.fsys.MkdirAll(filepath.Dir(target), dirMode); err != nil {
		return w.report, errors.FromOS(err, "mkdir", ".", filepath.Dir(target))
	}

	// A failed directory is recorded in failed so its subtree is pruned.
	failed := map[string]bool{}
	entries := root.Iter().IncludeRoot().Prune(func(e tree.Entry) bool {
		return failed[parentOf(e.Path)]
	})
	for e := range entries.All() {
		if err := ctx.Err(); err != nil {
			return w.report, errors.Wrap(err, errors.ErrCancelled, "write cancelled").
				WithDetail(errors.DetailPath, displayPath(e.Path))
		}
		ok, err := w.place(e.Node, filepath.Join(target, filepath.FromSlash(e.Path)), displayPath(e.Path))
		if err != nil {
			logger.Debug().Err(err).Str("target", target).Msg("Write aborted")
			return w.report, err
		}
		if !ok {
			failed[e.Path] = true
		}
	}

	w.report.Errors.Sort()
	logger.Debug().
		Str("target", target).
		Int("created", len(w.report.Created)).
		Int("replaced", len(w.report.Replaced)).
		Int("unchanged", len(w.report.Unchanged)).
		Int("errors", len(w.report.Errors)).
		Msg("Write finished")
	return w.report, nil
}

type writer struct {
	fsys   filesystem.FS
	opts   Options
	logger zerolog.Logger
	report *Report
}

// place makes the entry at full match node. It reports false when the entry
// failed and was tolerated, in which case its subtree must be skipped.
func (w *writer) place(node *tree.Node, full, rel string) (bool, error) {
	info, err := w.fsys.Lstat(full)
	switch {
	case err == nil:
		if matches(w.fsys, node, info, full) {
			w.report.Unchanged = append(w.report.Unchanged, rel)
			return true, nil
		}
		if !w.opts.Overwrite {
			return w.fail(occupied(node, info, full, rel))
		}
		w.logger.Debug().Str("path", rel).Str("existing", describeInfo(info)).Msg("Replacing entry")
		if err := w.fsys.RemoveAll(full); err != nil {
			return w.fail(errors.FromOS(err, "remove", rel, full))
		}
		if err := create(w.fsys, node, full); err != nil {
			return w.fail(errors.FromOS(err, "create", rel, full))
		}
		w.report.Replaced = append(w.report.Replaced, rel)
		return true, nil
	case errors.ClassifyOS(err) != errors.ErrNotFound:
		return w.fail(errors.FromOS(err, "lstat", rel, full))
	}

	if err := create(w.fsys, node, full); err != nil {
		return w.fail(errors.FromOS(err, "create", rel, full))
	}
	w.logger.Trace().Str("path", rel).Str("kind", node.Describe()).Msg("Created entry")
	w.report.Created = append(w.report.Created, rel)
	return true, nil
}

func (w *writer) fail(err *errors.TreeError) (bool, error) {
	if !w.opts.Policy.IsBestEffort() {
		return false, err
	}
	w.logger.Warn().Err(err).Str("path", err.Path()).Msg("Skipping entry")
	w.report.Errors.Add(err)
	return false, nil
}

func create(fsys filesystem.FS, node *tree.Node, full string) error {
	switch node.Kind() {
	case tree.Directory:
		return fsys.Mkdir(full, dirMode)
	case tree.Symlink:
		return fsys.Symlink(node.Target(), full)
	default:
		return fsys.WriteFile(full, nil, fileMode)
	}
}

// matches reports whether the existing entry already is what node asks for.
// A symlink to a directory does not count as a directory: children written
// through it would land outside the target.
func matches(fsys filesystem.FS, node *tree.Node, info fs.FileInfo, full string) bool {
	switch node.Kind() {
	case tree.Directory:
		return info.IsDir()
	case tree.Symlink:
		if info.Mode()&fs.ModeSymlink == 0 {
			return false
		}
		target, err := fsys.Readlink(full)
		return err == nil && target == node.Target()
	default:
		return info.Mode().IsRegular()
	}
}

func occupied(node *tree.Node, info fs.FileInfo, full, rel string) *errors.TreeError {
	return errors.Newf(errors.ErrDestinationOccupied, "%s: want %s, found %s", full, node.Describe(), describeInfo(info)).
		WithDetail(errors.DetailPath, rel).
		WithDetail(errors.DetailFullPath, full)
}

func describeInfo(info fs.FileInfo) string {
	mode := info.Mode()
	switch {
	case mode&fs.ModeSymlink != 0:
		return tree.Symlink.String()
	case mode.IsDir():
		return tree.Directory.String()
	case mode.IsRegular():
		return tree.Regular.String()
	default:
		return mode.Type().String()
	}
}

// parentOf returns the tree path of p's parent; the root has no parent and
// maps to a key no entry uses.
func parentOf(p string) string {
	if p == "" {
		return "\x00"
	}
	dir := path.Dir(p)
	if dir == "." {
		return ""
	}
	return dir
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
