package writer

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	sfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/tree"
)

// step is one entry an atomic write has to create
type step struct {
	rel  string
	full string
	node *tree.Node

	// ancestor marks a missing parent of the target, not part of the tree
	ancestor bool
}

// writeAtomic checks every path before touching the disk, then runs the
// creations as one synthfs pipeline. On failure the entries created so far
// are removed again, so the disk is left as it was found.
func writeAtomic(ctx context.Context, root *tree.Node, target string, logger zerolog.Logger) (*Report, error) {
	osfs := filesystem.NewOS()
	report := &Report{}

	steps, err := planAtomic(ctx, osfs, root, target, report)
	if err != nil {
		return &Report{}, err
	}
	if len(steps) == 0 {
		return report, nil
	}

	sfs := synthfs.New()
	ops := make([]synthfs.Operation, 0, len(steps))
	byID := make(map[synthfs.OperationID]step, len(steps))
	for i, s := range steps {
		id := fmt.Sprintf("fstree_%d_%s", i, s.node.Kind())
		var op synthfs.Operation
		switch s.node.Kind() {
		case tree.Directory:
			op = sfs.CreateDirWithID(id, s.full, dirMode)
		case tree.Symlink:
			linkTarget, linkPath := s.node.Target(), s.full
			// The path-aware filesystem rewrites both arguments against its
			// root. The target must land on disk verbatim, so the link is
			// made on the plain OS filesystem.
			op = sfs.CustomOperationWithID(id, func(context.Context, sfsfs.FileSystem) error {
				return osfs.Symlink(linkTarget, linkPath)
			})
		default:
			op = sfs.CreateFileWithID(id, s.full, []byte{}, fileMode)
		}
		ops = append(ops, op)
		byID[op.ID()] = s
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = true

	pathAwareFS := synthfs.NewPathAwareFileSystem(sfsfs.NewOSFileSystem("/"), "/").WithAbsolutePaths()

	logger.Info().
		Int("operationCount", len(ops)).
		Str("target", target).
		Msg("Executing atomic write")

	result, runErr := synthfs.RunWithOptions(ctx, pathAwareFS, options, ops...)

	var (
		created []step
		failed  *step
		opErr   error
	)
	if result != nil {
		for _, opResult := range result.GetOperations() {
			r, ok := opResult.(synthfs.OperationResult)
			if !ok {
				continue
			}
			s, known := byID[r.OperationID]
			if !known {
				continue
			}
			switch r.Status {
			case synthfs.StatusSuccess:
				created = append(created, s)
			case synthfs.StatusFailure, synthfs.StatusValidation:
				if failed == nil {
					failed, opErr = &s, r.Error
				}
			}
		}
	}

	if runErr == nil && failed == nil {
		for _, s := range steps {
			if !s.ancestor {
				report.Created = append(report.Created, s.rel)
			}
		}
		return report, nil
	}

	undo(osfs, created, logger)

	cause := opErr
	if cause == nil {
		cause = runErr
	}
	if cause == nil {
		cause = fmt.Errorf("creating %s failed", failed.full)
	}
	werr := errors.Wrap(cause, errors.ClassifyOS(cause), "atomic write failed, changes rolled back")
	if failed != nil {
		werr = werr.WithDetail(errors.DetailPath, failed.rel).WithDetail(errors.DetailFullPath, failed.full)
	}
	return &Report{}, werr
}

// planAtomic lists, parent before child, every entry that has to be created,
// starting with missing ancestors of target. It fails on the first path
// already occupied by an entry of another kind.
func planAtomic(ctx context.Context, fsys filesystem.FS, root *tree.Node, target string, report *Report) ([]step, error) {
	var steps []step

	var ancestors []string
	for dir := filepath.Dir(target); ; dir = filepath.Dir(dir) {
		if _, err := fsys.Lstat(dir); err == nil {
			break
		} else if errors.ClassifyOS(err) != errors.ErrNotFound {
			return nil, errors.FromOS(err, "lstat", ".", dir)
		}
		ancestors = append(ancestors, dir)
		if filepath.Dir(dir) == dir {
			break
		}
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		steps = append(steps, step{rel: ".", full: ancestors[i], node: tree.NewDir(), ancestor: true})
	}

	// Entries below a directory that is itself missing need no lookup.
	missing := map[string]bool{}
	for e := range root.Iter().IncludeRoot().All() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCancelled, "write cancelled")
		}
		rel := displayPath(e.Path)
		full := filepath.Join(target, filepath.FromSlash(e.Path))

		if e.Path == "" || !missing[parentOf(e.Path)] {
			info, err := fsys.Lstat(full)
			if err == nil {
				if !matches(fsys, e.Node, info, full) {
					return nil, occupied(e.Node, info, full, rel)
				}
				report.Unchanged = append(report.Unchanged, rel)
				continue
			}
			if errors.ClassifyOS(err) != errors.ErrNotFound {
				return nil, errors.FromOS(err, "lstat", rel, full)
			}
		}

		if e.Node.IsDir() {
			missing[e.Path] = true
		}
		steps = append(steps, step{rel: rel, full: full, node: e.Node})
	}
	return steps, nil
}

// undo removes created entries, children first. Entries the pipeline
// already rolled back are gone and their removal errors are ignored.
func undo(fsys filesystem.FS, created []step, logger zerolog.Logger) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := fsys.Remove(created[i].full); err != nil && errors.ClassifyOS(err) != errors.ErrNotFound {
			logger.Warn().Err(err).Str("path", created[i].full).Msg("Failed to undo atomic write entry")
		}
	}
}
