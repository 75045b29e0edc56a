package reader

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/arthur-debert/fstree/pkg/types"
)

// ReadAt reads the filesystem subtree at path. A directory yields a
// Directory root; anything else yields a single-node tree.
//
// The returned error is set when the walk aborted: a failure at path itself,
// any failure under PolicyAbort, or cancellation. Failures tolerated by
// PolicyBestEffort or DanglingRecord are listed in Result.Errors instead.
func ReadAt(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("reader")
	done := logging.LogOperationStart(logger, "ReadAt")
	defer done()

	w := newWalker(opts, logger)
	root, err := w.read(ctx, filepath.Clean(path), "", nil, true)
	if err != nil {
		logger.Debug().Err(err).Str("path", path).Msg("Read aborted")
		return nil, err
	}

	w.errs.Sort()
	logger.Debug().
		Str("path", path).
		Bool("follow", w.follow).
		Int("nodes", root.Len()).
		Int("errors", len(w.errs)).
		Msg("Read finished")
	return &Result{Tree: root, Errors: w.errs}, nil
}

// Follow reads path resolving every symlink. Under best-effort the partial
// tree is returned together with the aggregated failures.
func Follow(ctx context.Context, path string, opts Options) (*tree.Node, error) {
	opts.Mode = types.ModeFollow
	return readTree(ctx, path, opts)
}

// Aware reads path recording symlinks as leaves. Under best-effort the
// partial tree is returned together with the aggregated failures.
func Aware(ctx context.Context, path string, opts Options) (*tree.Node, error) {
	opts.Mode = types.ModeAware
	return readTree(ctx, path, opts)
}

func readTree(ctx context.Context, path string, opts Options) (*tree.Node, error) {
	res, err := ReadAt(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return res.Tree, res.Errors.Err()
}

// frame is one directory on the active resolution path
type frame struct {
	id   filesystem.FileID
	rel  string
	full string

	// viaLink is set when the directory was reached through a symlink
	viaLink bool
}

type walker struct {
	fsys   filesystem.FS
	opts   Options
	follow bool
	logger zerolog.Logger

	// tokens bounds the goroutines spawned beyond the calling one
	tokens chan struct{}

	mu   sync.Mutex
	errs types.ErrorList
}

func newWalker(opts Options, logger zerolog.Logger) *walker {
	return &walker{
		fsys:   opts.fs(),
		opts:   opts,
		follow: opts.Mode.Follows(),
		logger: logger,
		tokens: make(chan struct{}, max(opts.Workers-1, 0)),
	}
}

// read classifies the entry at full and builds its node. A nil node with a
// nil error means the entry failed and was tolerated.
func (w *walker) read(ctx context.Context, full, rel string, ancestors []frame, root bool) (*tree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCancelled, "read cancelled").
			WithDetail(errors.DetailPath, rel)
	}

	info, err := w.fsys.Lstat(full)
	if err != nil {
		return w.fail(errors.FromOS(err, "lstat", rel, full), root)
	}

	viaLink := info.Mode()&fs.ModeSymlink != 0
	if viaLink {
		if !w.follow {
			target, err := w.fsys.Readlink(full)
			if err != nil {
				return w.fail(errors.FromOS(err, "readlink", rel, full), root)
			}
			return tree.NewSymlink(target), nil
		}
		resolved, err := w.fsys.Stat(full)
		if err != nil {
			return w.failLink(err, full, rel, root)
		}
		info = resolved
	}

	switch {
	case info.IsDir():
		return w.readDir(ctx, frame{rel: rel, full: full, viaLink: viaLink}, info, ancestors, root)
	case info.Mode().IsRegular():
		return tree.NewRegular(), nil
	default:
		return w.fail(errors.Newf(errors.ErrUnexpectedFileType, "%s has unsupported type %s", full, info.Mode().Type()).
			WithDetail(errors.DetailPath, rel).
			WithDetail(errors.DetailFullPath, full), root)
	}
}

func (w *walker) readDir(ctx context.Context, cur frame, info fs.FileInfo, ancestors []frame, root bool) (*tree.Node, error) {
	full, rel := cur.full, cur.rel
	if w.follow {
		if id, ok := filesystem.IdentityOf(w.fsys, info); ok {
			for i, f := range ancestors {
				if f.id == id {
					return w.fail(w.cycleError(closingLink(ancestors[i+1:], cur), cur, ancestors[i:]), root)
				}
			}
			cur.id = id
			// Full slice expression: siblings must not share the appended frame.
			ancestors = append(ancestors[:len(ancestors):len(ancestors)], cur)
		}
	}

	entries, err := w.fsys.ReadDir(full)
	if err != nil {
		return w.fail(errors.FromOS(err, "readdir", rel, full), root)
	}
	w.logger.Trace().Str("path", displayPath(rel)).Int("entries", len(entries)).Msg("Reading directory")

	children := make([]*tree.Node, len(entries))
	if err := w.readChildren(ctx, full, rel, entries, ancestors, children); err != nil {
		return nil, err
	}

	dir := tree.NewDir()
	for i, e := range entries {
		if children[i] == nil {
			continue
		}
		if _, err := dir.SetChild(e.Name(), children[i]); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "attaching %s", joinRel(rel, e.Name()))
		}
	}
	return dir, nil
}

// readChildren reads every entry into out, index for index. Entries are
// handed to spare workers when tokens are available and read inline
// otherwise. The failure reported is the one at the lowest index, which is
// the one a sequential walk would have hit first.
func (w *walker) readChildren(ctx context.Context, full, rel string, entries []fs.DirEntry, ancestors []frame, out []*tree.Node) error {
	errs := make([]error, len(entries))
	var g errgroup.Group

	for i, e := range entries {
		childFull := filepath.Join(full, e.Name())
		childRel := joinRel(rel, e.Name())
		task := func() {
			out[i], errs[i] = w.read(ctx, childFull, childRel, ancestors, false)
		}

		if w.tryAcquire() {
			g.Go(func() error {
				defer w.release()
				task()
				return nil
			})
			continue
		}
		task()
		if errs[i] != nil {
			break
		}
	}

	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) tryAcquire() bool {
	select {
	case w.tokens <- struct{}{}:
		return true
	default:
		return false
	}
}

func (w *walker) release() {
	<-w.tokens
}

// failLink turns a failed resolution of the link at full into the right
// failure: a missing target is a broken link, ELOOP is a cycle.
func (w *walker) failLink(err error, full, rel string, root bool) (*tree.Node, error) {
	switch errors.ClassifyOS(err) {
	case errors.ErrNotFound:
		target, _ := w.fsys.Readlink(full)
		broken := errors.Wrapf(err, errors.ErrBrokenSymlink, "broken symlink %s -> %s", full, target).
			WithDetail(errors.DetailPath, rel).
			WithDetail(errors.DetailFullPath, full)
		if w.opts.Dangling == types.DanglingRecord && !root {
			w.record(broken)
			return nil, nil
		}
		return w.fail(broken, root)
	case errors.ErrSymlinkCycle:
		// ELOOP: the links point at each other without reaching a directory
		entry := frame{rel: rel, full: full, viaLink: true}
		cycle := w.cycleError(entry, entry, nil)
		cycle.Wrapped = err
		return w.fail(cycle, root)
	default:
		return w.fail(errors.FromOS(err, "stat", rel, full), root)
	}
}

// closingLink picks the symlink that closed a loop: the entry that re-entered
// it when that entry is a link, otherwise the innermost link inside the loop.
func closingLink(inside []frame, reached frame) frame {
	if reached.viaLink {
		return reached
	}
	for i := len(inside) - 1; i >= 0; i-- {
		if inside[i].viaLink {
			return inside[i]
		}
	}
	return reached
}

// cycleError reports that the walk re-entered loop[0] at reached, through
// link. The path detail is reached, the entry left out of the tree; the link
// detail names the symlink that closed the loop. The chain lists the
// directories of the loop followed by reached.
func (w *walker) cycleError(link, reached frame, loop []frame) *errors.TreeError {
	chain := make([]string, 0, len(loop)+1)
	for _, f := range loop {
		chain = append(chain, displayPath(f.rel))
	}
	chain = append(chain, reached.rel)

	w.logger.Debug().Str("path", reached.rel).Str("link", link.rel).Strs("chain", chain).Msg("Symlink cycle detected")

	into := "itself"
	if len(loop) > 0 {
		into = displayPath(loop[0].rel)
	}
	return errors.Newf(errors.ErrSymlinkCycle, "symlink cycle: %s leads back into %s", displayPath(link.rel), into).
		WithDetail(errors.DetailPath, reached.rel).
		WithDetail(errors.DetailFullPath, reached.full).
		WithDetail(errors.DetailLink, link.rel).
		WithDetail(errors.DetailChain, chain)
}

// fail applies the error policy. Failures at the root always abort since
// there is no tree to return without it.
func (w *walker) fail(err *errors.TreeError, root bool) (*tree.Node, error) {
	if root || !w.opts.Policy.IsBestEffort() {
		return nil, err
	}
	w.record(err)
	return nil, nil
}

func (w *walker) record(err *errors.TreeError) {
	w.logger.Warn().Err(err).Str("path", err.Path()).Msg("Skipping entry")

	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs.Add(err)
}

func joinRel(rel, name string) string {
	if rel == "" {
		return name
	}
	return tree.JoinPath(rel, name)
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
