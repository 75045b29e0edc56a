package reader

import (
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/arthur-debert/fstree/pkg/types"
)

// Options configures a read
type Options struct {
	// Mode selects symlink handling; the zero value follows links
	Mode types.ReadMode

	// Policy decides between abort-on-first-error and best-effort
	Policy types.ErrorPolicy

	// Dangling decides how a following read treats a link to nothing
	Dangling types.DanglingPolicy

	// Workers > 1 reads sibling subtrees concurrently
	Workers int

	// FS is the filesystem to read; nil means the OS filesystem
	FS filesystem.FS
}

// Validate rejects unknown policy values.
func (o Options) Validate() error {
	for _, v := range []interface{ Validate() error }{o.Mode, o.Policy, o.Dangling} {
		if err := v.Validate(); err != nil {
			return errors.Wrap(err, errors.ErrInvalidInput, "invalid read options")
		}
	}
	if o.Workers < 0 {
		return errors.Newf(errors.ErrInvalidInput, "invalid read options: negative worker count %d", o.Workers)
	}
	return nil
}

func (o Options) fs() filesystem.FS {
	if o.FS == nil {
		return filesystem.NewOS()
	}
	return o.FS
}

// Result is the outcome of a walk that did not abort
type Result struct {
	// Tree is the tree read; in best-effort mode failing entries are absent
	Tree *tree.Node

	// Errors lists the per-entry failures that were tolerated, sorted by path
	Errors types.ErrorList
}

// OK reports whether the walk completed without tolerated failures.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}
