package writer

import (
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/filesystem"
	"github.com/arthur-debert/fstree/pkg/types"
)

// Options configures a write
type Options struct {
	// Overwrite replaces entries whose kind conflicts with the tree
	Overwrite bool

	// Policy decides between abort-on-first-error and best-effort
	Policy types.ErrorPolicy

	// Atomic runs the write as a single transaction on the OS filesystem
	Atomic bool

	// FS is the filesystem to write to; nil means the OS filesystem
	FS filesystem.FS
}

// Validate rejects unknown policies and combinations atomic mode cannot honour.
func (o Options) Validate() error {
	if err := o.Policy.Validate(); err != nil {
		return errors.Wrap(err, errors.ErrInvalidInput, "invalid write options")
	}
	if !o.Atomic {
		return nil
	}
	switch {
	case o.Overwrite:
		return errors.New(errors.ErrInvalidInput, "invalid write options: atomic writes never overwrite existing entries")
	case o.Policy.IsBestEffort():
		return errors.New(errors.ErrInvalidInput, "invalid write options: atomic writes are all-or-nothing, not best-effort")
	case o.FS != nil:
		return errors.New(errors.ErrInvalidInput, "invalid write options: atomic writes run on the OS filesystem")
	}
	return nil
}

func (o Options) fs() filesystem.FS {
	if o.FS == nil {
		return filesystem.NewOS()
	}
	return o.FS
}

// Report describes what a write did. Paths are relative to the target; the
// target itself is ".".
type Report struct {
	// Created lists entries that did not exist before, in write order
	Created []string

	// Replaced lists conflicting entries removed and recreated under Overwrite
	Replaced []string

	// Unchanged lists entries that already existed with the right kind
	Unchanged []string

	// Errors lists failures tolerated under PolicyBestEffort, sorted by path
	Errors types.ErrorList
}

// OK reports whether the write completed without tolerated failures.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}
