package types

import (
	"sort"
	"strings"

	"github.com/arthur-debert/fstree/pkg/errors"
)

// ErrorList collects the per-path failures of a best-effort run
type ErrorList []error

// Add appends err unless it is nil.
func (l *ErrorList) Add(err error) {
	if err == nil {
		return
	}
	*l = append(*l, err)
}

// Sort orders the list by the tree-relative path carried on each error so
// results do not depend on the order in which entries were visited.
func (l ErrorList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return pathOf(l[i]) < pathOf(l[j])
	})
}

// Err returns the list as an error, or nil when it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

func (l ErrorList) Error() string {
	msgs := make([]string, 0, len(l))
	for _, err := range l {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (l ErrorList) Unwrap() []error {
	return l
}

// Paths returns the tree-relative path of every failure, in list order.
func (l ErrorList) Paths() []string {
	paths := make([]string, 0, len(l))
	for _, err := range l {
		paths = append(paths, pathOf(err))
	}
	return paths
}

func pathOf(err error) string {
	if p, ok := errors.GetErrorDetails(err)[errors.DetailPath].(string); ok {
		return p
	}
	return ""
}
