package builder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/tree"
)

const (
	linkArrow  = " -> "
	commentTag = "#"
	dirSuffix  = "/"
)

// Parse reads path text from r and returns the tree it describes.
func Parse(r io.Reader) (*tree.Node, error) {
	b := New()
	if err := b.Parse(r); err != nil {
		return nil, err
	}
	return b.Build()
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) (*tree.Node, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads path text from r and inserts every entry into b. Errors carry
// the 1-based line number under the "line" detail.
func (b *Builder) Parse(r io.Reader) error {
	if b.err != nil {
		return b.err
	}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentTag) {
			continue
		}
		if err := b.parseLine(line, lineNo); err != nil {
			b.err = err
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		b.err = errors.Wrap(err, errors.ErrIO, "reading path text").
			WithDetail(errors.DetailLine, lineNo+1)
		return b.err
	}
	return nil
}

func (b *Builder) parseLine(line string, lineNo int) error {
	var (
		p    string
		node *tree.Node
	)
	// The line is already trimmed, so "l ->" with no target must still parse as a link.
	padded := line + " "
	switch {
	case strings.Contains(padded, linkArrow):
		i := strings.Index(padded, linkArrow)
		p = strings.TrimSpace(padded[:i])
		target := strings.TrimSpace(padded[i+len(linkArrow):])
		if target == "" {
			return errors.Newf(errors.ErrInvalidInput, "line %d: symlink %q has no target", lineNo, p).
				WithDetail(errors.DetailLine, lineNo).
				WithDetail(errors.DetailPath, p)
		}
		node = tree.NewSymlink(target)
	case strings.HasSuffix(line, dirSuffix):
		p = strings.TrimSuffix(line, dirSuffix)
		node = tree.NewDir()
	default:
		p = line
		node = tree.NewRegular()
	}

	clean, err := cleanEntryPath(p)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInvalidPath, "line %d", lineNo).
			WithDetail(errors.DetailLine, lineNo).
			WithDetail(errors.DetailPath, p)
	}

	if node.IsDir() {
		b.Dir(clean)
	} else {
		b.Insert(clean, node)
	}
	if b.err != nil {
		err := b.err
		return errors.Wrapf(err, errors.GetErrorCode(err), "line %d", lineNo).
			WithDetail(errors.DetailLine, lineNo).
			WithDetail(errors.DetailPath, clean)
	}
	return nil
}

// cleanEntryPath drops a leading "./" and rejects absolute paths, empty
// segments, "." and ".." anywhere else.
func cleanEntryPath(p string) (string, error) {
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	if p == "" || p == "." {
		return "", errors.New(errors.ErrInvalidPath, "empty path")
	}
	if strings.HasPrefix(p, tree.Separator) {
		return "", errors.Newf(errors.ErrInvalidPath, "absolute path %q", p)
	}
	for _, seg := range strings.Split(p, tree.Separator) {
		if seg == "." {
			return "", errors.Newf(errors.ErrInvalidPath, "path %q has a %q segment", p, seg)
		}
		if err := tree.ValidateName(seg); err != nil {
			return "", err
		}
	}
	return p, nil
}

// Format writes root as path text, one entry per line in iteration order, so
// Parse(Format(t)) is structurally equal to t. Directories are written with
// their trailing slash even when they have children. A root that is not a
// directory has no path and cannot be formatted.
func Format(w io.Writer, root *tree.Node) error {
	if root == nil || !root.IsDir() {
		return errors.Newf(errors.ErrInvalidInput, "cannot format a %s root as path text", root.Describe())
	}
	for e := range root.Iter().All() {
		if err := checkFormattable(e); err != nil {
			return err
		}
		var line string
		switch e.Node.Kind() {
		case tree.Directory:
			line = e.Path + dirSuffix
		case tree.Symlink:
			line = e.Path + linkArrow + e.Node.Target()
		default:
			line = e.Path
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return errors.Wrap(err, errors.ErrIO, "writing path text")
		}
	}
	return nil
}

// FormatString is Format into a string.
func FormatString(root *tree.Node) (string, error) {
	var sb strings.Builder
	if err := Format(&sb, root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// checkFormattable rejects entries that Parse would read back differently.
func checkFormattable(e tree.Entry) error {
	bad := strings.ContainsAny(e.Path, "\n\r") ||
		strings.Contains(e.Path, linkArrow) ||
		strings.HasPrefix(e.Path, commentTag) ||
		e.Path != strings.TrimSpace(e.Path)
	if e.Node.IsSymlink() {
		target := e.Node.Target()
		bad = bad || target == "" || strings.ContainsAny(target, "\n\r") || target != strings.TrimSpace(target)
	}
	if bad {
		return errors.Newf(errors.ErrInvalidPath, "entry %q has no path-text form", e.Path).
			WithDetail(errors.DetailPath, e.Path)
	}
	return nil
}
