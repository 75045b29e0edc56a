package types

import (
	"fmt"
)

// ErrorPolicy decides what a walk does when a single entry fails
type ErrorPolicy string

const (
	// PolicyAbort stops at the first failing entry and returns no tree
	PolicyAbort ErrorPolicy = "abort"

	// PolicyBestEffort records the failure, skips the entry and keeps walking
	PolicyBestEffort ErrorPolicy = "best-effort"
)

// Validate reports whether p is a known policy. The empty value is accepted
// and means PolicyAbort.
func (p ErrorPolicy) Validate() error {
	switch p {
	case "", PolicyAbort, PolicyBestEffort:
		return nil
	}
	return fmt.Errorf("unknown error policy %q (want %q or %q)", string(p), PolicyAbort, PolicyBestEffort)
}

// IsBestEffort reports whether failures should be collected instead of aborting.
func (p ErrorPolicy) IsBestEffort() bool {
	return p == PolicyBestEffort
}

// ReadMode selects between the two reader entry points
type ReadMode string

const (
	// ModeFollow resolves every symlink; the resulting tree has no Symlink nodes
	ModeFollow ReadMode = "follow"

	// ModeAware records symlinks as leaves and never enters them
	ModeAware ReadMode = "aware"
)

// Validate reports whether m is a known mode. Empty means ModeFollow.
func (m ReadMode) Validate() error {
	switch m {
	case "", ModeFollow, ModeAware:
		return nil
	}
	return fmt.Errorf("unknown read mode %q (want %q or %q)", string(m), ModeFollow, ModeAware)
}

// Follows reports whether symlinks are resolved in this mode.
func (m ReadMode) Follows() bool {
	return m != ModeAware
}

// DanglingPolicy decides how the following reader treats a link whose target is missing
type DanglingPolicy string

const (
	// DanglingFail turns a broken link into a BrokenSymlink failure, subject to the ErrorPolicy
	DanglingFail DanglingPolicy = "fail"

	// DanglingRecord records the BrokenSymlink failure and keeps walking even under PolicyAbort
	DanglingRecord DanglingPolicy = "record"
)

// Validate reports whether d is a known dangling policy. Empty means DanglingFail.
func (d DanglingPolicy) Validate() error {
	switch d {
	case "", DanglingFail, DanglingRecord:
		return nil
	}
	return fmt.Errorf("unknown dangling policy %q (want %q or %q)", string(d), DanglingFail, DanglingRecord)
}

// UnmarshalText parses and validates a policy name.
func (p *ErrorPolicy) UnmarshalText(text []byte) error {
	v := ErrorPolicy(text)
	if err := v.Validate(); err != nil {
		return err
	}
	*p = v
	return nil
}

// UnmarshalText parses and validates a read mode name.
func (m *ReadMode) UnmarshalText(text []byte) error {
	v := ReadMode(text)
	if err := v.Validate(); err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalText parses and validates a dangling policy name.
func (d *DanglingPolicy) UnmarshalText(text []byte) error {
	v := DanglingPolicy(text)
	if err := v.Validate(); err != nil {
		return err
	}
	*d = v
	return nil
}
