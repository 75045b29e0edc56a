// Package types defines the small value types shared by the reader and the
// writer: how symlinks are treated during a walk, how per-path failures are
// propagated, and the aggregated error list returned by best-effort runs.
package types
