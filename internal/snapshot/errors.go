// Package snapshot implements the .bvm (VM state) and .bdb (debugger state)
// binary formats described in spec §4.6: a fixed sequence of tagged,
// zero-terminated sections, built on the big-endian primitives in
// internal/bitpack.
package snapshot

import "errors"

// Snapshot error kinds, per spec §7.
var (
	ErrBadMagic     = errors.New("snapshot: bad magic")
	ErrTruncated    = errors.New("snapshot: truncated")
	ErrInconsistent = errors.New("snapshot: inconsistent")
)
