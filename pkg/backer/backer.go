// Package backer defines the external "backer" collaborators the memory
// plugin consumes exactly once at initialization (spec §4.7): an initial
// memory image and an initial permissions map. A real engine supplies these
// from a parsed binary; this package also ships trivial slice-backed
// implementations for tests and the CLI demo.
package backer

import "symmem/pkg/region"

// Segment is one contiguous chunk of initial concrete memory content.
type Segment struct {
	Addr  uint64
	Bytes []byte
}

// MemoryBacker enumerates the initial concrete memory image.
type MemoryBacker interface {
	Segments() []Segment
}

// PermRange is one initial mapped-region entry.
type PermRange struct {
	Lo, Hi uint64
	Perms  region.Perm
}

// PermissionsBacker enumerates the initial mapped regions.
type PermissionsBacker interface {
	Ranges() []PermRange
}

// SliceMemoryBacker is a MemoryBacker over an explicit segment list.
type SliceMemoryBacker struct {
	segs []Segment
}

// NewSliceMemoryBacker returns a MemoryBacker over the given segments.
func NewSliceMemoryBacker(segs ...Segment) *SliceMemoryBacker {
	return &SliceMemoryBacker{segs: segs}
}

// Segments implements MemoryBacker.
func (b *SliceMemoryBacker) Segments() []Segment { return b.segs }

// SlicePermissionsBacker is a PermissionsBacker over an explicit range list.
type SlicePermissionsBacker struct {
	ranges []PermRange
}

// NewSlicePermissionsBacker returns a PermissionsBacker over the given ranges.
func NewSlicePermissionsBacker(ranges ...PermRange) *SlicePermissionsBacker {
	return &SlicePermissionsBacker{ranges: ranges}
}

// Ranges implements PermissionsBacker.
func (b *SlicePermissionsBacker) Ranges() []PermRange { return b.ranges }
