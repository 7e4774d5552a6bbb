// Package region tracks mapped address regions and their permissions, and
// implements the permission-check sweep of spec §4.3. Ported from the
// sweep-with-last_covered algorithm in memsight's
// check_sigsegv_and_refine (naive_fully_symbolic_memory.py), re-expressed
// against the pkg/solver collaborator interface instead of claripy.
package region

import (
	"fmt"
	"sort"

	"symmem/pkg/expr"
	"symmem/pkg/solver"
)

// Perm is the permissions bitfield: bit 0 = read, bit 1 = write, bit 2 = execute.
type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Exec
)

func (p Perm) String() string {
	s := ""
	if p&Read != 0 {
		s += "r"
	}
	if p&Write != 0 {
		s += "w"
	}
	if p&Exec != 0 {
		s += "x"
	}
	return s
}

// Region is a contiguous span of addresses with uniform permissions,
// covering the half-open range [Base, Base+Length).
type Region struct {
	Base, Length uint64
	Perms        Perm
}

// end returns the exclusive upper bound of r; Base+Length itself is not part
// of the region.
func (r Region) end() uint64 { return r.Base + r.Length }

// AccessKind distinguishes a read from a write access for SegFault reporting.
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
)

func (k AccessKind) String() string {
	if k == AccessWrite {
		return "write"
	}
	return "read"
}

// SegFault is raised when an access touches an address outside every mapped
// region, or inside a region lacking the required permission.
type SegFault struct {
	Addr       uint64
	Kind       AccessKind
	Min, Max   uint64
}

func (e *SegFault) Error() string {
	return fmt.Sprintf("segfault: invalid %s access at 0x%x (range [0x%x, 0x%x])", e.Kind, e.Addr, e.Min, e.Max)
}

// Table is an ordered, non-overlapping set of mapped regions.
type Table struct {
	regions []Region
}

// NewTable returns an empty region table.
func NewTable() *Table { return &Table{} }

// Map appends a new region and keeps the table sorted by base address.
func (t *Table) Map(addr, length uint64, perms Perm) {
	t.regions = append(t.regions, Region{Base: addr, Length: length, Perms: perms})
	sort.Slice(t.regions, func(i, j int) bool { return t.regions[i].Base < t.regions[j].Base })
}

// Unmap removes the region with the given base address, if any. Reports
// whether a region was removed.
func (t *Table) Unmap(addr uint64) bool {
	for i, r := range t.regions {
		if r.Base == addr {
			t.regions = append(t.regions[:i], t.regions[i+1:]...)
			return true
		}
	}
	return false
}

// Permissions returns the permissions of the region containing addr.
func (t *Table) Permissions(addr uint64) (Perm, bool) {
	for _, r := range t.regions {
		if addr >= r.Base && addr < r.end() {
			return r.Perms, true
		}
	}
	return 0, false
}

// Regions returns a copy of the sorted region list.
func (t *Table) Regions() []Region {
	out := make([]Region, len(t.regions))
	copy(out, t.regions)
	return out
}

// Clone returns a Table with an independent copy of the region list (region
// tables are small and never shared via copy-on-write in this plugin).
func (t *Table) Clone() *Table {
	return &Table{regions: append([]Region(nil), t.regions...)}
}

// CheckAccess walks the mapped regions in order, maintaining the "last
// covered" high-water mark described in spec §4.3. It fails with a SegFault
// if any address the solver can show addrExpr could take within [min, max]
// falls outside every region, or inside a region lacking the required
// permission bit.
func (t *Table) CheckAccess(s solver.Solver, addrExpr expr.Expression, min, max uint64, isWrite bool) *SegFault {
	kind := AccessRead
	required := Read
	if isWrite {
		kind = AccessWrite
		required = Write
	}

	if len(t.regions) == 0 {
		return &SegFault{Addr: min, Kind: kind, Min: min, Max: max}
	}

	width := addrExpr.Width()
	bvv := func(v uint64) *expr.BVV { return &expr.BVV{Value: v, Bits: width} }

	// lastCovered tracks the highest address index already accounted for;
	// -1 (via hadCovered=false) stands in for "min-1" without needing a
	// signed/unsigned dance at address 0.
	var lastCovered uint64
	hadCovered := false
	if min > 0 {
		lastCovered = min - 1
		hadCovered = true
	}

	for _, r := range t.regions {
		if r.Length == 0 {
			continue
		}
		if max < r.Base {
			break
		}
		regionEnd := r.end()
		// regionEnd is exclusive, so the last address this region actually
		// covers is regionEnd-1; a region is already fully subsumed by
		// lastCovered once lastCovered reaches that address.
		if hadCovered && lastCovered+1 >= regionEnd {
			continue
		}

		gapLo := uint64(0)
		if hadCovered {
			gapLo = lastCovered + 1
		}

		if gapLo < r.Base {
			if s.Satisfiable(expr.Ge(addrExpr, bvv(gapLo)), expr.Lt(addrExpr, bvv(r.Base))) {
				return &SegFault{Addr: gapLo, Kind: kind, Min: min, Max: max}
			}
		}

		upper := regionEnd - 1
		if max < upper {
			upper = max
		}
		if r.Perms&required == 0 {
			if s.Satisfiable(expr.Ge(addrExpr, bvv(gapLo)), expr.Le(addrExpr, bvv(upper))) {
				return &SegFault{Addr: gapLo, Kind: kind, Min: min, Max: max}
			}
		}

		if max >= regionEnd {
			lastCovered = regionEnd - 1
		} else {
			lastCovered = max
		}
		hadCovered = true
	}

	if !hadCovered || lastCovered < max {
		addr := min
		if hadCovered {
			addr = lastCovered + 1
		}
		return &SegFault{Addr: addr, Kind: kind, Min: min, Max: max}
	}

	return nil
}
