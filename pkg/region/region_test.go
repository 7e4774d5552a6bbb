package region

import (
	"testing"

	"symmem/pkg/expr"
	"symmem/pkg/solver"
)

func TestCheckAccessFaultsOutsideMappedRegions(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x1000, Read|Write)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0xdead0000, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0xdead0000, 0xdead0000, true)
	if sf == nil {
		t.Fatalf("CheckAccess on unmapped address returned nil, want SegFault")
	}
}

func TestCheckAccessPassesInsideMappedRegion(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x1000, Read|Write)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0x10, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0x10, 0x10, false)
	if sf != nil {
		t.Fatalf("CheckAccess inside mapped region = %v, want nil", sf)
	}
}

func TestCheckAccessFaultsOnWrongPermission(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x1000, Read)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0x10, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0x10, 0x10, true)
	if sf == nil {
		t.Fatalf("CheckAccess write to read-only region returned nil, want SegFault")
	}
}

func TestUnmapRemovesRegion(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x1000, Read|Write)
	if !tbl.Unmap(0) {
		t.Fatalf("Unmap(0) = false, want true")
	}
	if _, ok := tbl.Permissions(0x10); ok {
		t.Fatalf("Permissions(0x10) ok after Unmap, want not-ok")
	}
}

func TestCheckAccessSpansMultipleRegions(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x10, Read|Write)
	tbl.Map(0x10, 0x10, Read|Write)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0x8, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0x8, 0x18, false)
	if sf != nil {
		t.Fatalf("CheckAccess across two contiguous regions = %v, want nil", sf)
	}
}

// TestPermissionsExcludesRegionEnd checks the half-open boundary: a region
// mapped [Base, Base+Length) does not cover the byte at Base+Length.
func TestPermissionsExcludesRegionEnd(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x1000, Read|Write)

	if _, ok := tbl.Permissions(0x1000); ok {
		t.Fatalf("Permissions(0x1000) ok for region [0, 0x1000), want not-ok")
	}
	if _, ok := tbl.Permissions(0xfff); !ok {
		t.Fatalf("Permissions(0xfff) not-ok for region [0, 0x1000), want ok")
	}
}

// TestCheckAccessFaultsOnMultiByteAccessPastRegionEnd exercises a 2-byte
// access whose last touched byte lands exactly on a region's exclusive end:
// the access must fault even though its first byte is mapped.
func TestCheckAccessFaultsOnMultiByteAccessPastRegionEnd(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x10000, Read|Write)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0xffff, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0xffff, 0x10000, false)
	if sf == nil {
		t.Fatalf("CheckAccess for 2-byte load ending at region end = nil, want SegFault")
	}
}

// TestCheckAccessPassesAtLastMappedByte is the boundary-respecting
// counterpart: an access whose last touched byte is regionEnd-1 must pass.
func TestCheckAccessPassesAtLastMappedByte(t *testing.T) {
	tbl := NewTable()
	tbl.Map(0, 0x10000, Read|Write)
	s := solver.NewEnumSolver()

	addr := &expr.BVV{Value: 0xfffe, Bits: 64}
	sf := tbl.CheckAccess(s, addr, 0xfffe, 0xffff, false)
	if sf != nil {
		t.Fatalf("CheckAccess for 2-byte load ending at last mapped byte = %v, want nil", sf)
	}
}
