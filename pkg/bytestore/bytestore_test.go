package bytestore

import (
	"testing"

	"symmem/pkg/expr"
)

func TestSetGetRoundTrip(t *testing.T) {
	s := New()
	v := &expr.BVV{Value: 0x42, Bits: 8}
	s.Set(10, NewCell(v, 0))
	got := s.Get(10)
	if got == nil {
		t.Fatalf("Get(10) = nil after Set")
	}
	bv, ok := got.Byte().(*expr.BVV)
	if !ok || bv.Value != 0x42 {
		t.Fatalf("Get(10).Byte() = %v, want 0x42", got.Byte())
	}
}

func TestCellByteIsIdentityStableAtOffsetZero(t *testing.T) {
	bottom := &expr.BVS{Name: "bottom", Bits: 8}
	c := NewCell(bottom, 0)
	if c.Byte() != expr.Expression(bottom) {
		t.Fatalf("Cell.Byte() at offset 0 of an 8-bit source did not return the source identically")
	}
	if c.Byte() != c.Byte() {
		t.Fatalf("Cell.Byte() is not stable across repeated calls")
	}
}

func TestFindScansOnlyOverlappingPages(t *testing.T) {
	s := NewWithPageSize(16)
	s.Set(0, NewCell(&expr.BVV{Value: 1, Bits: 8}, 0))
	s.Set(100, NewCell(&expr.BVV{Value: 2, Bits: 8}, 0))
	got := s.Find(0, 10)
	if len(got) != 1 {
		t.Fatalf("Find(0, 10) = %d hits, want 1", len(got))
	}
}

func TestCloneIsLazyAndIndependent(t *testing.T) {
	s := New()
	s.Set(0, NewCell(&expr.BVV{Value: 1, Bits: 8}, 0))
	clone := s.Clone()

	clone.Set(0, NewCell(&expr.BVV{Value: 2, Bits: 8}, 0))
	orig := s.Get(0).Byte().(*expr.BVV).Value
	if orig != 1 {
		t.Fatalf("original mutated by write to clone: Get(0) = %d, want 1", orig)
	}
	cloned := clone.Get(0).Byte().(*expr.BVV).Value
	if cloned != 2 {
		t.Fatalf("clone value = %d, want 2", cloned)
	}
}

func TestDeleteRemovesCell(t *testing.T) {
	s := New()
	s.Set(5, NewCell(&expr.BVV{Value: 1, Bits: 8}, 0))
	s.Delete(5)
	if s.Get(5) != nil {
		t.Fatalf("Get(5) after Delete = %v, want nil", s.Get(5))
	}
}
