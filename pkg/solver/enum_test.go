package solver

import (
	"testing"

	"symmem/pkg/expr"
)

func TestEqualityNarrowsDomain(t *testing.T) {
	s := NewEnumSolver()
	v := &expr.BVS{Name: "s", Bits: 8}
	s.AddConstraints(expr.Eq(v, &expr.BVV{Value: 3, Bits: 8}))
	if got := s.MinInt(v); got != 3 {
		t.Fatalf("MinInt = %d, want 3", got)
	}
	if got := s.MaxInt(v); got != 3 {
		t.Fatalf("MaxInt = %d, want 3", got)
	}
}

func TestOrOfEqualitiesNarrowsToSet(t *testing.T) {
	s := NewEnumSolver()
	v := &expr.BVS{Name: "s", Bits: 8}
	s.AddConstraints(expr.Or(
		expr.Eq(v, &expr.BVV{Value: 0, Bits: 8}),
		expr.Eq(v, &expr.BVV{Value: 1, Bits: 8}),
		expr.Eq(v, &expr.BVV{Value: 2, Bits: 8}),
	))
	got := s.EvalUpto(v, 10)
	if len(got) != 3 {
		t.Fatalf("EvalUpto = %v, want 3 solutions", got)
	}
	if s.MinInt(v) != 0 || s.MaxInt(v) != 2 {
		t.Fatalf("bounds = [%d, %d], want [0, 2]", s.MinInt(v), s.MaxInt(v))
	}
}

func TestOrderingNarrowsRange(t *testing.T) {
	s := NewEnumSolver()
	v := &expr.BVS{Name: "s", Bits: 8}
	s.AddConstraints(expr.Ge(v, &expr.BVV{Value: 5, Bits: 8}))
	s.AddConstraints(expr.Le(v, &expr.BVV{Value: 10, Bits: 8}))
	if s.MinInt(v) != 5 || s.MaxInt(v) != 10 {
		t.Fatalf("bounds = [%d, %d], want [5, 10]", s.MinInt(v), s.MaxInt(v))
	}
}

func TestSatisfiableDoesNotMutate(t *testing.T) {
	s := NewEnumSolver()
	v := &expr.BVS{Name: "s", Bits: 8}
	s.AddConstraints(expr.Ge(v, &expr.BVV{Value: 5, Bits: 8}))
	if !s.Satisfiable(expr.Eq(v, &expr.BVV{Value: 7, Bits: 8})) {
		t.Fatalf("expected satisfiable")
	}
	if s.MinInt(v) != 5 {
		t.Fatalf("Satisfiable mutated domain: MinInt = %d, want 5", s.MinInt(v))
	}
	if s.Satisfiable(expr.Eq(v, &expr.BVV{Value: 1, Bits: 8})) {
		t.Fatalf("expected unsatisfiable: 1 < 5")
	}
}

func TestSameValueAndDisjoint(t *testing.T) {
	s := NewEnumSolver()
	a := &expr.BVV{Value: 1, Bits: 8}
	b := &expr.BVV{Value: 1, Bits: 8}
	c := &expr.BVV{Value: 2, Bits: 8}
	if !SameValue(s, a, b) {
		t.Fatalf("SameValue(1, 1) = false")
	}
	if !Disjoint(s, a, c) {
		t.Fatalf("Disjoint(1, 2) = false")
	}
}

func TestSimplifyCollapsedVariable(t *testing.T) {
	s := NewEnumSolver()
	v := &expr.BVS{Name: "s", Bits: 8}
	s.AddConstraints(expr.Eq(v, &expr.BVV{Value: 9, Bits: 8}))
	got := s.Simplify(v)
	bv, ok := got.(*expr.BVV)
	if !ok || bv.Value != 9 {
		t.Fatalf("Simplify(v) = %v, want BVV{9}", got)
	}
}
