// Package solver defines the constraint-solver collaborator consumed by the
// memory plugin (spec §6) and a reference, enumeration-based implementation
// used by tests and the CLI demo. It is not a production SMT engine:
// building one is an explicit Non-goal of the memory subsystem this module
// implements.
package solver

import "symmem/pkg/expr"

// Solver is the collaborator surface the plugin relies on. Every method
// name matches spec §6's "Collaborators consumed" list.
type Solver interface {
	MinInt(e expr.Expression) uint64
	MaxInt(e expr.Expression) uint64
	Satisfiable(extra ...expr.Expression) bool
	Simplify(e expr.Expression) expr.Expression
	EvalUpto(e expr.Expression, n int) []uint64
	AddConstraints(cs ...expr.Expression)
	Symbolic(e expr.Expression) bool
}

// SameValue reports whether two expressions are provably equal under s.
// Identical expressions and pairs of constants are decided without a
// solver round trip.
func SameValue(s Solver, a, b expr.Expression) bool {
	if a == b {
		return true
	}
	av, aok := expr.IsConcrete(a)
	bv, bok := expr.IsConcrete(b)
	if aok && bok {
		return av == bv && a.Width() == b.Width()
	}
	return !s.Satisfiable(expr.Neq(a, b))
}

// Disjoint reports whether two expressions are provably never equal. Pairs
// of constants are compared directly.
func Disjoint(s Solver, a, b expr.Expression) bool {
	av, aok := expr.IsConcrete(a)
	bv, bok := expr.IsConcrete(b)
	if aok && bok {
		return av != bv
	}
	return !s.Satisfiable(expr.Eq(a, b))
}
