package solver

import "symmem/pkg/expr"

// EnumSolver is a reference Solver that tracks each symbolic variable's
// feasible domain as either an explicit finite set (set by an equality or
// disjunction-of-equalities constraint) or a closed numeric range [lo, hi]
// (narrowed by ordering constraints). It brackets expression values by
// recursively combining operand ranges rather than doing general SMT
// solving, mirroring the min/max-bracketing strategy spec §9 prescribes for
// the real collaborator.
type EnumSolver struct {
	vars map[string]*varDomain
}

type varDomain struct {
	bits     int
	explicit map[uint64]bool // nil means "use range"
	lo, hi   uint64
}

// NewEnumSolver returns an EnumSolver with no constraints yet recorded.
func NewEnumSolver() *EnumSolver {
	return &EnumSolver{vars: make(map[string]*varDomain)}
}

func fullRange(bits int) (uint64, uint64) {
	if bits >= 64 {
		return 0, ^uint64(0)
	}
	return 0, (uint64(1) << uint(bits)) - 1
}

func (s *EnumSolver) domainFor(v *expr.BVS) *varDomain {
	d, ok := s.vars[v.Name]
	if !ok {
		lo, hi := fullRange(v.Bits)
		d = &varDomain{bits: v.Bits, lo: lo, hi: hi}
		s.vars[v.Name] = d
	}
	return d
}

// AddConstraints narrows variable domains in place. It understands equality,
// disjunction-of-equality, and ordering constraints over a single variable;
// anything else is accepted but has no narrowing effect (a safe
// over-approximation, consistent with spec §3's note that stale, over-wide
// ranges are tolerated).
func (s *EnumSolver) AddConstraints(cs ...expr.Expression) {
	for _, c := range cs {
		s.narrow(c, true)
	}
}

// narrow applies constraint c to s's domains in place. The commit flag is
// only passed down to nested calls and does not change the behavior;
// Satisfiable gets a non-mutating check by narrowing a clone of s.
func (s *EnumSolver) narrow(c expr.Expression, commit bool) {
	b, ok := c.(*expr.Bool)
	if !ok {
		return
	}
	switch {
	case b.IsAnd:
		for _, a := range b.BoolArgs {
			s.narrow(a, commit)
		}
	case b.IsOr:
		// Only handle Or of equalities against the same variable: collect
		// the union of constants and intersect with the existing domain.
		var v *expr.BVS
		consts := make(map[uint64]bool)
		ok := true
		for _, a := range b.BoolArgs {
			eb, isBool := a.(*expr.Bool)
			if !isBool || eb.Op != expr.OpEq {
				ok = false
				break
			}
			vv, c, matched := splitVarConst(eb)
			if !matched {
				ok = false
				break
			}
			if v == nil {
				v = vv
			} else if v.Name != vv.Name {
				ok = false
				break
			}
			consts[c] = true
		}
		if ok && v != nil {
			d := s.domainFor(v)
			intersectExplicit(d, consts)
		}
	case b.Op == expr.OpEq:
		if v, c, matched := splitVarConst(b); matched {
			d := s.domainFor(v)
			intersectExplicit(d, map[uint64]bool{c: true})
		}
	case b.Op == expr.OpGe, b.Op == expr.OpGt, b.Op == expr.OpLe, b.Op == expr.OpLt:
		applyOrdering(s, b)
	}
}

func splitVarConst(b *expr.Bool) (*expr.BVS, uint64, bool) {
	if v, ok := b.Left.(*expr.BVS); ok {
		if c, ok := b.Right.(*expr.BVV); ok {
			return v, c.Value, true
		}
	}
	if v, ok := b.Right.(*expr.BVS); ok {
		if c, ok := b.Left.(*expr.BVV); ok {
			return v, c.Value, true
		}
	}
	return nil, 0, false
}

func intersectExplicit(d *varDomain, with map[uint64]bool) {
	if d.explicit == nil {
		d.explicit = make(map[uint64]bool, len(with))
		for k := range with {
			if k >= d.lo && k <= d.hi {
				d.explicit[k] = true
			}
		}
		return
	}
	for k := range d.explicit {
		if !with[k] {
			delete(d.explicit, k)
		}
	}
}

func applyOrdering(s *EnumSolver, b *expr.Bool) {
	v, ok := b.Left.(*expr.BVS)
	if ok {
		if c, ok := b.Right.(*expr.BVV); ok {
			narrowRange(s.domainFor(v), b.Op, c.Value, true)
			return
		}
	}
	if v, ok := b.Right.(*expr.BVS); ok {
		if c, ok := b.Left.(*expr.BVV); ok {
			narrowRange(s.domainFor(v), flip(b.Op), c.Value, true)
		}
	}
}

func flip(op expr.CompareOp) expr.CompareOp {
	switch op {
	case expr.OpGe:
		return expr.OpLe
	case expr.OpGt:
		return expr.OpLt
	case expr.OpLe:
		return expr.OpGe
	case expr.OpLt:
		return expr.OpGt
	}
	return op
}

// narrowRange applies "var OP const" to d, e.g. (Ge, 5) means var >= 5.
func narrowRange(d *varDomain, op expr.CompareOp, c uint64, varOnLeft bool) {
	if d.explicit != nil {
		for k := range d.explicit {
			if !satisfiesOrdering(k, op, c) {
				delete(d.explicit, k)
			}
		}
		return
	}
	switch op {
	case expr.OpGe:
		if c > d.lo {
			d.lo = c
		}
	case expr.OpGt:
		if c+1 > d.lo {
			d.lo = c + 1
		}
	case expr.OpLe:
		if c < d.hi {
			d.hi = c
		}
	case expr.OpLt:
		if c > 0 && c-1 < d.hi {
			d.hi = c - 1
		} else if c == 0 {
			d.hi, d.lo = 0, 1 // empty: lo > hi
		}
	}
}

func satisfiesOrdering(v uint64, op expr.CompareOp, c uint64) bool {
	switch op {
	case expr.OpGe:
		return v >= c
	case expr.OpGt:
		return v > c
	case expr.OpLe:
		return v <= c
	case expr.OpLt:
		return v < c
	}
	return true
}

// MinInt returns the smallest value e can take given recorded constraints.
func (s *EnumSolver) MinInt(e expr.Expression) uint64 {
	lo, _ := s.bounds(e)
	return lo
}

// MaxInt returns the largest value e can take given recorded constraints.
func (s *EnumSolver) MaxInt(e expr.Expression) uint64 {
	_, hi := s.bounds(e)
	return hi
}

func (s *EnumSolver) bounds(e expr.Expression) (uint64, uint64) {
	switch v := e.(type) {
	case *expr.BVV:
		return v.Value, v.Value
	case *expr.BVS:
		d := s.domainFor(v)
		if d.explicit != nil {
			return minMaxSet(d.explicit)
		}
		return d.lo, d.hi
	case *expr.Add:
		l0, l1 := s.bounds(v.Left)
		r0, r1 := s.bounds(v.Right)
		return l0 + r0, l1 + r1
	case *expr.If:
		t0, t1 := s.bounds(v.Then)
		e0, e1 := s.bounds(v.Else)
		lo, hi := t0, t1
		if e0 < lo {
			lo = e0
		}
		if e1 > hi {
			hi = e1
		}
		return lo, hi
	case *expr.Extract:
		// Conservative: full range of the extracted width.
		return fullRange(v.Width())
	case *expr.Concat:
		return fullRange(v.Width())
	}
	return fullRange(e.Width())
}

func minMaxSet(m map[uint64]bool) (uint64, uint64) {
	first := true
	var lo, hi uint64
	for k := range m {
		if first {
			lo, hi = k, k
			first = false
			continue
		}
		if k < lo {
			lo = k
		}
		if k > hi {
			hi = k
		}
	}
	if first {
		return 1, 0 // empty domain: lo > hi signals unsatisfiable
	}
	return lo, hi
}

// Symbolic reports whether e's value is not pinned to a single constant by
// currently recorded constraints.
func (s *EnumSolver) Symbolic(e expr.Expression) bool {
	if _, ok := expr.IsConcrete(e); ok {
		return false
	}
	lo, hi := s.bounds(e)
	return lo != hi
}

// Simplify folds what it can and otherwise returns e unchanged; when a
// variable's domain has collapsed to one value it is substituted.
func (s *EnumSolver) Simplify(e expr.Expression) expr.Expression {
	switch v := e.(type) {
	case *expr.BVS:
		d := s.domainFor(v)
		if d.explicit != nil {
			if lo, hi := minMaxSet(d.explicit); lo == hi {
				return &expr.BVV{Value: lo, Bits: v.Bits}
			}
		} else if d.lo == d.hi {
			return &expr.BVV{Value: d.lo, Bits: v.Bits}
		}
		return v
	case *expr.Concat:
		parts := make([]expr.Expression, len(v.Args))
		for i, a := range v.Args {
			parts[i] = s.Simplify(a)
		}
		return expr.ConcatBytes(parts...)
	default:
		return e
	}
}

// EvalUpto returns up to n satisfying integer solutions for e.
func (s *EnumSolver) EvalUpto(e expr.Expression, n int) []uint64 {
	if v, ok := e.(*expr.BVS); ok {
		d := s.domainFor(v)
		if d.explicit != nil {
			out := make([]uint64, 0, len(d.explicit))
			for k := range d.explicit {
				out = append(out, k)
				if len(out) == n {
					break
				}
			}
			return out
		}
		out := make([]uint64, 0, n)
		for i := d.lo; i <= d.hi && len(out) < n; i++ {
			out = append(out, i)
			if i == ^uint64(0) {
				break
			}
		}
		return out
	}
	if c, ok := expr.IsConcrete(e); ok {
		return []uint64{c}
	}
	lo, hi := s.bounds(e)
	out := make([]uint64, 0, n)
	for i := lo; i <= hi && len(out) < n; i++ {
		out = append(out, i)
		if i == ^uint64(0) {
			break
		}
	}
	return out
}

// Satisfiable reports whether the conjunction of all previously recorded
// constraints plus extra is satisfiable, without mutating s's state.
func (s *EnumSolver) Satisfiable(extra ...expr.Expression) bool {
	if len(extra) == 0 {
		return s.allNonEmpty()
	}
	scratch := s.clone()
	for _, c := range extra {
		scratch.narrow(c, true)
	}
	return scratch.allNonEmpty()
}

func (s *EnumSolver) allNonEmpty() bool {
	for _, d := range s.vars {
		if d.explicit != nil {
			if len(d.explicit) == 0 {
				return false
			}
			continue
		}
		if d.lo > d.hi {
			return false
		}
	}
	return true
}

func (s *EnumSolver) clone() *EnumSolver {
	out := &EnumSolver{vars: make(map[string]*varDomain, len(s.vars))}
	for k, d := range s.vars {
		nd := &varDomain{bits: d.bits, lo: d.lo, hi: d.hi}
		if d.explicit != nil {
			nd.explicit = make(map[uint64]bool, len(d.explicit))
			for kk, vv := range d.explicit {
				nd.explicit[kk] = vv
			}
		}
		out.vars[k] = nd
	}
	return out
}
