// Package expr defines the expression AST exchanged with the solver
// collaborator. Expressions are immutable and compared only by identity or
// through the solver; the plugin never inspects more than an expression's
// op tag and its args.
package expr

import "fmt"

// Expression is the interface implemented by every AST node. It carries no
// behavior of its own: the solver collaborator is the only thing that
// understands an expression's semantics.
type Expression interface {
	// Width returns the bit width of the expression.
	Width() int
	expressionNode()
}

// BVV is a concrete bitvector constant of known width.
type BVV struct {
	Value uint64
	Bits  int
}

func (b *BVV) Width() int      { return b.Bits }
func (b *BVV) expressionNode() {}

func (b *BVV) String() string { return fmt.Sprintf("0x%x<%d>", b.Value, b.Bits) }

// BVS is a symbolic bitvector identified by name.
type BVS struct {
	Name string
	Bits int
}

func (s *BVS) Width() int      { return s.Bits }
func (s *BVS) expressionNode() {}

func (s *BVS) String() string { return fmt.Sprintf("%s<%d>", s.Name, s.Bits) }

// If is a ternary expression: Cond selects between Then and Else.
type If struct {
	Cond Expression
	Then Expression
	Else Expression
}

func (i *If) Width() int      { return i.Then.Width() }
func (i *If) expressionNode() {}

// Concat appends Args left-to-right (Args[0] is the most significant chunk).
type Concat struct {
	Args []Expression
}

func (c *Concat) Width() int {
	w := 0
	for _, a := range c.Args {
		w += a.Width()
	}
	return w
}
func (c *Concat) expressionNode() {}

// Extract pulls out bits [Low, High] (inclusive) of Inner.
type Extract struct {
	High, Low int
	Inner     Expression
}

func (e *Extract) Width() int      { return e.High - e.Low + 1 }
func (e *Extract) expressionNode() {}

// CompareOp enumerates the comparison/boolean operators used by Bool.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
)

// Bool is a 1-bit boolean expression built from a comparison or a boolean
// combinator. Exactly one of (Left/Op/Right) or (BoolArgs) is meaningful:
// BoolArgs when IsOr, IsAnd or IsNot is set, otherwise Left/Op/Right.
type Bool struct {
	Op          CompareOp
	Left, Right Expression
	IsOr        bool
	IsAnd       bool
	IsNot       bool
	BoolArgs    []Expression
}

func (b *Bool) Width() int      { return 1 }
func (b *Bool) expressionNode() {}

// Add is integer addition over equal-width operands.
type Add struct {
	Left, Right Expression
}

func (a *Add) Width() int      { return a.Left.Width() }
func (a *Add) expressionNode() {}

// Eq builds an equality comparison.
func Eq(a, b Expression) *Bool { return &Bool{Op: OpEq, Left: a, Right: b} }

// Neq builds a disequality comparison.
func Neq(a, b Expression) *Bool { return &Bool{Op: OpNeq, Left: a, Right: b} }

// Lt, Le, Gt, Ge build unsigned integer ordering comparisons.
func Lt(a, b Expression) *Bool { return &Bool{Op: OpLt, Left: a, Right: b} }
func Le(a, b Expression) *Bool { return &Bool{Op: OpLe, Left: a, Right: b} }
func Gt(a, b Expression) *Bool { return &Bool{Op: OpGt, Left: a, Right: b} }
func Ge(a, b Expression) *Bool { return &Bool{Op: OpGe, Left: a, Right: b} }

// Or builds an n-ary disjunction. A single argument is returned unwrapped.
func Or(args ...Expression) Expression {
	if len(args) == 1 {
		return args[0]
	}
	return &Bool{IsOr: true, BoolArgs: args}
}

// And builds an n-ary conjunction. A single argument is returned unwrapped.
func And(args ...Expression) Expression {
	if len(args) == 1 {
		return args[0]
	}
	return &Bool{IsAnd: true, BoolArgs: args}
}

// Not negates a boolean expression.
func Not(a Expression) Expression {
	return &Bool{IsNot: true, BoolArgs: []Expression{a}}
}

// ITE is the exported constructor for If, named after spec §4's vocabulary.
func ITE(cond, then, els Expression) Expression {
	if cond == nil {
		return then
	}
	if b, ok := cond.(*Bool); ok && b.Op == OpEq && sameIdentity(then, els) {
		return then
	}
	return &If{Cond: cond, Then: then, Else: els}
}

func sameIdentity(a, b Expression) bool { return a == b }

// IsConcrete reports whether an expression's AST is a single constant: the
// cheap, solver-free concreteness check the plugin uses before falling back
// to the solver's min/max bracketing.
func IsConcrete(e Expression) (uint64, bool) {
	if v, ok := e.(*BVV); ok {
		return v.Value, true
	}
	return 0, false
}
