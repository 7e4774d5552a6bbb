package memplugin

import (
	"fmt"

	"symmem/pkg/archinfo"
	"symmem/pkg/expr"
)

// symPayload is the pitree payload for a symbolic-address entry: the exact
// address expression that produced the entry plus the byte it currently
// holds (spec §3's "symbolic-address entry").
type symPayload struct {
	AddrExpr expr.Expression
	Byte     expr.Expression
}

// resolveAddr brackets addr to [min, max] via the solver, or reads it off
// directly when addr is already concrete (spec §4.4/§4.5 "address range").
func (p *Plugin) resolveAddr(addr expr.Expression) (min, max uint64, err error) {
	if v, ok := expr.IsConcrete(addr); ok {
		return v, v, nil
	}
	lo := p.solver.MinInt(addr)
	hi := p.solver.MaxInt(addr)
	if lo > hi {
		return 0, 0, &Unsatisfiable{Reason: "address expression has an empty range under current constraints"}
	}
	return lo, hi, nil
}

// resolveSize concretizes a size expression, forcing it to its maximum
// feasible value and recording that as a path constraint when it is
// symbolic (spec §4.4 "pre-processing"), and enforces the concrete/symbolic
// size caps.
func (p *Plugin) resolveSize(size expr.Expression) (uint64, error) {
	if v, ok := expr.IsConcrete(size); ok {
		if v > p.cfg.MaximumConcreteSize {
			return 0, &MemoryLimitExceeded{Size: v}
		}
		return v, nil
	}
	max := p.solver.MaxInt(size)
	if max > p.cfg.MaximumSymbolicSize {
		return 0, &MemoryLimitExceeded{Size: max}
	}
	if !p.solver.Satisfiable(expr.Eq(size, &expr.BVV{Value: max, Bits: size.Width()})) {
		return 0, &Unsatisfiable{Reason: "forced size concretization is unsatisfiable"}
	}
	p.solver.AddConstraints(expr.Eq(size, &expr.BVV{Value: max, Bits: size.Width()}))
	p.log("concretized symbolic size to %d (forced, non-fatal)", max)
	return max, nil
}

func (p *Plugin) resolveEndness(override *archinfo.Endness) archinfo.Endness {
	if override != nil {
		return *override
	}
	return p.endness
}

// resolveRegAddr turns a register name into its fixed address and default
// size (spec §4.4 "if id=reg, accept a register name").
func (p *Plugin) resolveRegAddr(name string) (addr expr.Expression, defaultSize int, err error) {
	if p.id != KindReg {
		return nil, 0, &InternalError{Msg: "register access attempted on a non-reg plugin"}
	}
	if p.arch == nil {
		return nil, 0, &InternalError{Msg: "reg plugin has no arch metadata bound"}
	}
	a, size, rerr := p.arch.Resolve(name)
	if rerr != nil {
		return nil, 0, &InternalError{Msg: rerr.Error()}
	}
	return &expr.BVV{Value: a, Bits: p.arch.WordWidth}, size, nil
}

func sameByteValue(a, b expr.Expression) bool {
	if a == b {
		return true
	}
	av, aok := expr.IsConcrete(a)
	bv, bok := expr.IsConcrete(b)
	return aok && bok && av == bv
}

func bottomName(id Kind, min uint64, k int) string {
	return fmt.Sprintf("bottom_%s_0x%x_%d", id, min, k)
}

// offsetAddr builds the address expression for byte offset k of a base
// address, folding the addition when the base is already concrete and
// skipping it entirely for k == 0.
func offsetAddr(addr expr.Expression, k int) expr.Expression {
	if k == 0 {
		return addr
	}
	if v, ok := expr.IsConcrete(addr); ok {
		return &expr.BVV{Value: v + uint64(k), Bits: addr.Width()}
	}
	return &expr.Add{Left: addr, Right: &expr.BVV{Value: uint64(k), Bits: addr.Width()}}
}
