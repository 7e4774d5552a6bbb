package memplugin

import (
	"sort"

	"symmem/pkg/archinfo"
	"symmem/pkg/bytestore"
	"symmem/pkg/expr"
	"symmem/pkg/solver"
)

// Load implements spec §4.4: resolve addr/size, enforce the permission
// check in strict mode, and compose the result byte-by-byte as a chain of
// if-then-else expressions over the paged byte store and the
// symbolic-address store.
func (p *Plugin) Load(addr, size expr.Expression, endness *archinfo.Endness, strictPerms bool) (expr.Expression, error) {
	return p.load(addr, size, endness, strictPerms)
}

// LoadReg resolves a register name to its fixed address (spec §4.4's
// reg-mode pre-processing) before delegating to the same composition logic.
func (p *Plugin) LoadReg(name string, size expr.Expression, endness *archinfo.Endness) (expr.Expression, error) {
	addr, defaultSize, err := p.resolveRegAddr(name)
	if err != nil {
		return nil, err
	}
	if size == nil {
		size = &expr.BVV{Value: uint64(defaultSize), Bits: 32}
	}
	return p.load(addr, size, endness, false)
}

func (p *Plugin) load(addrExpr, sizeExpr expr.Expression, endnessOverride *archinfo.Endness, strictPerms bool) (expr.Expression, error) {
	if p.solver == nil {
		return nil, &InternalError{Msg: "SetState was not called before load"}
	}
	sz, err := p.resolveSize(sizeExpr)
	if err != nil {
		return nil, err
	}
	if sz == 0 {
		return nil, &InternalError{Msg: "load size must be positive"}
	}
	min, max, err := p.resolveAddr(addrExpr)
	if err != nil {
		return nil, err
	}

	if strictPerms || p.cfg.StrictPageAccess {
		if sf := p.regions.CheckAccess(p.solver, addrExpr, min, max+sz-1, false); sf != nil {
			return nil, sf
		}
	}

	bytesMSBFirst := make([]expr.Expression, sz)
	for k := uint64(0); k < sz; k++ {
		bytesMSBFirst[k] = p.loadByte(addrExpr, min, max, int(k))
	}
	composed := expr.ConcatBytes(bytesMSBFirst...)
	if p.resolveEndness(endnessOverride) == archinfo.LittleEndian {
		composed = expr.Reverse(composed)
	}
	return composed, nil
}

// loadByte resolves the single byte at offset k of [min, max], implementing
// the case analysis of spec §4.4 steps 2-4.
func (p *Plugin) loadByte(addrExpr expr.Expression, min, max uint64, k int) expr.Expression {
	lo, hi := min+uint64(k), max+uint64(k)
	addrPlusK := offsetAddr(addrExpr, k)

	concreteHits := p.bytes.Find(lo, hi)
	symbolicHits := p.sym.Search(int64(lo), int64(hi)+1)

	var chain expr.Expression
	if len(concreteHits) == 1 && min == max {
		if c, ok := concreteHits[lo]; ok {
			chain = c.Byte()
		}
	}
	if chain == nil && len(concreteHits) > 0 {
		chain = buildConcreteChain(addrPlusK, concreteHits, p.builder.FreshByte(bottomName(p.id, min, k)))
	}
	if chain == nil {
		chain = p.builder.FreshByte(bottomName(p.id, min, k))
	}

	for _, entry := range symbolicHits {
		payload := entry.Payload.(*symPayload)
		if solver.Disjoint(p.solver, addrPlusK, payload.AddrExpr) {
			continue
		}
		chain = expr.ITE(expr.Eq(addrPlusK, payload.AddrExpr), payload.Byte, chain)
	}

	if len(concreteHits) == 0 && len(symbolicHits) == 0 {
		bottom := p.builder.FreshByte(bottomName(p.id, min, k))
		if min == max {
			p.bytes.Set(lo, bytestore.NewCell(bottom, 0))
		} else {
			p.sym.Add(int64(lo), int64(hi)+1, &symPayload{AddrExpr: addrPlusK, Byte: bottom})
		}
		chain = bottom
	}
	return chain
}

// buildConcreteChain folds multiple concrete hits into an if-then-else
// chain, compressing runs of adjacent addresses whose stored bytes are
// identical into a single range condition (spec §4.4 step 2, "multiple
// hits"). fallback is the value used when no hit's range condition holds.
func buildConcreteChain(addrPlusK expr.Expression, hits map[uint64]*bytestore.Cell, fallback expr.Expression) expr.Expression {
	addrs := make([]uint64, 0, len(hits))
	for a := range hits {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	type run struct {
		lo, hi uint64
		value  expr.Expression
	}
	var runs []run
	for _, a := range addrs {
		v := hits[a].Byte()
		if n := len(runs); n > 0 && runs[n-1].hi+1 == a && sameByteValue(runs[n-1].value, v) {
			runs[n-1].hi = a
			continue
		}
		runs = append(runs, run{lo: a, hi: a, value: v})
	}

	chain := fallback
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		var cond expr.Expression
		if r.lo == r.hi {
			cond = expr.Eq(addrPlusK, &expr.BVV{Value: r.lo, Bits: addrPlusK.Width()})
		} else {
			cond = expr.And(
				expr.Ge(addrPlusK, &expr.BVV{Value: r.lo, Bits: addrPlusK.Width()}),
				expr.Le(addrPlusK, &expr.BVV{Value: r.hi, Bits: addrPlusK.Width()}),
			)
		}
		chain = expr.ITE(cond, r.value, chain)
	}
	return chain
}
