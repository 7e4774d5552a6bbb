package memplugin

import (
	"symmem/pkg/archinfo"
	"symmem/pkg/bytestore"
	"symmem/pkg/expr"
	"symmem/pkg/solver"
)

// Store implements spec §4.5: resolve addr/size, enforce the permission
// check in strict mode, and place each byte of data against the paged byte
// store and the symbolic-address store.
func (p *Plugin) Store(addr, data expr.Expression, size expr.Expression, endness *archinfo.Endness, strictPerms bool) error {
	return p.store(addr, data, size, endness, strictPerms)
}

// StoreReg resolves a register name to its fixed address before delegating
// to the same placement logic.
func (p *Plugin) StoreReg(name string, data expr.Expression, endness *archinfo.Endness) error {
	addr, defaultSize, err := p.resolveRegAddr(name)
	if err != nil {
		return err
	}
	size := &expr.BVV{Value: uint64(defaultSize), Bits: 32}
	return p.store(addr, data, size, endness, false)
}

func (p *Plugin) store(addrExpr, dataExpr, sizeExpr expr.Expression, endnessOverride *archinfo.Endness, strictPerms bool) error {
	if p.solver == nil {
		return &InternalError{Msg: "SetState was not called before store"}
	}
	if sizeExpr == nil {
		sizeExpr = &expr.BVV{Value: uint64(dataExpr.Width() / 8), Bits: 32}
	}
	sz, err := p.resolveSize(sizeExpr)
	if err != nil {
		return err
	}
	if sz == 0 {
		return &InternalError{Msg: "store size must be positive"}
	}
	min, max, err := p.resolveAddr(addrExpr)
	if err != nil {
		return err
	}

	if strictPerms || p.cfg.StrictPageAccess {
		if sf := p.regions.CheckAccess(p.solver, addrExpr, min, max+sz-1, true); sf != nil {
			return sf
		}
	}

	data := p.solver.Simplify(dataExpr)
	if p.resolveEndness(endnessOverride) == archinfo.BigEndian {
		data = expr.Reverse(data)
	}

	for k := uint64(0); k < sz; k++ {
		byteVal := expr.Slice(data, int(k))
		p.storeByte(addrExpr, min, max, int(k), byteVal)
	}
	return nil
}

// storeByte places a single byte at offset k of [min, max], implementing
// spec §4.5's per-byte placement.
func (p *Plugin) storeByte(addrExpr expr.Expression, min, max uint64, k int, byteVal expr.Expression) {
	lo, hi := min+uint64(k), max+uint64(k)
	addrPlusK := offsetAddr(addrExpr, k)

	if min == max {
		p.bytes.Set(lo, bytestore.NewCell(byteVal, 0))
	}

	matchedSame := false
	for _, entry := range p.sym.Search(int64(lo), int64(hi)+1) {
		payload := entry.Payload.(*symPayload)
		switch {
		case solver.Disjoint(p.solver, addrPlusK, payload.AddrExpr):
			continue
		case isSingleAddress(entry.Lo, entry.Hi) && min == max && solver.SameValue(p.solver, addrPlusK, payload.AddrExpr):
			// Single-address coincidence with a concrete store address: the
			// paged byte store (written above) now subsumes this entry.
			p.sym.Remove(entry)
			matchedSame = true
		default:
			p.sym.UpdateItem(entry, &symPayload{
				AddrExpr: payload.AddrExpr,
				Byte:     expr.ITE(expr.Eq(payload.AddrExpr, addrPlusK), byteVal, payload.Byte),
			})
		}
	}

	if !matchedSame && min != max {
		p.sym.Add(int64(lo), int64(hi)+1, &symPayload{AddrExpr: addrPlusK, Byte: byteVal})
	}
}

func isSingleAddress(lo, hi int64) bool { return hi-lo == 1 }
