package memplugin

import (
	"symmem/pkg/bytestore"
	"symmem/pkg/expr"
	"symmem/pkg/pitree"
)

// Merge implements spec §4.6: unify self with others under the given
// per-branch conditions (conditions[0] guards self, conditions[1+i] guards
// others[i]), reporting whether any byte was rewritten. ancestor is the
// common ancestor plugin the branches forked from; it is accepted for
// interface symmetry with the engine but this algorithm does not need it,
// since every byte still present in an input is examined directly.
func (p *Plugin) Merge(others []*Plugin, conditions []expr.Expression, ancestor *Plugin) (bool, error) {
	if len(conditions) != 1+len(others) {
		return false, &InternalError{Msg: "merge requires one condition per input plugin"}
	}
	changed := false

	if c, err := p.mergeConcrete(others, conditions); err != nil {
		return false, err
	} else if c {
		changed = true
	}
	if c, err := p.mergeSymbolic(others, conditions); err != nil {
		return false, err
	} else if c {
		changed = true
	}
	return changed, nil
}

// mergeConcrete unifies the paged byte stores: for every address touched by
// self or any other input, if all inputs agree on the byte it is kept
// as-is; otherwise an if-then-else chain over conditions is synthesized,
// falling back to a fresh bottom for inputs that never touched the address.
func (p *Plugin) mergeConcrete(others []*Plugin, conditions []expr.Expression) (bool, error) {
	addrs := map[uint64]bool{}
	for _, a := range p.bytes.Keys() {
		addrs[a] = true
	}
	for _, o := range others {
		for _, a := range o.bytes.Keys() {
			addrs[a] = true
		}
	}

	changed := false
	for addr := range addrs {
		values := make([]expr.Expression, 1+len(others))
		values[0] = p.byteOrBottom(p.bytes.Get(addr), addr)
		for i, o := range others {
			values[i+1] = p.byteOrBottom(o.bytes.Get(addr), addr)
		}
		if allSame(values) {
			continue
		}
		last := len(values) - 1
		merged := expr.ITE(conditions[last], values[last], p.builder.FreshByte(bottomName(p.id, addr, 0)))
		for i := last - 1; i >= 0; i-- {
			merged = expr.ITE(conditions[i], values[i], merged)
		}
		p.bytes.Set(addr, bytestore.NewCell(merged, 0))
		changed = true
	}
	return changed, nil
}

func (p *Plugin) byteOrBottom(c *bytestore.Cell, addr uint64) expr.Expression {
	if c != nil {
		return c.Byte()
	}
	return p.builder.FreshByte(bottomName(p.id, addr, 0))
}

// mergeSymbolic unifies the symbolic-address stores, grouping entries by
// address-expression identity: entries with the same AddrExpr across inputs
// are candidates to merge into one entry; an entry present in only some
// inputs is merged against a fresh bottom for the inputs lacking it.
func (p *Plugin) mergeSymbolic(others []*Plugin, conditions []expr.Expression) (bool, error) {
	type group struct {
		lo, hi int64
		byKey  []expr.Expression // indexed by input, nil if absent
	}
	groups := map[expr.Expression]*group{}
	order := []expr.Expression{}

	record := func(idx int, plugin *Plugin) {
		for _, e := range plugin.sym.All() {
			payload := e.Payload.(*symPayload)
			g, ok := groups[payload.AddrExpr]
			if !ok {
				g = &group{lo: e.Lo, hi: e.Hi, byKey: make([]expr.Expression, 1+len(others))}
				groups[payload.AddrExpr] = g
				order = append(order, payload.AddrExpr)
			}
			g.byKey[idx] = payload.Byte
		}
	}
	record(0, p)
	for i, o := range others {
		record(i+1, o)
	}

	changed := false
	for _, key := range order {
		g := groups[key]
		values := make([]expr.Expression, len(g.byKey))
		for i, v := range g.byKey {
			if v != nil {
				values[i] = v
				continue
			}
			values[i] = p.builder.FreshByte(bottomName(p.id, uint64(g.lo), 0))
		}
		if allSame(values) {
			if existing := p.findSymEntry(key); existing == nil {
				p.sym.Add(g.lo, g.hi, &symPayload{AddrExpr: key, Byte: values[0]})
				changed = true
			}
			continue
		}
		last := len(values) - 1
		merged := expr.ITE(conditions[last], values[last], p.builder.FreshByte(bottomName(p.id, uint64(g.lo), 0)))
		for i := last - 1; i >= 0; i-- {
			merged = expr.ITE(conditions[i], values[i], merged)
		}
		if existing := p.findSymEntry(key); existing != nil {
			p.sym.UpdateItem(existing, &symPayload{AddrExpr: key, Byte: merged})
		} else {
			p.sym.Add(g.lo, g.hi, &symPayload{AddrExpr: key, Byte: merged})
		}
		changed = true
	}
	return changed, nil
}

func (p *Plugin) findSymEntry(addrExpr expr.Expression) *pitree.Entry {
	for _, e := range p.sym.All() {
		if e.Payload.(*symPayload).AddrExpr == addrExpr {
			return e
		}
	}
	return nil
}

func allSame(values []expr.Expression) bool {
	for i := 1; i < len(values); i++ {
		if !sameByteValue(values[0], values[i]) {
			return false
		}
	}
	return true
}
