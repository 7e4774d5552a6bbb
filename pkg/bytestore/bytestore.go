// Package bytestore implements a dense, paged, copy-on-write mapping from
// integer address to a single byte cell. It is the concrete-address half of
// the memory plugin's storage (spec §4.1); symbolic addresses are handled
// by pkg/pitree instead.
//
// Pages follow the same lazy-flag COW discipline as pkg/pitree and the
// teacher's pkg/cowbtree.CowBTree.Clone: a clone marks every page shared,
// and the first write to a page triggers a physical copy of just that page.
package bytestore

import "symmem/pkg/expr"

const defaultPageSize = 4096

// Cell is a single byte plus lazy provenance, matching spec §3's "byte
// cell": the byte is materialized from SourceExpr/ByteOffset on first read
// and then cached so repeated reads return the identical expression.
type Cell struct {
	SourceExpr expr.Expression
	ByteOffset int
	cached     expr.Expression
}

// NewCell wraps a source expression and the offset within it this cell
// represents.
func NewCell(src expr.Expression, offset int) *Cell {
	return &Cell{SourceExpr: src, ByteOffset: offset}
}

// Byte materializes (and caches) the 8-bit expression this cell denotes. A
// cell wrapping an already-byte-wide source at offset 0 returns that source
// directly rather than wrapping it in a redundant Extract, so that bottom
// placeholders stay identity-stable across repeated reads of the same Cell.
func (c *Cell) Byte() expr.Expression {
	if c.cached == nil {
		if c.ByteOffset == 0 && c.SourceExpr.Width() == 8 {
			c.cached = c.SourceExpr
		} else {
			c.cached = expr.ExtractByte(c.SourceExpr, c.ByteOffset)
		}
	}
	return c.cached
}

// SameProvenance reports whether c and o were cut from the same source
// expression at the same offset — the identity shortcut spec §3 describes
// for run-length compression of adjacent identical bytes.
func (c *Cell) SameProvenance(o *Cell) bool {
	return c.SourceExpr == o.SourceExpr && c.ByteOffset == o.ByteOffset
}

type page struct {
	lazy  bool
	bytes map[int]*Cell
}

func newPage() *page { return &page{bytes: make(map[int]*Cell)} }

func (p *page) clone() *page {
	p.lazy = true
	return &page{lazy: true, bytes: p.bytes}
}

func (p *page) copyOnWrite() {
	if !p.lazy {
		return
	}
	p.lazy = false
	np := make(map[int]*Cell, len(p.bytes))
	for k, v := range p.bytes {
		np[k] = v
	}
	p.bytes = np
}

// Store is a paged concrete byte store.
type Store struct {
	pageSize int64
	pages    map[int64]*page
}

// New returns a Store using the spec default page size (4096).
func New() *Store { return NewWithPageSize(defaultPageSize) }

// NewWithPageSize returns a Store partitioning addresses into pages of the
// given size.
func NewWithPageSize(pageSize int64) *Store {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Store{pageSize: pageSize, pages: make(map[int64]*page)}
}

func (s *Store) pageIndex(addr uint64) int64 {
	return int64(addr) / s.pageSize
}

// Get returns the cell at addr, or nil if nothing has been stored there.
func (s *Store) Get(addr uint64) *Cell {
	p, ok := s.pages[s.pageIndex(addr)]
	if !ok {
		return nil
	}
	return p.bytes[int(addr%uint64(s.pageSize))]
}

// Set stores a cell at addr, copy-on-writing the owning page first if it is
// currently shared with another Store.
func (s *Store) Set(addr uint64, c *Cell) {
	idx := s.pageIndex(addr)
	p, ok := s.pages[idx]
	if !ok {
		p = newPage()
		s.pages[idx] = p
	}
	p.copyOnWrite()
	p.bytes[int(addr%uint64(s.pageSize))] = c
}

// Delete removes any cell stored at addr.
func (s *Store) Delete(addr uint64) {
	idx := s.pageIndex(addr)
	p, ok := s.pages[idx]
	if !ok {
		return
	}
	p.copyOnWrite()
	delete(p.bytes, int(addr%uint64(s.pageSize)))
}

// Find returns every address with a stored cell in [lo, hi], inclusive.
// Large ranges are scanned page-by-page rather than byte-by-byte, since a
// stabbing query only needs to visit pages whose span intersects [lo, hi].
func (s *Store) Find(lo, hi uint64) map[uint64]*Cell {
	out := make(map[uint64]*Cell)
	firstPage := s.pageIndex(lo)
	lastPage := s.pageIndex(hi)
	for idx := firstPage; idx <= lastPage; idx++ {
		p, ok := s.pages[idx]
		if !ok {
			continue
		}
		base := uint64(idx) * uint64(s.pageSize)
		for off, c := range p.bytes {
			addr := base + uint64(off)
			if addr >= lo && addr <= hi {
				out[addr] = c
			}
		}
	}
	return out
}

// Keys returns every address with a stored cell, unordered.
func (s *Store) Keys() []uint64 {
	var out []uint64
	for idx, p := range s.pages {
		base := uint64(idx) * uint64(s.pageSize)
		for off := range p.bytes {
			out = append(out, base+uint64(off))
		}
	}
	return out
}

// Clone returns a new Store sharing all pages lazily with s in O(1).
func (s *Store) Clone() *Store {
	newPages := make(map[int64]*page, len(s.pages))
	for idx, p := range s.pages {
		p.lazy = true
		newPages[idx] = p.clone()
	}
	return &Store{pageSize: s.pageSize, pages: newPages}
}

// Stats reports page count, byte count, and lazy-page count.
type Stats struct {
	NumPages     int
	NumBytes     int
	NumLazyPages int
}

// Stats computes a Stats snapshot for s.
func (s *Store) Stats() Stats {
	var st Stats
	st.NumPages = len(s.pages)
	for _, p := range s.pages {
		st.NumBytes += len(p.bytes)
		if p.lazy {
			st.NumLazyPages++
		}
	}
	return st
}
