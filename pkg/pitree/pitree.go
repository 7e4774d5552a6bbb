// Package pitree implements a paged, copy-on-write interval tree: an
// interval tree over [lo, hi) integer ranges, partitioned into fixed-width
// pages of the key space so that cloning the whole structure is O(1) and a
// write only pays for the pages it actually touches.
//
// Ported from the page/pitree split in memsight's pitree.py (Camil
// Demetrescu), re-expressed with Go's copy-on-write idiom of a lazy flag
// checked and cleared on first mutation.
package pitree

import "symmem/pkg/itree"

const defaultPageSize = 128

// Entry is the handle returned by Add/Search; pass it back to UpdateItem to
// mutate its payload in place.
type Entry struct {
	Lo, Hi  int64
	Payload interface{}
	inner   *itree.Entry
	page    *page
}

// page is one fixed-width slice of the key space. A page with lazy unset is
// owned solely by the Tree holding it; a page with lazy set may be shared by
// any number of Trees and must be physically cloned before its tree is
// mutated.
type page struct {
	begin, end int64 // page-index span, half-open
	lazy       bool
	tree       *itree.Tree
}

func newPage(begin, end int64) *page {
	return &page{begin: begin, end: end, tree: itree.New()}
}

// clone returns a lazily-shared copy of p: both p and the result share the
// same underlying itree.Tree until either is next mutated.
func (p *page) clone() *page {
	p.lazy = true
	np := &page{begin: p.begin, end: p.end, lazy: true, tree: p.tree}
	return np
}

func (p *page) copyOnWrite() {
	if p.lazy {
		p.lazy = false
		p.tree = p.tree.Clone()
	}
}

// Tree is a paged, cloneable interval index. The zero value is not usable;
// construct with New or NewWithPageSize.
type Tree struct {
	pageSize   int64
	lazy       bool
	pages      map[pageKey]*page
	numEntries int
	num1Entries int
}

type pageKey struct{ begin, end int64 }

// New returns a Tree using the spec default page size (128).
func New() *Tree { return NewWithPageSize(defaultPageSize) }

// NewWithPageSize returns a Tree partitioning its key space into pages of
// the given width.
func NewWithPageSize(pageSize int64) *Tree {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Tree{pageSize: pageSize, pages: make(map[pageKey]*page)}
}

func (t *Tree) span(lo, hi int64) (int64, int64) {
	return floorDiv(lo, t.pageSize), floorDiv(hi, t.pageSize) + 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// copyOnWrite clones the page directory (not the pages themselves) the
// first time this Tree is mutated after a Clone.
func (t *Tree) copyOnWrite() {
	if !t.lazy {
		return
	}
	t.lazy = false
	newPages := make(map[pageKey]*page, len(t.pages))
	for k, p := range t.pages {
		newPages[k] = p.clone()
	}
	t.pages = newPages
}

// Add inserts a new interval [lo, hi) with the given payload. Requires
// lo < hi.
func (t *Tree) Add(lo, hi int64, payload interface{}) *Entry {
	if lo >= hi {
		panic("pitree: Add requires lo < hi")
	}
	t.copyOnWrite()
	beginP, endP := t.span(lo, hi)
	key := pageKey{beginP, endP}
	p, ok := t.pages[key]
	if !ok {
		p = newPage(beginP, endP)
		t.pages[key] = p
	}
	p.copyOnWrite()
	inner := p.tree.Add(lo, hi, payload)
	t.numEntries++
	if lo+1 == hi {
		t.num1Entries++
	}
	return &Entry{Lo: lo, Hi: hi, Payload: payload, inner: inner, page: p}
}

// Search returns every entry whose interval overlaps [lo, hi).
func (t *Tree) Search(lo, hi int64) []*Entry {
	beginP, endP := t.span(lo, hi)
	var out []*Entry
	for key, p := range t.pages {
		if !pageOverlaps(key, beginP, endP) {
			continue
		}
		for _, inner := range p.tree.Search(lo, hi) {
			out = append(out, &Entry{Lo: inner.Lo, Hi: inner.Hi, Payload: inner.Payload, inner: inner, page: p})
		}
	}
	return out
}

func pageOverlaps(k pageKey, beginP, endP int64) bool {
	return k.begin < endP && beginP < k.end
}

// UpdateItem replaces the payload of a previously returned Entry. After the
// call, subsequent searches return the updated payload. The caller must pass
// back the exact Entry obtained from Add/Search; the handle remains valid
// across a Clone of the owning Tree (itree.Entry carries a stable id that
// survives the deep-copy copy-on-write performs on first write to a shared
// page, so the update lands on the right node even though copy-on-write has
// since minted a fresh *itree.Entry for it).
func (t *Tree) UpdateItem(e *Entry, newPayload interface{}) {
	t.copyOnWrite()
	p, ok := t.pages[pageKey{e.page.begin, e.page.end}]
	if !ok {
		return
	}
	p.copyOnWrite()
	p.tree.UpdateItem(e.inner, newPayload)
	e.Payload = newPayload
}

// Remove deletes a previously returned Entry from the tree. Like
// UpdateItem, the handle remains valid across a Clone of the owning Tree.
func (t *Tree) Remove(e *Entry) {
	t.copyOnWrite()
	p, ok := t.pages[pageKey{e.page.begin, e.page.end}]
	if !ok {
		return
	}
	p.copyOnWrite()
	if !p.tree.Remove(e.inner) {
		return
	}
	t.numEntries--
	if e.Hi == e.Lo+1 {
		t.num1Entries--
	}
}

// Clone returns a new Tree sharing all pages lazily with t in O(1). Either
// tree may be mutated afterward without affecting the other: the first
// write to a shared page clones only that page's sub-tree, and the first
// write to either tree's page directory clones only the directory.
func (t *Tree) Clone() *Tree {
	t.lazy = true
	return &Tree{
		pageSize:    t.pageSize,
		lazy:        true,
		pages:       t.pages,
		numEntries:  t.numEntries,
		num1Entries: t.num1Entries,
	}
}

// All returns every entry currently stored in the tree, across all pages.
// Used by merge, which needs to enumerate every symbolic-address entry
// rather than query a specific range.
func (t *Tree) All() []*Entry {
	var out []*Entry
	for _, p := range t.pages {
		for _, inner := range p.tree.All() {
			out = append(out, &Entry{Lo: inner.Lo, Hi: inner.Hi, Payload: inner.Payload, inner: inner, page: p})
		}
	}
	return out
}

// Stats reports page count, entry count, lazy-page count, max page size,
// and an approximate memory footprint, matching pitree.py's get_stats().
type Stats struct {
	NumPages      int
	NumEntries    int
	Num1Entries   int
	IsLazyTree    bool
	NumLazyPages  int
	MaxPageSize   int
	ApproxBytesSz int
}

// Stats computes a Stats snapshot for t.
func (t *Tree) Stats() Stats {
	s := Stats{NumPages: len(t.pages), NumEntries: t.numEntries, Num1Entries: t.num1Entries, IsLazyTree: t.lazy}
	for _, p := range t.pages {
		if p.lazy {
			s.NumLazyPages++
		}
		if n := p.tree.Len(); n > s.MaxPageSize {
			s.MaxPageSize = n
		}
	}
	// Rough footprint: each entry is charged a fixed per-entry overhead plus
	// a per-page overhead, since payloads are opaque and not sized here.
	const perEntry = 64
	const perPage = 96
	s.ApproxBytesSz = s.NumEntries*perEntry + s.NumPages*perPage
	return s
}
