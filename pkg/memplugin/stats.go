package memplugin

import (
	"symmem/pkg/bytestore"
	"symmem/pkg/pitree"
)

// Stats aggregates footprint information from both stores plus the host
// process's resident set size, for diagnostics and the CLI demo.
type Stats struct {
	ByteStore bytestore.Stats
	Pitree    pitree.Stats
	MaxRSSKB  int64
}

// Stats computes a Stats snapshot for p.
func (p *Plugin) Stats() Stats {
	return Stats{
		ByteStore: p.bytes.Stats(),
		Pitree:    p.sym.Stats(),
		MaxRSSKB:  maxRSSKB(),
	}
}
