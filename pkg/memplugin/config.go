// Package memplugin implements the top-level symbolic memory plugin: the
// load/store/merge/copy algorithm of spec §4 composed from pkg/bytestore
// (concrete addresses), pkg/pitree (symbolic addresses), and pkg/region
// (permission checks), against the pkg/solver collaborator.
//
// Ported from memsight's SymbolicMemory (memory/simple_fully_symbolic_memory.py
// and memory/naive_fully_symbolic_memory.py), generalized per spec §4.4-§4.6.
package memplugin

// Config holds the plugin's tunable knobs, all optional (spec §6).
type Config struct {
	PageSize             int64 // byte store page size
	PitreePageSize       int64 // pitree page size
	MaximumConcreteSize  uint64
	MaximumSymbolicSize  uint64
	StrictPageAccess     bool
	VerboseLogging       bool
}

// DefaultConfig returns the spec-default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:            4096,
		PitreePageSize:       128,
		MaximumConcreteSize:  16 * 1024 * 1024,
		MaximumSymbolicSize:  8 * 1024,
		StrictPageAccess:     false,
		VerboseLogging:       false,
	}
}
