package memplugin

import "fmt"

// MemoryLimitExceeded is raised when a concrete or symbolic access size
// exceeds the configured cap (spec §6/§7). It is not recoverable locally.
type MemoryLimitExceeded struct {
	Size uint64
}

func (e *MemoryLimitExceeded) Error() string {
	return fmt.Sprintf("memory limit exceeded: requested size %d", e.Size)
}

// Unsatisfiable is raised when a forced concretization or a merge condition
// would leave the path unsatisfiable; the plugin surfaces it so the engine
// can prune the path.
type Unsatisfiable struct {
	Reason string
}

func (e *Unsatisfiable) Error() string {
	return "unsatisfiable: " + e.Reason
}

// InternalError signals a defensive invariant violation (bad size, reg-mode
// address, or inconsistent mapped-region state). Always fatal to the
// current operation.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal invariant violation: " + e.Msg
}
