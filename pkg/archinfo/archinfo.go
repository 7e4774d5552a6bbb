// Package archinfo is the arch-metadata collaborator: a small fixed table
// mapping register names to their (address, size) in the register file,
// plus the architecture's word width and default endnesses. A real
// implementation would be supplied by the engine's architecture layer
// (e.g. an angr/archinfo equivalent); this package is the minimal shim
// spec §6 calls out as an external collaborator.
package archinfo

import "fmt"

// Endness selects byte order.
type Endness int

const (
	LittleEndian Endness = iota
	BigEndian
)

// Register describes one named register's location in the flat register
// address space the "reg" memory plugin indexes.
type Register struct {
	Name string
	Addr uint64
	Size int // bytes
}

// Registry is an arch's register table plus its endness/width metadata.
type Registry struct {
	WordWidth      int // bits
	RegisterEndian Endness
	MemoryEndian   Endness
	byName         map[string]Register
	byAddr         map[uint64]Register
}

// NewRegistry builds a Registry from an explicit register list.
func NewRegistry(wordWidth int, regEndian, memEndian Endness, regs []Register) *Registry {
	r := &Registry{
		WordWidth:      wordWidth,
		RegisterEndian: regEndian,
		MemoryEndian:   memEndian,
		byName:         make(map[string]Register, len(regs)),
		byAddr:         make(map[uint64]Register, len(regs)),
	}
	for _, reg := range regs {
		r.byName[reg.Name] = reg
		r.byAddr[reg.Addr] = reg
	}
	return r
}

// Resolve returns the (address, size) of a named register.
func (r *Registry) Resolve(name string) (addr uint64, size int, err error) {
	reg, ok := r.byName[name]
	if !ok {
		return 0, 0, fmt.Errorf("archinfo: unknown register %q", name)
	}
	return reg.Addr, reg.Size, nil
}

// ReverseLookup returns the register name occupying addr, if any.
func (r *Registry) ReverseLookup(addr uint64) (string, bool) {
	reg, ok := r.byAddr[addr]
	if !ok {
		return "", false
	}
	return reg.Name, true
}

// AMD64 is a minimal x86-64 register table covering the general-purpose
// integer registers and instruction pointer, enough for the CLI demo and
// tests to exercise the "reg" memory plugin mode.
func AMD64() *Registry {
	return NewRegistry(64, LittleEndian, LittleEndian, []Register{
		{"rax", 0x00, 8}, {"rbx", 0x08, 8}, {"rcx", 0x10, 8}, {"rdx", 0x18, 8},
		{"rsi", 0x20, 8}, {"rdi", 0x28, 8}, {"rbp", 0x30, 8}, {"rsp", 0x38, 8},
		{"r8", 0x40, 8}, {"r9", 0x48, 8}, {"r10", 0x50, 8}, {"r11", 0x58, 8},
		{"r12", 0x60, 8}, {"r13", 0x68, 8}, {"r14", 0x70, 8}, {"r15", 0x78, 8},
		{"rip", 0x80, 8},
	})
}
