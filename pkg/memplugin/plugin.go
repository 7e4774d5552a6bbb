package memplugin

import (
	"fmt"
	"io"

	"symmem/pkg/archinfo"
	"symmem/pkg/backer"
	"symmem/pkg/bytestore"
	"symmem/pkg/expr"
	"symmem/pkg/pitree"
	"symmem/pkg/region"
	"symmem/pkg/solver"
)

// Kind distinguishes the two plugin instances every state owns: "mem" for
// RAM, "reg" for the register file (spec §3).
type Kind int

const (
	KindMem Kind = iota
	KindReg
)

func (k Kind) String() string {
	if k == KindReg {
		return "reg"
	}
	return "mem"
}

type stackRange struct{ lo, hi uint64 }

// Plugin is one state's view of memory or registers. Construct with
// NewMemPlugin or NewRegPlugin; bind a solver with SetState before use.
type Plugin struct {
	id      Kind
	arch    *archinfo.Registry
	endness archinfo.Endness

	bytes   *bytestore.Store
	sym     *pitree.Tree
	regions *region.Table

	stack *stackRange

	memoryBacker backer.MemoryBacker
	permsBacker  backer.PermissionsBacker
	initialized  bool

	cfg     Config
	builder *expr.Builder

	verbose bool
	logW    io.Writer

	solver solver.Solver
}

// NewMemPlugin constructs a "mem" plugin over the given config, optionally
// wired to backers that SetState will consume once.
func NewMemPlugin(cfg Config, arch *archinfo.Registry, mb backer.MemoryBacker, pb backer.PermissionsBacker) *Plugin {
	return newPlugin(KindMem, cfg, arch, mb, pb)
}

// NewRegPlugin constructs a "reg" plugin: addresses are register names that
// resolve through arch into the flat register address space.
func NewRegPlugin(cfg Config, arch *archinfo.Registry) *Plugin {
	return newPlugin(KindReg, cfg, arch, nil, nil)
}

func newPlugin(kind Kind, cfg Config, arch *archinfo.Registry, mb backer.MemoryBacker, pb backer.PermissionsBacker) *Plugin {
	endness := archinfo.LittleEndian
	if arch != nil {
		endness = arch.MemoryEndian
		if kind == KindReg {
			endness = arch.RegisterEndian
		}
	}
	return &Plugin{
		id:           kind,
		arch:         arch,
		endness:      endness,
		bytes:        bytestore.NewWithPageSize(cfg.PageSize),
		sym:          pitree.NewWithPageSize(cfg.PitreePageSize),
		regions:      region.NewTable(),
		memoryBacker: mb,
		permsBacker:  pb,
		cfg:          cfg,
		builder:      &expr.Builder{},
		verbose:      cfg.VerboseLogging,
	}
}

// SetVerbose toggles logging output on or off without changing where it
// would otherwise be written, matching the original's is_verbose(bool).
func (p *Plugin) SetVerbose(v bool) { p.verbose = v }

// SetLogWriter directs log output to w (nil disables logging regardless of
// SetVerbose).
func (p *Plugin) SetLogWriter(w io.Writer) { p.logW = w }

func (p *Plugin) log(format string, args ...interface{}) {
	if !p.verbose || p.logW == nil {
		return
	}
	fmt.Fprintf(p.logW, "["+p.id.String()+"] "+format+"\n", args...)
}

// ID reports whether this is a "mem" or "reg" plugin.
func (p *Plugin) ID() Kind { return p.id }

// SetState binds the solver collaborator for this path and, the first time
// it is called, consumes the memory/permissions backers (spec §4.7).
func (p *Plugin) SetState(s solver.Solver) error {
	p.solver = s
	if p.initialized {
		return nil
	}
	if p.permsBacker != nil {
		for _, r := range p.permsBacker.Ranges() {
			if r.Hi < r.Lo {
				return &InternalError{Msg: "permissions backer range has hi < lo"}
			}
			p.regions.Map(r.Lo, r.Hi-r.Lo, r.Perms)
		}
	}
	if p.memoryBacker != nil {
		for _, seg := range p.memoryBacker.Segments() {
			blob := &expr.Blob{Name: fmt.Sprintf("backer_0x%x", seg.Addr), Data: seg.Bytes}
			for i := range seg.Bytes {
				p.bytes.Set(seg.Addr+uint64(i), bytestore.NewCell(blob, len(seg.Bytes)-1-i))
			}
			p.log("initialized memory at 0x%x with %d bytes", seg.Addr, len(seg.Bytes))
		}
	}
	p.initialized = true
	return nil
}

// Copy returns a sibling plugin sharing the byte store and symbolic store
// lazily (O(1)); each is physically copied page-by-page on first divergent
// write.
func (p *Plugin) Copy() *Plugin {
	return &Plugin{
		id:           p.id,
		arch:         p.arch,
		endness:      p.endness,
		bytes:        p.bytes.Clone(),
		sym:          p.sym.Clone(),
		regions:      p.regions.Clone(),
		stack:        p.stack,
		memoryBacker: p.memoryBacker,
		permsBacker:  p.permsBacker,
		initialized:  p.initialized,
		cfg:          p.cfg,
		builder:      &expr.Builder{},
		verbose:      p.verbose,
		logW:         p.logW,
		solver:       p.solver,
	}
}

// MapRegion registers a mapped region with the given permissions.
func (p *Plugin) MapRegion(addr, length uint64, perms region.Perm) {
	p.regions.Map(addr, length, perms)
}

// UnmapRegion removes the mapped region with the given base address.
func (p *Plugin) UnmapRegion(addr uint64) bool {
	return p.regions.Unmap(addr)
}

// Permissions returns the permissions of the region containing addr.
func (p *Plugin) Permissions(addr uint64) (region.Perm, bool) {
	return p.regions.Permissions(addr)
}

// SetStackRange informs the plugin of the stack's address range, unmapping
// any previously registered stack region and mapping [lo, hi) read+write,
// matching the original's _preapproved_stack setter.
func (p *Plugin) SetStackRange(lo, hi uint64) {
	if p.stack != nil {
		p.regions.Unmap(p.stack.lo)
	}
	p.stack = &stackRange{lo: lo, hi: hi}
	p.regions.Map(lo, hi-lo, region.Read|region.Write)
}
