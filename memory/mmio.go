package memory

import "fmt"

// Device is a memory-mapped register device: the revoker, the CLINT, and a
// UART all implement it. This generalizes the teacher's emu/device.Device
// interface (StartIO/StartCmd/HaltIO, channel-command oriented) to plain
// load/store at a given width, which is what a CHERIoT MMR actually looks
// like (spec 6, "MMR devices").
type Device interface {
	Load(offset uint32, width int) (uint64, error)
	Store(offset uint32, width int, value uint64) error
}

type region struct {
	base, size uint32
	dev        Device
	name       string
}

// Router is a single-initiator router dispatching loads/stores to the MMR
// device that owns the target address, falling back to main memory
// otherwise (spec 6).
type Router struct {
	mem     *Memory
	regions []region
}

// NewRouter wraps mem as the default target for addresses with no MMR
// device registered.
func NewRouter(mem *Memory) *Router {
	return &Router{mem: mem}
}

// Register maps [base, base+size) to dev.
func (r *Router) Register(name string, base, size uint32, dev Device) {
	r.regions = append(r.regions, region{base: base, size: size, dev: dev, name: name})
}

func (r *Router) find(addr uint32) (region, bool) {
	for _, reg := range r.regions {
		if addr >= reg.base && addr < reg.base+reg.size {
			return reg, true
		}
	}
	return region{}, false
}

// LoadWidth reads width bytes at addr, routing to an MMR device if one
// claims the address.
func (r *Router) LoadWidth(addr uint32, width int) (uint64, error) {
	if reg, ok := r.find(addr); ok {
		return reg.dev.Load(addr-reg.base, width)
	}
	return r.mem.LoadUint(addr, width)
}

// StoreWidth writes width bytes at addr, routing to an MMR device if one
// claims the address.
func (r *Router) StoreWidth(addr uint32, width int, v uint64) error {
	if reg, ok := r.find(addr); ok {
		return reg.dev.Store(addr-reg.base, width, v)
	}
	return r.mem.StoreUint(addr, width, v)
}

// Memory exposes the backing tagged memory for capability-granule access,
// which devices never see (MMRs are plain integers, never capabilities).
func (r *Router) Memory() *Memory { return r.mem }

// ErrNoDevice is returned by a Device stub for unimplemented offsets.
var ErrNoDevice = fmt.Errorf("mmio: no register at offset")
