package revoke

import (
	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/memory"
)

// LoadFilter is spec 4.5's independent "periodic load-filter": it walks a
// fixed [base, top) window at its own cadence, for background sanitization,
// sharing the same bit-lookup math as IbexRevoker and CLc but with no MMR
// surface and no interrupt. Grounded on
// original_source/cheriot/cheriot_load_filter.cc.
type LoadFilter struct {
	mem    *memory.Memory
	bitmap *Bitmap

	base, top uint32
	period    int
	count     int

	updateCounter int
	capAddress    uint32
}

// NewLoadFilter builds a filter that, every period cycle ticks, filters
// count capability slots starting from base, wrapping back to base at top.
func NewLoadFilter(mem *memory.Memory, bitmap *Bitmap, period, count int, base, top uint32) *LoadFilter {
	if period < 1 {
		period = 1
	}
	return &LoadFilter{mem: mem, bitmap: bitmap, period: period, count: count, base: base, top: top, capAddress: base}
}

// OnCycle advances the filter by delta cycle ticks; wired via
// engine.SubscribeCycle alongside IbexRevoker.OnCycle.
func (f *LoadFilter) OnCycle(delta uint64) {
	for i := uint64(0); i < delta; i++ {
		f.tick()
	}
}

func (f *LoadFilter) tick() {
	f.updateCounter++
	if f.updateCounter < f.period {
		return
	}
	f.updateCounter = 0
	for i := 0; i < f.count; i++ {
		f.filterCapability(f.capAddress)
		f.capAddress += 8
		if f.capAddress < f.base || f.capAddress >= f.top {
			f.capAddress = f.base
		}
	}
}

func (f *LoadFilter) filterCapability(addr uint32) {
	word, tag, err := f.mem.LoadCapability(addr)
	if err != nil || !tag {
		return
	}
	cap := capability.Expand(uint32(word), uint32(word>>32), tag)
	if !cap.Tag {
		return
	}
	if !f.bitmap.IsRevoked(cap.Base()) {
		return
	}
	cap.Tag = false
	newWord := uint64(cap.Address) | uint64(cap.Compress())<<32
	_ = f.mem.StoreCapability(addr, newWord, false)
}
