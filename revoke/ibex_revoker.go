package revoke

import (
	"github.com/cheriot-sim/cheriot/capability"
	"github.com/cheriot-sim/cheriot/memory"
	"github.com/cheriot-sim/cheriot/util/debug"
)

// MMR register offsets (spec 4.5's table), carried over verbatim from
// cheriot_ibex_hw_revoker.h's kStartAddressOffset..kInterruptEnableOffset.
const (
	OffsetStartAddress     = 0x00
	OffsetEndAddress       = 0x04
	OffsetGo               = 0x08
	OffsetEpoch            = 0x0C
	OffsetStatus           = 0x10
	OffsetInterruptEnable  = 0x14
)

// goReadSentinel is OR'd into every read of the go register, matching the
// source's "0x5500'0000 | (go & 0x00ff'ffff)".
const goReadSentinel = 0x5500_0000

// IbexRevoker models the memory-mapped Ibex hardware revoker (spec 4.5): a
// 32-byte MMR device, subscribed to the engine's cycle counter, that walks
// one capability slot per `period` cycles across [start_address,
// end_address) and invalidates any whose base is revoked.
type IbexRevoker struct {
	mem    *memory.Memory
	bitmap *Bitmap

	startAddress uint32
	endAddress   uint32
	goValue      uint32
	epoch        uint32
	interruptEnable uint32
	interruptStatus uint32

	sweepInProgress bool
	currentCap      uint32
	numCalls        int
	period          int

	raiseIRQ func(bool)
}

// NewIbexRevoker builds a revoker sweeping capability slots in mem via
// bitmap, raising irq (if non-nil) on sweep completion.
func NewIbexRevoker(mem *memory.Memory, bitmap *Bitmap, period int, raiseIRQ func(bool)) *IbexRevoker {
	if period < 1 {
		period = 1
	}
	return &IbexRevoker{mem: mem, bitmap: bitmap, period: period, raiseIRQ: raiseIRQ}
}

// Load implements memory.Device for MMR register reads.
func (r *IbexRevoker) Load(offset uint32, width int) (uint64, error) {
	return uint64(r.read(offset)), nil
}

// Store implements memory.Device for MMR register writes.
func (r *IbexRevoker) Store(offset uint32, width int, value uint64) error {
	r.write(offset, uint32(value))
	return nil
}

func (r *IbexRevoker) read(offset uint32) uint32 {
	switch offset {
	case OffsetStartAddress:
		return r.startAddress
	case OffsetEndAddress:
		return r.endAddress
	case OffsetGo:
		return goReadSentinel | (r.goValue & 0x00FF_FFFF)
	case OffsetEpoch:
		v := r.epoch << 1
		if r.sweepInProgress {
			v |= 1
		}
		return v
	case OffsetStatus:
		if r.interruptEnable != 0 {
			return r.interruptStatus
		}
		return 0
	case OffsetInterruptEnable:
		return r.interruptEnable & 1
	default:
		return 0
	}
}

func (r *IbexRevoker) write(offset, value uint32) {
	switch offset {
	case OffsetStartAddress:
		r.startAddress = value
	case OffsetEndAddress:
		r.endAddress = value
	case OffsetGo:
		r.writeGo()
		r.goValue = value
	case OffsetStatus:
		r.setInterrupt(false)
	case OffsetInterruptEnable:
		r.interruptEnable = value & 1
	}
}

// writeGo starts a new sweep unless one is already running (spec 4.5:
// "writing any value (when idle) starts a sweep").
func (r *IbexRevoker) writeGo() {
	if r.sweepInProgress {
		return
	}
	r.sweepInProgress = true
	r.currentCap = 0
	r.numCalls = 0
	r.epoch = 0
}

// OnCycle advances the sweep by delta cycle ticks; wired via
// engine.SubscribeCycle.
func (r *IbexRevoker) OnCycle(delta uint64) {
	for i := uint64(0); i < delta; i++ {
		r.tick()
	}
}

func (r *IbexRevoker) tick() {
	if !r.sweepInProgress {
		return
	}
	r.numCalls++
	if r.numCalls < r.period {
		return
	}
	r.numCalls = 0
	r.epoch++

	capAddr := (r.startAddress + (r.currentCap << 3)) &^ 0x7
	r.currentCap++
	r.processCapability(capAddr)

	if capAddr >= r.endAddress {
		r.sweepInProgress = false
		r.setInterrupt(true)
	}
}

// processCapability loads the capability slot at addr and, if its base is
// revoked, clears its tag and writes it back (spec 4.5).
func (r *IbexRevoker) processCapability(addr uint32) {
	if addr < r.startAddress || addr >= r.endAddress {
		return
	}
	word, tag, err := r.mem.LoadCapability(addr)
	if err != nil || !tag {
		return
	}
	cap := capability.Expand(uint32(word), uint32(word>>32), tag)
	if !cap.Tag {
		return
	}
	if !r.bitmap.IsRevoked(cap.Base()) {
		return
	}
	cap.Tag = false
	newWord := uint64(cap.Address) | uint64(cap.Compress())<<32
	_ = r.mem.StoreCapability(addr, newWord, false)
	debug.Debugf("ibex-revoker", debug.MaskRevoke, debug.LevelAll, "revoked capability at %#x (base %#x)", addr, cap.Base())
}

func (r *IbexRevoker) setInterrupt(v bool) {
	if !v {
		r.interruptStatus = 0
		if r.raiseIRQ != nil {
			r.raiseIRQ(false)
		}
		return
	}
	r.interruptStatus = 1
	if r.interruptEnable == 0 {
		return
	}
	if r.raiseIRQ != nil {
		r.raiseIRQ(true)
	}
}
