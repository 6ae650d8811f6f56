// Package hardware composes the blocks in its subpackages into a
// runnable Device: flash, SRAM, the register file, the block list and
// its I/O/IV maps, the pending-interrupt sets and the clock scheduler
// — spec.md §4.6, grounded on original_source/block/device.{h,cpp}.
package hardware

import (
	"github.com/avrxmega/xmsim/errors"
	"github.com/avrxmega/xmsim/hardware/block"
	"github.com/avrxmega/xmsim/hardware/clk"
	"github.com/avrxmega/xmsim/hardware/clocks"
	"github.com/avrxmega/xmsim/hardware/cpu"
	"github.com/avrxmega/xmsim/hardware/gpior"
	"github.com/avrxmega/xmsim/hardware/memory"
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
	"github.com/avrxmega/xmsim/hardware/model"
	"github.com/avrxmega/xmsim/hardware/osc"
	"github.com/avrxmega/xmsim/hardware/pmic"
	"github.com/avrxmega/xmsim/hardware/timer"
	"github.com/avrxmega/xmsim/logger"
)

// memProxy breaks the construction-time cycle between cpu.Core (which
// needs a cpu.Memory to read/write data space) and memory.Memory (whose
// I/O-owner map includes the cpu.Block that wraps that same Core).
// New builds the proxy with a nil inner pointer, constructs Core and
// the block list against it, builds memory.Memory, and only then
// patches m in — nothing dereferences the proxy until the device is
// fully wired.
type memProxy struct {
	m *memory.Memory
}

func (p *memProxy) Read(addr uint32) uint8    { return p.m.Read(addr) }
func (p *memProxy) Write(addr uint32, v uint8) { p.m.Write(addr, v) }

// Device composes one microcontroller instance: flash, the CPU core,
// the peripheral blocks, the data-space dispatcher and the clock
// scheduler that drives them all from a single SYS tick.
type Device struct {
	cfg     model.Config
	derived model.Derived

	flash []uint16

	core   *cpu.Core
	cpuBlk *cpu.Block
	clk    *clk.CLK
	osc    *osc.OSC
	pmic   *pmic.PMIC
	gpior  *gpior.GPIOR
	tc0    *timer.TC

	blocks  []block.Block
	ivOwner [addresses.IVMaxCount]block.Block

	mem      *memory.Memory
	sched    *clocks.Scheduler
	cpuEvent *clocks.Event
}

// New validates cfg, wires every block and returns a Device reset to
// its architectural defaults with flashImage loaded (flashImage may be
// nil, leaving flash erased to 0xFFFF).
func New(cfg model.Config, flashImage []byte) (*Device, error) {
	derived, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	flash := make([]uint16, cfg.FlashSize/2)
	for i := range flash {
		flash[i] = 0xFFFF
	}

	d := &Device{cfg: cfg, derived: derived, flash: flash}

	d.pmic = pmic.New(d)
	d.osc = osc.New(d)
	d.clk = clk.New(d, d.osc)
	d.gpior = gpior.New()

	proxy := &memProxy{}
	exSRAMBound := derived.ExSRAMStart + derived.ExSRAMSize
	d.core = cpu.New(flash, proxy, cfg.FlashSize, exSRAMBound)
	d.cpuBlk = cpu.NewBlock(d, d.core)
	d.tc0 = timer.New(d, "tc0", addresses.TC0Base, addresses.TC0IVBase)

	d.blocks = []block.Block{d.gpior, d.cpuBlk, d.clk, d.osc, d.pmic, d.tc0}

	for _, b := range d.blocks {
		base := b.IVBase()
		for local := 0; local < b.IVCount(); local++ {
			iv := base + local
			if iv < 0 || iv >= len(d.ivOwner) {
				continue
			}
			if existing := d.ivOwner[iv]; existing != nil {
				return nil, errors.New(errors.BlockIVWindowOverlap, b.Label(), existing.Label(), iv)
			}
			d.ivOwner[iv] = b
		}
	}

	memCfg := memory.Config{
		EEPROMSize:  cfg.EEPROMSize,
		SRAMSize:    cfg.SRAMSize,
		ExSRAMStart: derived.ExSRAMStart,
		ExSRAMSize:  derived.ExSRAMSize,
	}
	mem, err := memory.New(memCfg, d.blocks, d.SysTick)
	if err != nil {
		return nil, err
	}
	proxy.m = mem
	d.mem = mem

	d.sched = clocks.NewScheduler(d.clk)
	d.cpuEvent = clocks.NewEvent("cpu", clocks.CPU, 100, d.cpuStep)

	d.Reset()

	if flashImage != nil {
		if err := d.LoadFlash(flashImage); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Reset restores every block to its architectural defaults, per
// spec.md §4.6: CLK resets first so the freshly (re)created scheduler
// sees valid divisors, then the CPU-step event is armed, then every
// other block is reset, and finally the register file is zeroed. SRAM
// is explicitly left untouched.
func (d *Device) Reset() {
	d.clk.Reset()
	d.sched = clocks.NewScheduler(d.clk)
	d.sched.Schedule(d.cpuEvent, 1)

	for _, b := range d.blocks {
		if b == d.clk {
			continue
		}
		b.Reset()
	}

	d.core.Reset()
	// Mirrors original_source/block/cpu.cpp's CPU::reset(), which seeds
	// SP to the last valid byte of internal SRAM rather than zero.
	d.core.SetSP(uint16(d.derived.ExSRAMStart - 1))
}

// LoadFlash accepts a byte buffer of even length no larger than the
// device's flash capacity; pairs are packed little-endian into 16-bit
// words and any words beyond the supplied data stay 0xFFFF (spec.md
// §6). Odd length or an oversized image is a configuration error.
func (d *Device) LoadFlash(data []byte) error {
	if len(data)%2 != 0 || len(data) > len(d.flash)*2 {
		return errors.New(errors.FlashLoadSizeMismatch, len(data), len(d.flash))
	}
	for i := range d.flash {
		d.flash[i] = 0xFFFF
	}
	for i := 0; i < len(data)/2; i++ {
		d.flash[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return nil
}

// Step drains the scheduler to the next due tick; with only the
// CPU-step event armed this executes (or stalls) exactly one CPU tick.
func (d *Device) Step() {
	d.sched.Step()
}

// cpuStep is the CPU-step event's callback, scheduled every CPU tick
// at priority 100: tick the CCP window, service a pending interrupt if
// eligible, execute one instruction if none is already in flight, then
// account for the cycle just spent (spec.md §4.3/§4.6).
func (d *Device) cpuStep() clocks.Result {
	d.core.TickCCP()

	if d.interruptEligible() {
		d.serviceInterrupt()
	}

	if d.core.InstructionCycles() == 0 {
		cycles := d.core.Execute()
		if d.core.RETIPending() {
			d.pmic.RETI()
			d.core.ClearRETIPending()
		}
		d.core.SetInstructionCycles(cycles)
		d.core.ClearInterruptWait()
	}

	d.core.DecrementInstructionCycles()
	return clocks.Requeue(1)
}

func (d *Device) interruptEligible() bool {
	return d.core.InstructionCycles() == 0 &&
		!d.core.InterruptWaitInstruction() &&
		d.core.Flag(cpu.FlagI) &&
		d.core.CCPState() == cpu.CCPNone
}

// serviceInterrupt runs the six-step acknowledge sequence of spec.md
// §4.3: select, acknowledge, dispatch to the owning block, push PC,
// jump to the vector, and charge the fixed 5-cycle entry overhead.
func (d *Device) serviceInterrupt() {
	iv, lvl, ok := d.pmic.Select()
	if !ok {
		return
	}
	d.pmic.Acknowledge(iv, lvl)
	if b := d.ivOwner[iv]; b != nil {
		b.ExecuteIV(iv - b.IVBase())
	}

	d.core.PushPC()
	vector := uint32(2 * iv)
	if d.pmic.IVSel() {
		vector += d.derived.FlashAppSize
	}
	d.core.SetPC(vector)

	d.core.SetInstructionCycles(5)
	d.core.SetInterruptWait()
}

// block.Handle, for every block constructed with d as its handle.

func (d *Device) Logf(tag, format string, args ...interface{}) {
	logger.Logf(logger.Allow, tag, format, args...)
}

func (d *Device) SetIVLvl(iv int, lvl block.IntLvl) { d.pmic.SetIVLvl(iv, lvl) }

func (d *Device) Schedule(e *clocks.Event, ticks uint32) { d.sched.Schedule(e, ticks) }
func (d *Device) Unschedule(e *clocks.Event)             { d.sched.Unschedule(e) }

func (d *Device) CCPState() uint8 { return d.core.CCPState() }

func (d *Device) ClockScale(dom clocks.Domain) uint32     { return d.clk.ClockScale(dom) }
func (d *Device) ClockFrequency(dom clocks.Domain) uint32 { return d.clk.ClockFrequency(dom) }

// OnClockConfigChange satisfies clk.Handle: CLK calls this once it has
// committed a prescaler change, so the scheduler can rescale every
// event still queued against a changed domain (spec.md §4.5).
func (d *Device) OnClockConfigChange() { d.sched.OnClockConfigChange() }

// Host-observable hooks (spec.md §6): register file, SREG/SP/PC with
// range checks, data memory, flash, the breaked flag, SYS tick and
// clock frequency.

func (d *Device) R(i int) uint8       { return d.core.R(i) }
func (d *Device) SetR(i int, v uint8) { d.core.SetR(i, v) }

func (d *Device) SREG() uint8     { return d.core.SREG() }
func (d *Device) SetSREG(v uint8) { d.core.SetSREG(v) }

func (d *Device) SP() uint16 { return d.core.SP() }

// SetSP sets the stack pointer; a value outside internal SRAM is a
// logged runtime anomaly, not a rejection — the core never refuses a
// host-directed register write, it only records that it looks wrong.
func (d *Device) SetSP(v uint16) {
	if uint32(v) < addresses.SRAMStart || uint32(v) >= addresses.SRAMStart+d.cfg.SRAMSize {
		logger.Logf(logger.Allow, "device", errors.New(errors.StackPointerOutOfRange, v).Error())
	}
	d.core.SetSP(v)
}

func (d *Device) PC() uint32 { return d.core.PC() }

// SetPC rejects a target outside the flash image outright: per spec.md
// §7, PC out of range set from outside the core is the one runtime
// failure that is fatal rather than merely logged.
func (d *Device) SetPC(v uint32) error {
	if v >= uint32(len(d.flash)) {
		return errors.New(errors.ProgramCounterOverflow, v)
	}
	d.core.SetPC(v)
	return nil
}

func (d *Device) ReadData(addr uint32) uint8     { return d.mem.Read(addr) }
func (d *Device) WriteData(addr uint32, v uint8) { d.mem.Write(addr, v) }

// FlashWord reads flash word addr; out-of-range addresses read as the
// erased-flash value, matching Core.fetch's own fallback.
func (d *Device) FlashWord(addr uint32) uint16 {
	if addr >= uint32(len(d.flash)) {
		return 0xFFFF
	}
	return d.flash[addr]
}

// SetFlashWord writes flash word addr; out-of-range addresses are a
// no-op.
func (d *Device) SetFlashWord(addr uint32, v uint16) {
	if addr >= uint32(len(d.flash)) {
		return
	}
	d.flash[addr] = v
}

func (d *Device) Breaked() bool { return d.core.Breaked() }
func (d *Device) ClearBreak()   { d.core.ClearBreaked() }

// SysTick returns the scheduler's current SYS tick (clk_sys_tick).
func (d *Device) SysTick() uint64 { return d.sched.Now() }
