package cpu

// Memory is the narrow view of the data-space dispatcher the
// instruction executor needs: plain byte read/write. It is satisfied
// by *memory.Memory; the cpu package never imports package memory to
// keep the dependency direction flash/memory → cpu one-way.
type Memory interface {
	Read(addr uint32) uint8
	Write(addr uint32, v uint8)
}

// Core is the instruction decoder/executor: a Registers plus the flash
// image, the memory dispatcher, and the per-model constants that size
// the program counter and RAMP masks (spec.md §3).
type Core struct {
	Registers

	flash []uint16
	mem   Memory

	pc24            bool // true when flash_size > 128KiB
	stackFrameBytes int  // 2 or 3, tied to pc24
	eindMask        uint8
	rampMask        uint8

	breaked bool

	// retiPending is set by RETI and cleared by Device once it has told
	// the PMIC handle to drop the currently-executing interrupt level
	// (spec.md §4.3). Core has no PMIC handle of its own.
	retiPending bool

	// interruptWaitInstruction and instructionCycles are read by
	// Device's interrupt-eligibility check (spec.md §4.3) but owned
	// here since they're intrinsic to "is an instruction in flight".
	interruptWaitInstruction bool
	instructionCycles        int
}

// New creates a Core over the given flash image and memory dispatcher.
// flashSize and exSRAMBound (exsram_start+exsram_size, or sram_start+
// sram_size when there is no ex-SRAM) size the PC width and RAMP mask
// per spec.md §3.
func New(flash []uint16, mem Memory, flashSize uint32, exSRAMBound uint32) *Core {
	c := &Core{flash: flash, mem: mem}
	c.pc24 = flashSize > 128*1024
	if c.pc24 {
		c.stackFrameBytes = 3
	} else {
		c.stackFrameBytes = 2
	}
	c.eindMask = uint8(flashSize >> 9)
	c.rampMask = uint8(exSRAMBound >> 8)
	return c
}

// Reset shadows Registers.Reset to also clear the Core-level execution
// state (breaked/RETI/interrupt-wait/instruction-cycles flags) that the
// embedded Registers knows nothing about. Device.Reset relies on this
// to fully restore architectural defaults (spec.md §4.6); SP is left
// untouched here since Device sets it from the model's SRAM top.
func (c *Core) Reset() {
	c.Registers.Reset()
	c.breaked = false
	c.retiPending = false
	c.interruptWaitInstruction = false
	c.instructionCycles = 0
}

func (c *Core) pcMask() uint32 {
	if c.pc24 {
		return 0xFFFFFF
	}
	return 0xFFFF
}

// InterruptWaitInstruction reports whether an instruction must still
// execute before a new interrupt may be serviced (spec.md §4.3).
func (c *Core) InterruptWaitInstruction() bool { return c.interruptWaitInstruction }
func (c *Core) ClearInterruptWait()            { c.interruptWaitInstruction = false }
func (c *Core) SetInterruptWait()              { c.interruptWaitInstruction = true }

// InstructionCycles reports the remaining cycles of a multi-cycle
// instruction in flight; Device decrements it each CPU tick.
func (c *Core) InstructionCycles() int          { return c.instructionCycles }
func (c *Core) SetInstructionCycles(cycles int) { c.instructionCycles = cycles }
func (c *Core) DecrementInstructionCycles() {
	if c.instructionCycles > 0 {
		c.instructionCycles--
	}
}

// Breaked reports whether a BREAK instruction has executed since the
// flag was last cleared.
func (c *Core) Breaked() bool   { return c.breaked }
func (c *Core) ClearBreaked()   { c.breaked = false }

// RETIPending reports whether a RETI has executed since the flag was
// last cleared; Device consumes it to tell the PMIC to drop a level.
func (c *Core) RETIPending() bool  { return c.retiPending }
func (c *Core) ClearRETIPending()  { c.retiPending = false }

func (c *Core) pushByte(b uint8) {
	c.sp--
	c.mem.Write(uint32(c.sp), b)
}

func (c *Core) popByte() uint8 {
	b := c.mem.Read(uint32(c.sp))
	c.sp++
	return b
}

// PushPC pushes the current PC MSB-first using the model's stack frame
// width, for CALL/RCALL/ICALL/EICALL and the interrupt engine.
func (c *Core) PushPC() {
	for i := c.stackFrameBytes - 1; i >= 0; i-- {
		c.pushByte(uint8(c.pc >> (8 * i)))
	}
}

// PopPC pops a return address pushed by PushPC, for RET/RETI.
func (c *Core) PopPC() uint32 {
	var pc uint32
	for i := 0; i < c.stackFrameBytes; i++ {
		pc |= uint32(c.popByte()) << (8 * i)
	}
	return pc & c.pcMask()
}

// StackFrameBytes reports the return-address width (2 or 3 bytes), per
// spec.md §4.3 step 4 and the interrupt engine's push sequence.
func (c *Core) StackFrameBytes() int { return c.stackFrameBytes }

func (c *Core) fetch(pc uint32) uint16 {
	if int(pc) >= len(c.flash) {
		return 0xFFFF
	}
	return c.flash[pc]
}

// Execute decodes and runs one instruction at the current PC, returning
// its cycle count. It is the sole entry point Device's CPU-step event
// calls when instruction_cycles has reached zero.
func (c *Core) Execute() int {
	op := c.fetch(c.pc)
	h := opcodeTable[op]
	cycles := h(c, op)
	c.pc &= c.pcMask()
	return cycles
}
