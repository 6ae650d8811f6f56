// Package block defines the contract every peripheral in this core
// satisfies, and the narrow capability handle passed to each of them at
// construction so that blocks can raise interrupts and schedule events
// without owning (or even importing) the Device that composes them —
// see spec.md §9, "Block↔Device cyclic reference".
package block

import "github.com/avrxmega/xmsim/hardware/clocks"

// IntLvl is an interrupt priority level. It lives here, rather than in
// package pmic, so that Handle (and any block) can refer to it without
// block needing to import pmic — pmic imports block, not the other way
// round.
type IntLvl int

// Priority levels selectable for an interrupt vector, ascending.
const (
	LvlNone IntLvl = iota
	LvlLo
	LvlMed
	LvlHi
	LvlNMI
)

// Handle is the capability a Block is given at construction. It is a
// deliberately narrow view of Device: a block can raise its own
// interrupts and manage its own scheduled events, but it cannot reach
// into another block, the register file or the flash image.
type Handle interface {
	// SetIVLvl idempotently places iv into the pending set for lvl,
	// removing it from any other pending set; LvlNone clears it.
	SetIVLvl(iv int, lvl IntLvl)

	// Schedule arms e to fire ticks ticks from now, in e.Domain.
	Schedule(e *clocks.Event, ticks uint32)
	// Unschedule removes e from the queue; a no-op if not scheduled.
	Unschedule(e *clocks.Event)

	// CCPState returns the live CCP state (cpu.CCPIOREG / cpu.CCPSPM /
	// cpu.CCPNone), so blocks can gate protected register writes.
	CCPState() uint8

	// ClockScale and ClockFrequency let a block compute its own
	// time-domain behaviour (e.g. a Timer/Counter's tick period).
	ClockScale(d clocks.Domain) uint32
	ClockFrequency(d clocks.Domain) uint32
}

// Block is the uniform contract satisfied by every peripheral: an I/O
// window, an optional IV window, a reset hook and an IV-acknowledge
// hook. Blocks that need periodic behaviour schedule their own
// clocks.Event through the Handle; there is no separate Step method.
type Block interface {
	// Label identifies the block in diagnostics (e.g. "clk", "tc0").
	Label() string

	// IOBase and IOSize describe this block's disjoint I/O window.
	IOBase() uint16
	IOSize() uint16

	// IVBase and IVCount describe this block's disjoint IV window.
	// IVCount() == 0 means the block never raises interrupts.
	IVBase() int
	IVCount() int

	// GetIO and SetIO access offsets within [0, IOSize()). Unknown
	// offsets are the block's own responsibility to log and handle
	// (read-as-zero / no-op), per spec.md §4.1.
	GetIO(offset uint16) uint8
	SetIO(offset uint16, v uint8)

	// Reset restores architectural defaults.
	Reset()

	// ExecuteIV is invoked with an IV local to this block's window
	// (iv - IVBase()) when that IV is acknowledged by the interrupt
	// engine; the block typically clears the flag that raised it.
	ExecuteIV(localIV int)
}
