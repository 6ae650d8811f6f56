// Package pmic implements the Programmable Multi-level Interrupt
// Controller: the four priority-ordered pending sets, the ctrl/status
// bitfields, and vector selection/acknowledgement. The actual
// PC-push/jump mechanics live in the CPU/Device, since they need the
// register file and flash width that pmic deliberately does not see —
// see spec.md §4.3 and §9 ("Block↔Device cyclic reference").
package pmic

import (
	"github.com/avrxmega/xmsim/hardware/block"
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
)

// IntLvl re-exports block.IntLvl under the name this package's callers
// expect.
type IntLvl = block.IntLvl

const (
	LvlNone = block.LvlNone
	LvlLo   = block.LvlLo
	LvlMed  = block.LvlMed
	LvlHi   = block.LvlHi
	LvlNMI  = block.LvlNMI
)

// ctrl bits.
const (
	ctrlLoLvlEn = 1 << 0
	ctrlMedLvlEn = 1 << 1
	ctrlHiLvlEn = 1 << 2
	ctrlIVSel    = 1 << 6
	ctrlRREn     = 1 << 7
)

// status bits.
const (
	statusLoLvlEx  = 1 << 0
	statusMedLvlEx = 1 << 1
	statusHiLvlEx  = 1 << 2
	statusNMIEx    = 1 << 7
)

// I/O offsets within the PMIC window (real ATxmega layout).
const (
	offStatus = 0x00
	offIntPri = 0x01
	offCtrl   = 0x02
)

// Handle is the narrow view of Device that PMIC needs: logging and
// nothing else — PMIC is purely bookkeeping, it never schedules events
// or touches CCP.
type Handle interface {
	Logf(tag, format string, args ...interface{})
}

// PMIC is the interrupt controller block.
type PMIC struct {
	h Handle

	ctrl   uint8
	status uint8
	intpri uint8 // INTPRI: round-robin priority stub, not implemented (see original_source)

	// levelOf[iv] is the pending level of iv, or LvlNone. This realises
	// spec.md's "four disjoint ordered sets" as one array indexed by IV
	// number: scanning ascending IV order for a matching level gives
	// exactly "smallest IV wins within a level" for free.
	levelOf [addresses.IVMaxCount]IntLvl
}

// New creates a PMIC block.
func New(h Handle) *PMIC {
	return &PMIC{h: h}
}

func (p *PMIC) Label() string    { return "pmic" }
func (p *PMIC) IOBase() uint16   { return addresses.PMICBase }
func (p *PMIC) IOSize() uint16   { return addresses.PMICSize }
func (p *PMIC) IVBase() int      { return 0 }
func (p *PMIC) IVCount() int     { return 0 }
func (p *PMIC) ExecuteIV(int)    {}

// Reset restores architectural defaults: all levels disabled, IVSEL
// clear, status and pending sets empty.
func (p *PMIC) Reset() {
	p.ctrl = 0
	p.status = 0
	p.intpri = 0
	for i := range p.levelOf {
		p.levelOf[i] = LvlNone
	}
}

func (p *PMIC) GetIO(offset uint16) uint8 {
	switch offset {
	case offStatus:
		return p.status
	case offIntPri:
		return p.intpri
	case offCtrl:
		return p.ctrl
	default:
		p.h.Logf("pmic", "read from unknown PMIC offset %#02x", offset)
		return 0
	}
}

func (p *PMIC) SetIO(offset uint16, v uint8) {
	switch offset {
	case offStatus:
		// status is set/cleared only by the interrupt engine itself.
		p.h.Logf("pmic", "write to read-only STATUS register ignored")
	case offIntPri:
		// round-robin priority is a documented stub in the source this
		// was modelled on; accept the write, it has no effect.
		p.intpri = v
	case offCtrl:
		p.ctrl = v
	default:
		p.h.Logf("pmic", "write to unknown PMIC offset %#02x", offset)
	}
}

// IVSel reports whether the vector table is relocated to the boot
// region.
func (p *PMIC) IVSel() bool { return p.ctrl&ctrlIVSel != 0 }

// SetIVLvl idempotently places iv into the pending set for lvl,
// removing it from any other. LvlNone clears the pending entry.
func (p *PMIC) SetIVLvl(iv int, lvl IntLvl) {
	if iv < 0 || iv >= len(p.levelOf) {
		return
	}
	p.levelOf[iv] = lvl
}

// LevelOf reports the pending level of iv (LvlNone if not pending).
func (p *PMIC) LevelOf(iv int) IntLvl {
	if iv < 0 || iv >= len(p.levelOf) {
		return LvlNone
	}
	return p.levelOf[iv]
}

// CurrentIntLvl returns the highest bit set in status (NMI > HI > MED >
// LO), or LvlNone.
func (p *PMIC) CurrentIntLvl() IntLvl {
	switch {
	case p.status&statusNMIEx != 0:
		return LvlNMI
	case p.status&statusHiLvlEx != 0:
		return LvlHi
	case p.status&statusMedLvlEx != 0:
		return LvlMed
	case p.status&statusLoLvlEx != 0:
		return LvlLo
	default:
		return LvlNone
	}
}

// Select picks the next IV to service, applying the priority and
// nesting rules of spec.md §4.3: NMI first unconditionally, then HI
// if enabled and nothing ≥HI is already executing, then MED, then LO.
// Within a level the smallest IV wins. Returns ok=false if nothing is
// eligible.
func (p *PMIC) Select() (iv int, lvl IntLvl, ok bool) {
	current := p.CurrentIntLvl()

	if iv, ok := p.smallestPending(LvlNMI); ok {
		return iv, LvlNMI, true
	}
	if p.ctrl&ctrlHiLvlEn != 0 && current < LvlHi {
		if iv, ok := p.smallestPending(LvlHi); ok {
			return iv, LvlHi, true
		}
	}
	if p.ctrl&ctrlMedLvlEn != 0 && current < LvlMed {
		if iv, ok := p.smallestPending(LvlMed); ok {
			return iv, LvlMed, true
		}
	}
	if p.ctrl&ctrlLoLvlEn != 0 && current < LvlLo {
		if iv, ok := p.smallestPending(LvlLo); ok {
			return iv, LvlLo, true
		}
	}
	return 0, LvlNone, false
}

func (p *PMIC) smallestPending(lvl IntLvl) (int, bool) {
	for iv, l := range p.levelOf {
		if l == lvl {
			return iv, true
		}
	}
	return 0, false
}

// Acknowledge removes iv from its pending set and sets the status bit
// for lvl. It does not touch PC/SP/stack — that is the Device's job.
func (p *PMIC) Acknowledge(iv int, lvl IntLvl) {
	p.SetIVLvl(iv, LvlNone)
	switch lvl {
	case LvlNMI:
		p.status |= statusNMIEx
	case LvlHi:
		p.status |= statusHiLvlEx
	case LvlMed:
		p.status |= statusMedLvlEx
	case LvlLo:
		p.status |= statusLoLvlEx
	}
}

// RETI clears the highest currently-executing status bit (NMI first,
// then HI, MED, LO), per spec.md §4.3 — note this is pmic.status, not
// SREG.I (XMEGA semantics differ from classic AVR here).
func (p *PMIC) RETI() {
	switch {
	case p.status&statusNMIEx != 0:
		p.status &^= statusNMIEx
	case p.status&statusHiLvlEx != 0:
		p.status &^= statusHiLvlEx
	case p.status&statusMedLvlEx != 0:
		p.status &^= statusMedLvlEx
	case p.status&statusLoLvlEx != 0:
		p.status &^= statusLoLvlEx
	}
}
