// Package osc implements the OSC block: oscillator source enable/ready
// bits and PLL frequency derivation. Real electrical startup delay and
// crystal fidelity are out of scope (spec.md §1 non-goals); sources
// become ready on the tick they are enabled.
package osc

import (
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
)

// Nominal frequencies, Hz. XOSC's value is a stand-in for "whatever
// crystal the board designer fitted" — this core models selection and
// PLL math, not board-level configuration.
const (
	HzRC2M  = 2_000_000
	HzRC32M = 32_000_000
	HzRC32K = 32_768
	HzXOSC  = 16_000_000
)

// CTRL/STATUS enable bits.
const (
	bitRC2M  = 1 << 0
	bitRC32K = 1 << 1
	bitRC32M = 1 << 2
	bitXOSC  = 1 << 3
	bitPLL   = 1 << 4
)

// I/O offsets within the OSC window.
const (
	offCtrl     = 0x00
	offStatus   = 0x01
	offXOSCCtrl = 0x02
	offXOSCFail = 0x03
	offRC32KCal = 0x04
	offPLLCtrl  = 0x05
	offDFLLCtrl = 0x06
)

// PLLCTRL source select, bits 6-7.
const (
	pllSrcRC2M  = 0
	pllSrcRC32M = 2
	pllSrcXOSCDiv4 = 3
)

// Handle is the narrow view of Device that OSC needs. OSC never
// triggers its own failure IV in this core — real oscillator failure
// is electrical fidelity, out of scope (spec.md §1) — so unlike most
// blocks it has no need of block.Handle's scheduling/IV-raising
// methods; it only logs and reads CCP state.
type Handle interface {
	Logf(tag, format string, args ...interface{})
	CCPState() uint8
}

// OSC is the oscillator block.
type OSC struct {
	h Handle

	ctrl     uint8
	status   uint8
	xoscctrl uint8
	xoscfail uint8
	rc32kcal uint8
	pllctrl  uint8
	dfllctrl uint8
}

// New creates an OSC block.
func New(h Handle) *OSC {
	return &OSC{h: h}
}

func (o *OSC) Label() string  { return "osc" }
func (o *OSC) IOBase() uint16 { return addresses.OSCBase }
func (o *OSC) IOSize() uint16 { return addresses.OSCSize }
func (o *OSC) IVBase() int    { return addresses.OSCIVBase }
func (o *OSC) IVCount() int   { return addresses.OSCIVCount }

// ExecuteIV clears the XOSC failure-detection flag that raised the
// sole IV this block owns.
func (o *OSC) ExecuteIV(localIV int) {
	if localIV == 0 {
		o.xoscfail &^= 0x2
	}
}

// Reset enables RC2M only (the always-on boot oscillator) and seeds
// RC32KCAL to the fixed calibration value the original firmware ships
// with (original_source/block/osc.cpp).
func (o *OSC) Reset() {
	o.ctrl = bitRC2M
	o.status = bitRC2M
	o.xoscctrl = 0
	o.xoscfail = 0
	o.rc32kcal = 0x55
	o.pllctrl = 0
	o.dfllctrl = 0
}

func (o *OSC) GetIO(offset uint16) uint8 {
	switch offset {
	case offCtrl:
		return o.ctrl
	case offStatus:
		return o.status
	case offXOSCCtrl:
		return o.xoscctrl
	case offXOSCFail:
		return o.xoscfail
	case offRC32KCal:
		return o.rc32kcal
	case offPLLCtrl:
		return o.pllctrl
	case offDFLLCtrl:
		return o.dfllctrl
	default:
		o.h.Logf("osc", "read from unknown OSC offset %#02x", offset)
		return 0
	}
}

func (o *OSC) SetIO(offset uint16, v uint8) {
	switch offset {
	case offCtrl:
		o.ctrl = v
		// sources become ready immediately; no multi-tick startup
		// delay is modelled (see package doc).
		o.status = v
	case offXOSCCtrl:
		o.xoscctrl = v
	case offXOSCFail:
		// XOSCFDEN (bit 0, fail-detection enable) is CCP protected in
		// the source this was modelled on; the flag bit (bit 1) is a
		// plain read/clear-by-IV flag, not gated.
		if v&0x1 != o.xoscfail&0x1 && o.h.CCPState()&0x1 == 0 {
			o.h.Logf("osc", "write to XOSCFAIL.XOSCFDEN rejected: CCP_IOREG window is not active")
			v = (v &^ 0x1) | (o.xoscfail & 0x1)
		}
		o.xoscfail = v
	case offRC32KCal:
		o.rc32kcal = v
	case offPLLCtrl:
		o.pllctrl = v
	case offDFLLCtrl:
		o.dfllctrl = v
	default:
		o.h.Logf("osc", "write to unknown OSC offset %#02x", offset)
	}
}

// SourceFrequency reports the Hz of SCLK selection sel and whether that
// source is ready, per clk.FrequencySource.
func (o *OSC) SourceFrequency(sel uint8) (hz uint32, ready bool) {
	switch sel {
	case 0: // RC2M
		return HzRC2M, o.status&bitRC2M != 0
	case 1: // RC32M
		return HzRC32M, o.status&bitRC32M != 0
	case 2: // RC32K
		return HzRC32K, o.status&bitRC32K != 0
	case 3: // XOSC
		return HzXOSC, o.status&bitXOSC != 0
	case 4: // PLL
		return o.pllFrequency(), o.status&bitPLL != 0
	default:
		o.h.Logf("osc", "unknown SCLK selection %d", sel)
		return 0, false
	}
}

func (o *OSC) pllFrequency() uint32 {
	mul := uint32(o.pllctrl & 0x1F)
	if mul == 0 {
		mul = 1
	}
	switch (o.pllctrl >> 6) & 0x3 {
	case pllSrcRC2M:
		return HzRC2M * mul
	case pllSrcRC32M:
		return HzRC32M * mul
	case pllSrcXOSCDiv4:
		return (HzXOSC / 4) * mul
	default:
		o.h.Logf("osc", "unrecognised PLL source selection")
		return 0
	}
}
