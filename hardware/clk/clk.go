// Package clk implements the CLK block: system clock source selection
// and the cascaded prescaler tree (A/B/C) that derives PER4/PER2/PER/CPU
// from SYS. It is the clocks.Scales implementation the scheduler runs
// against.
package clk

import (
	"github.com/avrxmega/xmsim/hardware/clocks"
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
)

// SCLK source selection values, CLK.CTRL bits 0-2.
const (
	SrcRC2M  = 0
	SrcRC32M = 1
	SrcRC32K = 2
	SrcXOSC  = 3
	SrcPLL   = 4
)

// I/O offsets within the CLK window, per spec.md §6.
const (
	offCtrl    = 0x00
	offPsctrl  = 0x01
	offLock    = 0x02
	offRtcCtrl = 0x03
)

// psadiv divisor table: a 4-bit PSADIV field selects one of these ten
// divisors (spec.md §3, "0..9 -> divisor 1..512").
var psadivTable = [10]uint32{1, 2, 4, 8, 16, 32, 64, 128, 256, 512}

// psbcdiv 2-bit field -> (B, C), per spec.md §3.
var psbcdivTable = [4][2]uint32{
	{1, 1}, // 00
	{1, 2}, // 01
	{2, 1}, // 10
	{4, 1}, // 11
}

// FrequencySource is OSC's contract to CLK: the Hz of a given SCLK
// selection, and whether that source is currently ready (enabled and,
// for PLL, locked).
type FrequencySource interface {
	SourceFrequency(sel uint8) (hz uint32, ready bool)
}

// Handle is the narrow view of Device that CLK needs.
type Handle interface {
	Logf(tag, format string, args ...interface{})
	CCPState() uint8
	OnClockConfigChange()
}

// CLK is the clock-source-and-prescaler block.
type CLK struct {
	h   Handle
	osc FrequencySource

	ctrl    uint8
	psctrl  uint8
	lock    bool
	rtcctrl uint8

	asyWarned bool
}

// New creates a CLK block. osc supplies the Hz of each selectable
// source.
func New(h Handle, osc FrequencySource) *CLK {
	return &CLK{h: h, osc: osc}
}

func (c *CLK) Label() string  { return "clk" }
func (c *CLK) IOBase() uint16 { return addresses.CLKBase }
func (c *CLK) IOSize() uint16 { return addresses.CLKSize }
func (c *CLK) IVBase() int    { return 0 }
func (c *CLK) IVCount() int   { return 0 }
func (c *CLK) ExecuteIV(int)  {}

// Reset selects RC2M with all prescalers at 1x and clears lock. Device
// resets CLK before scheduling anything, so ClockScale is always valid
// once a device exists (spec.md §4.6).
func (c *CLK) Reset() {
	c.ctrl = SrcRC2M
	c.psctrl = 0
	c.lock = false
	c.rtcctrl = 0
}

func (c *CLK) GetIO(offset uint16) uint8 {
	switch offset {
	case offCtrl:
		return c.ctrl
	case offPsctrl:
		return c.psctrl
	case offLock:
		if c.lock {
			return 1
		}
		return 0
	case offRtcCtrl:
		return c.rtcctrl
	default:
		c.h.Logf("clk", "read from unknown CLK offset %#02x", offset)
		return 0
	}
}

func (c *CLK) SetIO(offset uint16, v uint8) {
	switch offset {
	case offCtrl:
		if c.lock {
			c.h.Logf("clk", "write to CTRL rejected: clock configuration is locked")
			return
		}
		c.ctrl = v
	case offPsctrl:
		if c.lock {
			c.h.Logf("clk", "write to PSCTRL rejected: clock configuration is locked")
			return
		}
		c.psctrl = v
		c.h.OnClockConfigChange()
	case offLock:
		if v&1 == 0 {
			c.h.Logf("clk", "write clearing LOCK rejected: LOCK cannot be cleared")
			return
		}
		if c.h.CCPState()&0x1 == 0 {
			c.h.Logf("clk", "write to LOCK rejected: CCP_IOREG window is not active")
			return
		}
		c.lock = true
	case offRtcCtrl:
		c.rtcctrl = v
	default:
		c.h.Logf("clk", "write to unknown CLK offset %#02x", offset)
	}
}

func (c *CLK) psadiv() uint32 {
	idx := (c.psctrl >> 1) & 0xF
	if idx > 9 {
		idx = 9
	}
	return psadivTable[idx]
}

func (c *CLK) psbcdiv() (b, c2 uint32) {
	bc := psbcdivTable[(c.psctrl>>5)&0x3]
	return bc[0], bc[1]
}

// ClockScale implements clocks.Scales.
func (c *CLK) ClockScale(d clocks.Domain) uint32 {
	a := c.psadiv()
	b, cc := c.psbcdiv()
	switch d {
	case clocks.SYS:
		return 1
	case clocks.PER4:
		return a
	case clocks.PER2:
		return a * b
	case clocks.PER, clocks.CPU:
		return a * b * cc
	case clocks.ASY:
		if !c.asyWarned {
			c.h.Logf("clk", "ASY clock domain is stubbed at scale 1")
			c.asyWarned = true
		}
		return 1
	default:
		return 1
	}
}

// ClockFrequency returns the Hz of the given domain, derived from the
// currently selected SCLK source's frequency divided by its scale.
func (c *CLK) ClockFrequency(d clocks.Domain) uint32 {
	hz, ready := c.osc.SourceFrequency(c.ctrl & 0x7)
	if !ready {
		c.h.Logf("clk", "selected clock source is not ready")
		return 0
	}
	scale := c.ClockScale(d)
	if scale == 0 {
		return 0
	}
	return hz / scale
}
