package cpu

import "github.com/avrxmega/xmsim/hardware/memory/addresses"

// I/O offsets within the CPU window, per spec.md §6.
const (
	offCCP   = 0x04
	offRampD = 0x08
	offRampX = 0x09
	offRampY = 0x0A
	offRampZ = 0x0B
	offEind  = 0x0C
	offSPL   = 0x0D
	offSPH   = 0x0E
	offSREG  = 0x0F
)

// Handle is the narrow view of Device the CPU block needs for
// diagnostics; the CPU block does no scheduling or interrupt raising of
// its own.
type Handle interface {
	Logf(tag, format string, args ...interface{})
}

// Block exposes the CCP register and the RAMPx/EIND/SP/SREG
// architectural state at the CPU's I/O window (base 0x0030), wrapping
// the Core that the Device drives directly for instruction execution.
type Block struct {
	h Handle
	c *Core
}

// NewBlock wraps c as a block.Block. The Device keeps its own *Core
// reference for Execute/interrupt delivery; Block only mediates the
// I/O-window view of the same state.
func NewBlock(h Handle, c *Core) *Block { return &Block{h: h, c: c} }

func (b *Block) Label() string  { return "cpu" }
func (b *Block) IOBase() uint16 { return addresses.CPUBase }
func (b *Block) IOSize() uint16 { return addresses.CPUSize }
func (b *Block) IVBase() int    { return 0 }
func (b *Block) IVCount() int   { return 0 }
func (b *Block) ExecuteIV(int)  {}

// Reset restores the wrapped Core's architectural defaults.
func (b *Block) Reset() { b.c.Reset() }

func (b *Block) GetIO(offset uint16) uint8 {
	switch offset {
	case offCCP:
		return 0 // write-only arm register; reads back as zero
	case offRampD:
		return b.c.rampD
	case offRampX:
		return b.c.rampX
	case offRampY:
		return b.c.rampY
	case offRampZ:
		return b.c.rampZ
	case offEind:
		return b.c.eind
	case offSPL:
		return uint8(b.c.sp)
	case offSPH:
		return uint8(b.c.sp >> 8)
	case offSREG:
		return b.c.sreg
	default:
		b.h.Logf("cpu", "read from unknown CPU offset %#02x", offset)
		return 0
	}
}

func (b *Block) SetIO(offset uint16, v uint8) {
	switch offset {
	case offCCP:
		b.c.ArmCCP(v)
	case offRampD:
		b.c.rampD = v & b.c.rampMask
	case offRampX:
		b.c.rampX = v & b.c.rampMask
	case offRampY:
		b.c.rampY = v & b.c.rampMask
	case offRampZ:
		b.c.rampZ = v & b.c.rampMask
	case offEind:
		b.c.eind = v & b.c.eindMask
	case offSPL:
		b.c.sp = b.c.sp&0xFF00 | uint16(v)
	case offSPH:
		b.c.sp = b.c.sp&0x00FF | uint16(v)<<8
	case offSREG:
		b.c.sreg = v
	default:
		b.h.Logf("cpu", "write to unknown CPU offset %#02x", offset)
	}
}
