// Package gpior implements the GPIOR block: a flat bank of
// general-purpose I/O registers with no side effects beyond storage,
// intended for inter-block or guest-to-host signalling conventions that
// this core does not otherwise define. Grounded directly on
// original_source/block/gpior.{h,cpp}: the original has no logic
// beyond a byte array either.
package gpior

import "github.com/avrxmega/xmsim/hardware/memory/addresses"

// GPIOR is sixteen bytes of plain scratch storage.
type GPIOR struct {
	data [addresses.GPIORSize]uint8
}

// New creates a GPIOR block.
func New() *GPIOR { return &GPIOR{} }

func (g *GPIOR) Label() string  { return "gpior" }
func (g *GPIOR) IOBase() uint16 { return addresses.GPIORBase }
func (g *GPIOR) IOSize() uint16 { return addresses.GPIORSize }
func (g *GPIOR) IVBase() int    { return 0 }
func (g *GPIOR) IVCount() int   { return 0 }
func (g *GPIOR) ExecuteIV(int)  {}

// Reset zeroes every register.
func (g *GPIOR) Reset() {
	for i := range g.data {
		g.data[i] = 0
	}
}

func (g *GPIOR) GetIO(offset uint16) uint8 {
	if int(offset) >= len(g.data) {
		return 0
	}
	return g.data[offset]
}

func (g *GPIOR) SetIO(offset uint16, v uint8) {
	if int(offset) >= len(g.data) {
		return
	}
	g.data[offset] = v
}
