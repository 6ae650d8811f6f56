// Package addresses holds the data-space memory map constants shared by
// the memory dispatcher, the Device and every Block.
package addresses

// Data-space layout, per spec.md §6. These are fixed across every
// model: only the sizes of EEPROM/SRAM/ex-SRAM vary by model.
const (
	IOSize          = 0x1000
	EEPROMStart     = 0x1000
	SRAMStart       = 0x2000
	EmulatorStart   = 0xFF00
	EmulatorSize    = 0x100
	MemMaxSize      = 0x01000000
	IVMaxCount      = 0x80
)

// Well-known I/O windows. Bases for CPU and CLK are pinned by spec.md
// §6; PMIC, OSC and GPIOR bases are not specified there and are taken
// from the ATxmega datasheet's conventional low I/O map (see DESIGN.md).
const (
	GPIORBase = 0x0000
	GPIORSize = 0x0010

	CPUBase = 0x0030
	CPUSize = 0x0010

	CLKBase = 0x0040
	CLKSize = 0x0008

	OSCBase = 0x0050
	OSCSize = 0x0008

	PMICBase = 0x00A0
	PMICSize = 0x0003

	TC0Base = 0x0800
	TC0Size = 0x0040
)

// IV numbers. IV 0 is reserved (RESET is not delivered through the
// pending-set machinery modelled here); peripheral IVs start at 1.
const (
	OSCIVBase = 1
	OSCIVCount = 1

	TC0IVBase  = 2
	TC0IVCount = 4
)
