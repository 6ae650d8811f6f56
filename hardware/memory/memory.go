// Package memory implements the data-space dispatcher: routing an
// address into the I/O-block window, EEPROM, internal SRAM, the
// emulator-private window or external SRAM, per spec.md §4.4.
package memory

import (
	"github.com/avrxmega/xmsim/errors"
	"github.com/avrxmega/xmsim/hardware/block"
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
	"github.com/avrxmega/xmsim/logger"
)

// Config carries the per-model sizes the dispatcher needs; it mirrors
// the derived fields of model.Config (spec.md §6) without importing
// package model, which instead imports memory's constants.
type Config struct {
	EEPROMSize  uint32
	SRAMSize    uint32
	ExSRAMStart uint32
	ExSRAMSize  uint32
}

// Memory is the data-space dispatcher. It owns internal SRAM and the
// external-SRAM stub; I/O and EEPROM access are delegated.
type Memory struct {
	cfg Config

	ioOwner [addresses.IOSize]block.Block
	blocks  []block.Block

	sram []uint8

	// tick reports the current SYS tick, exposed little-endian at the
	// emulator window's first four bytes (spec.md §4.4).
	tick func() uint64
}

// New builds the dispatcher's I/O-offset→block map and SRAM backing
// array. It returns an error if two blocks' I/O windows overlap
// (errors.BlockIOWindowOverlap).
func New(cfg Config, blocks []block.Block, tick func() uint64) (*Memory, error) {
	m := &Memory{cfg: cfg, blocks: blocks, sram: make([]uint8, cfg.SRAMSize), tick: tick}
	for _, b := range blocks {
		base, size := b.IOBase(), b.IOSize()
		for off := base; off < base+size; off++ {
			if m.ioOwner[off] != nil {
				return nil, errors.New(errors.BlockIOWindowOverlap, m.ioOwner[off].Label(), b.Label(), off)
			}
			m.ioOwner[off] = b
		}
	}
	return m, nil
}

// Read returns the byte at data-space address addr.
func (m *Memory) Read(addr uint32) uint8 {
	switch {
	case addr < addresses.IOSize:
		return m.readIO(uint16(addr))
	case addr >= addresses.EEPROMStart && addr < addresses.EEPROMStart+m.cfg.EEPROMSize:
		logger.Logf(logger.Allow, "memory", errors.New(errors.EEPROMAccess, addr).Error())
		return 0
	case addr >= addresses.SRAMStart && addr < addresses.SRAMStart+m.cfg.SRAMSize:
		return m.sram[addr-addresses.SRAMStart]
	case addr >= addresses.EmulatorStart && addr < addresses.EmulatorStart+addresses.EmulatorSize:
		return m.readEmulatorWindow(addr - addresses.EmulatorStart)
	case m.cfg.ExSRAMSize > 0 && addr >= m.cfg.ExSRAMStart && addr < m.cfg.ExSRAMStart+m.cfg.ExSRAMSize:
		logger.Logf(logger.Allow, "memory", errors.New(errors.ExternalSRAMAccess, addr).Error())
		return 0
	default:
		logger.Logf(logger.Allow, "memory", errors.New(errors.UnrecognisedAddress, addr).Error())
		return 0
	}
}

// Write stores v at data-space address addr.
func (m *Memory) Write(addr uint32, v uint8) {
	switch {
	case addr < addresses.IOSize:
		m.writeIO(uint16(addr), v)
	case addr >= addresses.EEPROMStart && addr < addresses.EEPROMStart+m.cfg.EEPROMSize:
		logger.Logf(logger.Allow, "memory", errors.New(errors.EEPROMAccess, addr).Error())
	case addr >= addresses.SRAMStart && addr < addresses.SRAMStart+m.cfg.SRAMSize:
		m.sram[addr-addresses.SRAMStart] = v
	case addr >= addresses.EmulatorStart && addr < addresses.EmulatorStart+addresses.EmulatorSize:
		logger.Logf(logger.Allow, "memory", errors.New(errors.EmulatorWindowWrite, addr).Error())
	case m.cfg.ExSRAMSize > 0 && addr >= m.cfg.ExSRAMStart && addr < m.cfg.ExSRAMStart+m.cfg.ExSRAMSize:
		logger.Logf(logger.Allow, "memory", errors.New(errors.ExternalSRAMAccess, addr).Error())
	default:
		logger.Logf(logger.Allow, "memory", errors.New(errors.UnrecognisedAddress, addr).Error())
	}
}

func (m *Memory) readIO(offset uint16) uint8 {
	b := m.ioOwner[offset]
	if b == nil {
		logger.Logf(logger.Allow, "memory", errors.New(errors.UnassignedIOAddress, offset).Error())
		return 0
	}
	return b.GetIO(offset - b.IOBase())
}

func (m *Memory) writeIO(offset uint16, v uint8) {
	b := m.ioOwner[offset]
	if b == nil {
		logger.Logf(logger.Allow, "memory", errors.New(errors.UnassignedIOAddress, offset).Error())
		return
	}
	b.SetIO(offset-b.IOBase(), v)
}

// readEmulatorWindow exposes clk_sys_tick little-endian at offsets
// 0-3; every other offset in the window reads as zero with a warning.
func (m *Memory) readEmulatorWindow(offset uint32) uint8 {
	if offset < 4 {
		tick := m.tick()
		return uint8(tick >> (8 * offset))
	}
	logger.Logf(logger.Allow, "memory", "read from unassigned emulator window offset %#02x", offset)
	return 0
}

// SBI/CBI read the current byte then rewrite it with one bit set or
// cleared; this dispatcher's Read/Write already perform the full RMW
// spec.md §4.4 calls for, so these bit helpers are plain convenience
// wrappers over Read/Write. The CPU's SBI/CBI/SBIC/SBIS handlers do
// not call them; they do the same read-modify-write themselves.
func (m *Memory) SetBit(addr uint32, bit uint8) {
	m.Write(addr, m.Read(addr)|1<<bit)
}

func (m *Memory) ClearBit(addr uint32, bit uint8) {
	m.Write(addr, m.Read(addr)&^(1<<bit))
}

func (m *Memory) TestBit(addr uint32, bit uint8) bool {
	return m.Read(addr)&(1<<bit) != 0
}
