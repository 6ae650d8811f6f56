package model

// Catalog128 is a representative large-flash configuration, sized
// after original_source/model/x128a1.cpp's ATxmega128A1::MODEL_CONF:
// 128KiB application flash plus a 16-page (0x200/page), 8KiB boot
// section, 2KiB EEPROM, 16KiB internal SRAM, with external SRAM
// wired up for the host to back with a memory-mapped peripheral.
var Catalog128 = Config{
	Name:          "xm128",
	FlashSize:     0x22000,
	FlashPageSize: 0x200,
	FlashBootSize: 0x2000,
	EEPROMSize:    0x0800,
	SRAMSize:      0x4000,
	HasExSRAM:     true,
}

// Catalog32 is a smaller configuration for hosts that don't need
// external SRAM or a large flash image — 32KiB of flash, of which the
// last page (0x100) is the boot section.
var Catalog32 = Config{
	Name:          "xm32",
	FlashSize:     0x8000,
	FlashPageSize: 0x100,
	FlashBootSize: 0x100,
	EEPROMSize:    0x0400,
	SRAMSize:      0x1000,
	HasExSRAM:     false,
}
