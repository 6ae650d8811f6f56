package errors

var messages = map[Errno]string{
	// Configuration / wiring
	InvalidModelConfiguration: "invalid model configuration: %s",
	FlashLoadSizeMismatch:     "flash image size (%d bytes) is odd or exceeds capacity (%d words)",
	BlockIOWindowOverlap:      "I/O window of %s overlaps %s at offset %#04x",
	BlockIVWindowOverlap:      "IV window of %s overlaps %s at iv %d",

	// CPU / instruction executor
	UnimplementedInstruction:       "unimplemented instruction (%#04x) at pc %#06x",
	ProgramCounterOverflow:         "program counter overflowed flash (pc %#06x)",
	EIJMPUnsupportedOnSmallFlash:   "EIJMP/EICALL used on a device with flash <= 128KiB",
	UndefinedPostIncrementBehaviour: "undefined behaviour: post-increment through register %d",

	// Memory dispatch
	UnrecognisedAddress:  "address unrecognised (%#06x)",
	UnassignedIOAddress:  "no block owns I/O offset %#04x",
	StackPointerOutOfRange: "stack pointer (%#06x) is outside internal SRAM",
	EEPROMAccess:         "EEPROM access is stubbed (addr %#06x)",
	ExternalSRAMAccess:   "external SRAM access is stubbed (addr %#06x)",
	EmulatorWindowWrite:  "write to read-only emulator window rejected (addr %#06x)",

	// Scheduler
	UnknownSchedulerEvent:      "unschedule of unknown event",
	UnalignedClockConfigChange: "clock config change requested while misaligned with an event's tick",

	// PMIC / interrupt engine
	InvalidInterruptLevel: "invalid interrupt level (%d) for iv %d",

	// CLK / OSC
	ClockRegisterLocked: "write to %s rejected: clock configuration is locked",
	LockBitRequiresCCP:  "write to LOCK rejected: CCP_IOREG window is not active",
}
