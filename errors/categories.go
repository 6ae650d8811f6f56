package errors

// list of error numbers, grouped by the subsystem that raises them.
const (
	// Configuration / wiring — raised during Device construction or
	// flash load. The device is unusable when these occur.
	InvalidModelConfiguration Errno = iota
	FlashLoadSizeMismatch
	BlockIOWindowOverlap
	BlockIVWindowOverlap

	// CPU / instruction executor
	UnimplementedInstruction
	ProgramCounterOverflow
	EIJMPUnsupportedOnSmallFlash
	UndefinedPostIncrementBehaviour

	// Memory dispatch
	UnrecognisedAddress
	UnassignedIOAddress
	StackPointerOutOfRange
	EEPROMAccess
	ExternalSRAMAccess
	EmulatorWindowWrite

	// Scheduler
	UnknownSchedulerEvent
	UnalignedClockConfigChange

	// PMIC / interrupt engine
	InvalidInterruptLevel

	// CLK / OSC
	ClockRegisterLocked
	LockBitRequiresCCP
)
