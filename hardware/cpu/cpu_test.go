package cpu

import "testing"

type fakeMem struct {
	data [0x10000]uint8
}

func (m *fakeMem) Read(addr uint32) uint8    { return m.data[addr] }
func (m *fakeMem) Write(addr uint32, v uint8) { m.data[addr] = v }

func newCore(flash []uint16) (*Core, *fakeMem) {
	mem := &fakeMem{}
	c := New(flash, mem, 0x8000, 0x4000)
	c.sp = 0x3FFF
	return c, mem
}

// Scenario 1 (spec.md §8): LDI R16,5; LDI R17,3; ADD R16,R17; RET.
func TestArithmeticScenario(t *testing.T) {
	flash := []uint16{0xE005, 0xE013, 0x0F01, 0x9508}
	c, _ := newCore(flash)
	for i := 0; i < 3; i++ {
		c.Execute()
	}
	if got := c.R(16); got != 8 {
		t.Fatalf("R16 = %d, want 8", got)
	}
	if c.Flag(FlagZ) {
		t.Fatalf("Z flag set, want clear")
	}
	if c.Flag(FlagC) {
		t.Fatalf("C flag set, want clear")
	}
}

func TestLDIEncoding(t *testing.T) {
	// LDI R16, 0xAB -> 1110 KKKK dddd KKKK, d=0 (R16), K=0xAB
	op := uint16(0xE000) | uint16(0xA)<<8 | 0xB
	c, _ := newCore([]uint16{op})
	c.Execute()
	if c.R(16) != 0xAB {
		t.Fatalf("R16 = %#02x, want 0xab", c.R(16))
	}
}

func TestADDSetsCarryAndZero(t *testing.T) {
	// ADD R1,R2 where R1=R2=0x80 -> result 0 with carry set.
	c, _ := newCore([]uint16{0x0C12}) // ADD R1,R2
	c.SetR(1, 0x80)
	c.SetR(2, 0x80)
	c.Execute()
	if c.R(1) != 0 {
		t.Fatalf("R1 = %#02x, want 0", c.R(1))
	}
	if !c.Flag(FlagZ) || !c.Flag(FlagC) {
		t.Fatalf("want Z and C set, got sreg=%#02x", c.SREG())
	}
}

func TestSUBIAndCPI(t *testing.T) {
	// SUBI R16, 1 then CPI R16, 0
	c, _ := newCore([]uint16{0x5001, 0x3000})
	c.SetR(16, 1)
	c.Execute() // SUBI
	if c.R(16) != 0 {
		t.Fatalf("R16 = %d, want 0", c.R(16))
	}
	c.Execute() // CPI R16,0
	if !c.Flag(FlagZ) {
		t.Fatalf("want Z set after CPI against equal value")
	}
}

func TestRJMPAdvancesPC(t *testing.T) {
	// RJMP +2 (skip two words): 1100 0000 0000 0010
	c, _ := newCore([]uint16{0xC002, 0, 0})
	c.Execute()
	if c.PC() != 3 {
		t.Fatalf("PC = %d, want 3", c.PC())
	}
}

func TestCallAndRet(t *testing.T) {
	// CALL 0x0002 ; target: RET
	flash := []uint16{0x940E, 0x0002, 0x9508}
	c, _ := newCore(flash)
	c.Execute() // CALL, consumes 2 words
	if c.PC() != 2 {
		t.Fatalf("PC after CALL = %d, want 2", c.PC())
	}
	c.Execute() // RET at target
	if c.PC() != 2 {
		t.Fatalf("PC after RET = %d, want 2 (return address)", c.PC())
	}
}

func TestJMPDoesNotPush(t *testing.T) {
	// JMP 0x0002 (bit1=0 selects JMP)
	flash := []uint16{0x940C, 0x0002, 0}
	c, _ := newCore(flash)
	sp := c.SP()
	c.Execute()
	if c.PC() != 2 {
		t.Fatalf("PC = %d, want 2", c.PC())
	}
	if c.SP() != sp {
		t.Fatalf("SP changed on JMP: %#04x -> %#04x", sp, c.SP())
	}
}

func TestBRBSTakenAndNotTaken(t *testing.T) {
	// BRBS 1,+2 (branch if Z set); Z starts clear so not taken.
	c, _ := newCore([]uint16{0xF011, 0, 0})
	c.Execute()
	if c.PC() != 1 {
		t.Fatalf("PC = %d, want 1 (not taken)", c.PC())
	}

	c, _ = newCore([]uint16{0xF011, 0, 0})
	c.SetFlag(FlagZ, true)
	c.Execute()
	if c.PC() != 3 {
		t.Fatalf("PC = %d, want 3 (taken)", c.PC())
	}
}

func TestSBICSkipsWideNextInstruction(t *testing.T) {
	// SBIC bit0 of I/O 0x10; memory byte there is 0 so bit clear -> skip.
	// Next instruction is JMP (32-bit) so the skip consumes two words.
	flash := []uint16{0x9980, 0x940C, 0, 0x9508}
	c, mem := newCore(flash)
	mem.data[0x10] = 0
	c.Execute()
	if c.PC() != 3 {
		t.Fatalf("PC = %d, want 3 (skipped 32-bit instruction)", c.PC())
	}
}

func TestPushPopRoundTrips(t *testing.T) {
	c, _ := newCore([]uint16{0x920F, 0x900F}) // PUSH R0; POP R0 (wrong dest but fine)
	c.SetR(0, 0x42)
	spBefore := c.SP()
	c.Execute() // PUSH R0
	if c.SP() != spBefore-1 {
		t.Fatalf("SP after PUSH = %#04x, want %#04x", c.SP(), spBefore-1)
	}
	c.SetR(0, 0)
	c.Execute() // POP R0
	if c.R(0) != 0x42 {
		t.Fatalf("R0 = %#02x, want 0x42", c.R(0))
	}
	if c.SP() != spBefore {
		t.Fatalf("SP after POP = %#04x, want %#04x", c.SP(), spBefore)
	}
}

func TestLDSTSRoundTrip(t *testing.T) {
	// STS 0x0123, R5 ; LDS R6, 0x0123
	flash := []uint16{0x9250, 0x0123, 0x9060, 0x0123}
	c, mem := newCore(flash)
	c.SetR(5, 0x7E)
	c.Execute() // STS
	if mem.data[0x0123] != 0x7E {
		t.Fatalf("mem[0x123] = %#02x, want 0x7e", mem.data[0x0123])
	}
	c.Execute() // LDS
	if c.R(6) != 0x7E {
		t.Fatalf("R6 = %#02x, want 0x7e", c.R(6))
	}
}

func TestLDPostIncrementWrapsIntoRampZ(t *testing.T) {
	mem := &fakeMem{}
	c := New([]uint16{0x9001}, mem, 0x8000, 0xFF00) // rampMask = 0xff
	c.sp = 0x3FFF
	c.SetZ(0xFFFF)
	c.rampZ = 0
	mem.data[0xFFFF] = 0x11
	c.Execute()
	if c.Z() != 0 {
		t.Fatalf("Z = %#04x, want 0 after wraparound", c.Z())
	}
	if c.rampZ != 1 {
		t.Fatalf("rampZ = %d, want 1 after post-increment wraparound", c.rampZ)
	}
}

func TestLDDWithDisplacement(t *testing.T) {
	// LDD R0, Z+2 : 10q0 qq0d dddd 0qqq, q=2 -> 1000 0000 0000 0010 = 0x8002
	c, mem := newCore([]uint16{0x8002})
	c.SetZ(0x2000)
	mem.data[0x2002] = 0x55
	c.Execute()
	if c.R(0) != 0x55 {
		t.Fatalf("R0 = %#02x, want 0x55", c.R(0))
	}
}

func TestCCPWindowLifetime(t *testing.T) {
	c, _ := newCore([]uint16{})
	c.ArmCCP(ccpIOREGCode)
	for i := 0; i < 4; i++ {
		c.TickCCP()
		if c.CCPState() != CCPIOREG {
			t.Fatalf("tick %d: CCPState() = %d, want CCPIOREG", i+1, c.CCPState())
		}
	}
	c.TickCCP()
	if c.CCPState() != CCPNone {
		t.Fatalf("tick 5: CCPState() = %d, want CCPNone", c.CCPState())
	}
}

func TestRETIDoesNotClearSREGI(t *testing.T) {
	flash := []uint16{0x9518} // RETI
	c, _ := newCore(flash)
	c.PushPC()
	c.SetFlag(FlagI, true)
	c.Execute()
	if !c.Flag(FlagI) {
		t.Fatalf("RETI cleared SREG.I; XMEGA semantics clear the PMIC level instead")
	}
	if !c.RETIPending() {
		t.Fatalf("RETIPending() = false, want true so Device can drop the PMIC level")
	}
}
