package cpu

import (
	"github.com/avrxmega/xmsim/errors"
	"github.com/avrxmega/xmsim/hardware/memory/addresses"
	"github.com/avrxmega/xmsim/logger"
)

func (c *Core) advance(n uint32) { c.pc = (c.pc + n) & c.pcMask() }

func (c *Core) effAddr(ramp uint8, ptr uint16) uint32 { return uint32(ramp)<<16 | uint32(ptr) }

func (c *Core) postInc(ptr uint16, ramp *uint8) uint16 {
	np := ptr + 1
	if np == 0 {
		*ramp = (*ramp + 1) & c.rampMask
	}
	return np
}

func (c *Core) preDec(ptr uint16, ramp *uint8) uint16 {
	if ptr == 0 {
		*ramp = (*ramp - 1) & c.rampMask
	}
	return ptr - 1
}

func warnUndefinedOverlap(reg int, lo, hi int) {
	if reg == lo || reg == hi {
		logger.Logf(logger.Allow, "cpu", errors.New(errors.UndefinedPostIncrementBehaviour, reg).Error())
	}
}

// --- Transfer -------------------------------------------------------

func opNOP(c *Core, op uint16) int   { c.advance(1); return 1 }
func opMOV(c *Core, op uint16) int {
	c.SetR(fieldD5(op), c.R(fieldR5(op)))
	c.advance(1)
	return 1
}
func opMOVW(c *Core, op uint16) int {
	d := 2 * int((op>>4)&0xF)
	r := 2 * int(op&0xF)
	c.SetR(d, c.R(r))
	c.SetR(d+1, c.R(r+1))
	c.advance(1)
	return 1
}
func opLDI(c *Core, op uint16) int {
	c.SetR(fieldD4(op), fieldImm8(op))
	c.advance(1)
	return 1
}
func opLDS(c *Core, op uint16) int {
	addr := c.fetch(c.pc + 1)
	c.SetR(fieldD5(op), c.mem.Read(uint32(addr)))
	c.advance(2)
	return 2
}
func opSTS(c *Core, op uint16) int {
	addr := c.fetch(c.pc + 1)
	c.mem.Write(uint32(addr), c.R(fieldD5(op)))
	c.advance(2)
	return 2
}

func (c *Core) ldCycles(addr uint32, extra int) int {
	cycles := 1 + extra
	if addr >= addresses.SRAMStart {
		cycles++
	}
	return cycles
}

func opLD(c *Core, op uint16) int {
	d := fieldD5(op)
	var addr uint32
	extra := 0
	switch op & 0xFE0F {
	case 0x8000: // LD Rd,Z
		addr = c.effAddr(c.rampZ, c.Z())
	case 0x9001: // LD Rd,Z+
		addr = c.effAddr(c.rampZ, c.Z())
		warnUndefinedOverlap(d, 30, 31)
		c.SetZ(c.postInc(c.Z(), &c.rampZ))
	case 0x9002: // LD Rd,-Z
		c.SetZ(c.preDec(c.Z(), &c.rampZ))
		addr = c.effAddr(c.rampZ, c.Z())
		warnUndefinedOverlap(d, 30, 31)
		extra = 1
	case 0x8008: // LD Rd,Y
		addr = c.effAddr(c.rampY, c.Y())
	case 0x9009: // LD Rd,Y+
		addr = c.effAddr(c.rampY, c.Y())
		warnUndefinedOverlap(d, 28, 29)
		c.SetY(c.postInc(c.Y(), &c.rampY))
	case 0x900A: // LD Rd,-Y
		c.SetY(c.preDec(c.Y(), &c.rampY))
		addr = c.effAddr(c.rampY, c.Y())
		warnUndefinedOverlap(d, 28, 29)
		extra = 1
	case 0x900C: // LD Rd,X
		addr = c.effAddr(c.rampX, c.X())
	case 0x900D: // LD Rd,X+
		addr = c.effAddr(c.rampX, c.X())
		warnUndefinedOverlap(d, 26, 27)
		c.SetX(c.postInc(c.X(), &c.rampX))
	case 0x900E: // LD Rd,-X
		c.SetX(c.preDec(c.X(), &c.rampX))
		addr = c.effAddr(c.rampX, c.X())
		warnUndefinedOverlap(d, 26, 27)
		extra = 1
	}
	c.SetR(d, c.mem.Read(addr))
	c.advance(1)
	return c.ldCycles(addr, extra)
}

func opST(c *Core, op uint16) int {
	r := fieldD5(op) // register field; same position for store operand
	var addr uint32
	extra := 0
	switch op & 0xFE0F {
	case 0x8200:
		addr = c.effAddr(c.rampZ, c.Z())
	case 0x9201:
		addr = c.effAddr(c.rampZ, c.Z())
		c.SetZ(c.postInc(c.Z(), &c.rampZ))
	case 0x9202:
		c.SetZ(c.preDec(c.Z(), &c.rampZ))
		addr = c.effAddr(c.rampZ, c.Z())
		extra = 1
	case 0x8208:
		addr = c.effAddr(c.rampY, c.Y())
	case 0x9209:
		addr = c.effAddr(c.rampY, c.Y())
		c.SetY(c.postInc(c.Y(), &c.rampY))
	case 0x920A:
		c.SetY(c.preDec(c.Y(), &c.rampY))
		addr = c.effAddr(c.rampY, c.Y())
		extra = 1
	case 0x920C:
		addr = c.effAddr(c.rampX, c.X())
	case 0x920D:
		addr = c.effAddr(c.rampX, c.X())
		c.SetX(c.postInc(c.X(), &c.rampX))
	case 0x920E:
		c.SetX(c.preDec(c.X(), &c.rampX))
		addr = c.effAddr(c.rampX, c.X())
		extra = 1
	}
	c.mem.Write(addr, c.R(r))
	c.advance(1)
	return c.ldCycles(addr, extra)
}

func fieldQ(op uint16) uint16 {
	q5 := (op >> 13) & 0x1
	q4 := (op >> 11) & 0x1
	q3 := (op >> 10) & 0x1
	q2 := (op >> 2) & 0x1
	q1 := (op >> 1) & 0x1
	q0 := op & 0x1
	return q5<<5 | q4<<4 | q3<<3 | q2<<2 | q1<<1 | q0
}

func opLDD(c *Core, op uint16) int {
	d := fieldD5(op)
	q := fieldQ(op)
	var ramp *uint8
	var ptr uint16
	if op&0x8 != 0 {
		ramp, ptr = &c.rampY, c.Y()
	} else {
		ramp, ptr = &c.rampZ, c.Z()
	}
	addr := c.effAddr(*ramp, ptr+q)
	c.SetR(d, c.mem.Read(addr))
	c.advance(1)
	extra := 0
	if q != 0 {
		extra = 1
	}
	return c.ldCycles(addr, extra)
}

func opSTD(c *Core, op uint16) int {
	r := fieldD5(op)
	q := fieldQ(op)
	var ramp *uint8
	var ptr uint16
	if op&0x8 != 0 {
		ramp, ptr = &c.rampY, c.Y()
	} else {
		ramp, ptr = &c.rampZ, c.Z()
	}
	addr := c.effAddr(*ramp, ptr+q)
	c.mem.Write(addr, c.R(r))
	c.advance(1)
	extra := 0
	if q != 0 {
		extra = 1
	}
	return c.ldCycles(addr, extra)
}

func opPUSH(c *Core, op uint16) int {
	c.pushByte(c.R(fieldD5(op)))
	c.advance(1)
	return 1
}
func opPOP(c *Core, op uint16) int {
	c.SetR(fieldD5(op), c.popByte())
	c.advance(1)
	return 1
}

func opIN(c *Core, op uint16) int {
	c.SetR(fieldD5(op), c.mem.Read(uint32(fieldIOAddr6(op))))
	c.advance(1)
	return 1
}
func opOUT(c *Core, op uint16) int {
	c.mem.Write(uint32(fieldIOAddr6(op)), c.R(fieldD5(op)))
	c.advance(1)
	return 1
}

func opXCH(c *Core, op uint16) int {
	d := fieldD5(op)
	addr := c.effAddr(c.rampZ, c.Z())
	mem := c.mem.Read(addr)
	c.mem.Write(addr, c.R(d))
	c.SetR(d, mem)
	c.advance(1)
	return 2
}
func opLAS(c *Core, op uint16) int {
	d := fieldD5(op)
	addr := c.effAddr(c.rampZ, c.Z())
	mem := c.mem.Read(addr)
	c.mem.Write(addr, mem|c.R(d))
	c.SetR(d, mem)
	c.advance(1)
	return 2
}
func opLAC(c *Core, op uint16) int {
	d := fieldD5(op)
	addr := c.effAddr(c.rampZ, c.Z())
	mem := c.mem.Read(addr)
	c.mem.Write(addr, mem&^c.R(d))
	c.SetR(d, mem)
	c.advance(1)
	return 2
}
func opLAT(c *Core, op uint16) int {
	d := fieldD5(op)
	addr := c.effAddr(c.rampZ, c.Z())
	mem := c.mem.Read(addr)
	c.mem.Write(addr, mem^c.R(d))
	c.SetR(d, mem)
	c.advance(1)
	return 2
}

func (c *Core) flashWord(ramp uint8, ptr uint16) uint16 {
	return c.fetch((uint32(ramp)<<16 | uint32(ptr)) / 2)
}

func opLPMImplicit(c *Core, op uint16) int {
	c.SetR(0, uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.advance(1)
	return 3
}
func opLPMZ(c *Core, op uint16) int {
	c.SetR(fieldD5(op), uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.advance(1)
	return 3
}
func opLPMZInc(c *Core, op uint16) int {
	d := fieldD5(op)
	c.SetR(d, uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.SetZ(c.postInc(c.Z(), &c.rampZ))
	c.advance(1)
	return 3
}
func opELPMImplicit(c *Core, op uint16) int {
	c.SetR(0, uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.advance(1)
	return 3
}
func opELPMZ(c *Core, op uint16) int {
	c.SetR(fieldD5(op), uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.advance(1)
	return 3
}
func opELPMZInc(c *Core, op uint16) int {
	d := fieldD5(op)
	c.SetR(d, uint8(c.flashWord(c.rampZ, c.Z())>>(8*(c.Z()&1))))
	c.SetZ(c.postInc(c.Z(), &c.rampZ))
	c.advance(1)
	return 3
}

// SPM is a stub: self-programming is out of scope (spec.md §1) but the
// hook exists so firmware that issues it doesn't stall.
func opSPM(c *Core, op uint16) int {
	c.advance(1)
	return 1
}

// --- Arithmetic -------------------------------------------------------

func (c *Core) applyFlags6(mask uint8, cl, v, h, n, s, z bool) {
	c.SetFlag(FlagC&mask, cl)
	c.SetFlag(FlagV&mask, v)
	c.SetFlag(FlagH&mask, h)
	c.SetFlag(FlagN&mask, n)
	c.SetFlag(FlagS&mask, s)
	c.SetFlag(FlagZ&mask, z)
}

func opADD(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	res := rd + rr
	c.SetR(d, res)
	cl, v, h, n, s, z := addFlags(rd, rr, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opADC(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	carry := uint8(0)
	if c.Flag(FlagC) {
		carry = 1
	}
	res := rd + rr + carry
	c.SetR(d, res)
	cl, v, h, n, s, z := addFlags(rd, rr, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opSUB(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	res := rd - rr
	c.SetR(d, res)
	cl, v, h, n, s, z := subFlags(rd, rr, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opSBC(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	borrow := uint8(0)
	if c.Flag(FlagC) {
		borrow = 1
	}
	res := rd - rr - borrow
	c.SetR(d, res)
	cl, v, h, n, s, z := subFlags(rd, rr, res)
	z = z && c.Flag(FlagZ)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opSUBI(c *Core, op uint16) int {
	d := fieldD4(op)
	rd, k := c.R(d), fieldImm8(op)
	res := rd - k
	c.SetR(d, res)
	cl, v, h, n, s, z := subFlags(rd, k, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opSBCI(c *Core, op uint16) int {
	d := fieldD4(op)
	rd, k := c.R(d), fieldImm8(op)
	borrow := uint8(0)
	if c.Flag(FlagC) {
		borrow = 1
	}
	res := rd - k - borrow
	c.SetR(d, res)
	cl, v, h, n, s, z := subFlags(rd, k, res)
	z = z && c.Flag(FlagZ)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opCP(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	res := rd - rr
	cl, v, h, n, s, z := subFlags(rd, rr, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opCPC(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	rd, rr := c.R(d), c.R(r)
	borrow := uint8(0)
	if c.Flag(FlagC) {
		borrow = 1
	}
	res := rd - rr - borrow
	cl, v, h, n, s, z := subFlags(rd, rr, res)
	z = z && c.Flag(FlagZ)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opCPI(c *Core, op uint16) int {
	d := fieldD4(op)
	rd, k := c.R(d), fieldImm8(op)
	res := rd - k
	cl, v, h, n, s, z := subFlags(rd, k, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opINC(c *Core, op uint16) int {
	d := fieldD5(op)
	rd := c.R(d)
	res := rd + 1
	c.SetR(d, res)
	v := rd == 0x7F
	n := res&0x80 != 0
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, n != v, res == 0)
	c.advance(1)
	return 1
}
func opDEC(c *Core, op uint16) int {
	d := fieldD5(op)
	rd := c.R(d)
	res := rd - 1
	c.SetR(d, res)
	v := rd == 0x80
	n := res&0x80 != 0
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, n != v, res == 0)
	c.advance(1)
	return 1
}
func opNEG(c *Core, op uint16) int {
	d := fieldD5(op)
	rd := c.R(d)
	res := uint8(0) - rd
	c.SetR(d, res)
	cl, v, h, n, s, z := subFlags(0, rd, res)
	c.applyFlags6(0xFF, cl, v, h, n, s, z)
	c.advance(1)
	return 1
}
func opCOM(c *Core, op uint16) int {
	d := fieldD5(op)
	res := ^c.R(d)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, true, v, false, n, s, z)
	c.SetFlag(FlagC, true)
	c.advance(1)
	return 1
}
func opADIW(c *Core, op uint16) int {
	base := fieldPair(op)
	k := uint16(fieldK6(op))
	lo, hi := c.R(base), c.R(base+1)
	old := uint16(lo) | uint16(hi)<<8
	res := old + k
	c.SetR(base, uint8(res))
	c.SetR(base+1, uint8(res>>8))
	carryOut := res < old
	overflow := (^hi&uint8(res>>8))&0x80 != 0
	cl, v, _, n, s, _ := adiwFlags(uint8(res>>8), uint8(res>>8), carryOut, overflow)
	c.applyFlags6(FlagC|FlagV|FlagN|FlagS|FlagZ, cl, v, false, n, s, res == 0)
	c.advance(1)
	return 2
}
func opSBIW(c *Core, op uint16) int {
	base := fieldPair(op)
	k := uint16(fieldK6(op))
	lo, hi := c.R(base), c.R(base+1)
	old := uint16(lo) | uint16(hi)<<8
	res := old - k
	c.SetR(base, uint8(res))
	c.SetR(base+1, uint8(res>>8))
	carryOut := res > old
	overflow := (hi&^uint8(res>>8))&0x80 != 0
	cl, v, _, n, s, _ := adiwFlags(uint8(res>>8), uint8(res>>8), carryOut, overflow)
	c.applyFlags6(FlagC|FlagV|FlagN|FlagS|FlagZ, cl, v, false, n, s, res == 0)
	c.advance(1)
	return 2
}

// --- Logical ----------------------------------------------------------

func opAND(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	res := c.R(d) & c.R(r)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, s, z)
	c.advance(1)
	return 1
}
func opANDI(c *Core, op uint16) int {
	d := fieldD4(op)
	res := c.R(d) & fieldImm8(op)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, s, z)
	c.advance(1)
	return 1
}
func opOR(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	res := c.R(d) | c.R(r)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, s, z)
	c.advance(1)
	return 1
}
func opORI(c *Core, op uint16) int {
	d := fieldD4(op)
	res := c.R(d) | fieldImm8(op)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, s, z)
	c.advance(1)
	return 1
}
func opEOR(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	res := c.R(d) ^ c.R(r)
	c.SetR(d, res)
	v, n, s, z := logicalFlags(res)
	c.applyFlags6(FlagV|FlagN|FlagS|FlagZ, false, v, false, n, s, z)
	c.advance(1)
	return 1
}
func opSWAP(c *Core, op uint16) int {
	d := fieldD5(op)
	v := c.R(d)
	c.SetR(d, v>>4|v<<4)
	c.advance(1)
	return 1
}
func opASR(c *Core, op uint16) int {
	d := fieldD5(op)
	v := c.R(d)
	carryOut := v&0x1 != 0
	res := uint8(int8(v) >> 1)
	c.SetR(d, res)
	cl, vf, n, s, z := shiftFlags(res, carryOut)
	c.applyFlags6(0xFF&^FlagH, cl, vf, false, n, s, z)
	c.advance(1)
	return 1
}
func opLSR(c *Core, op uint16) int {
	d := fieldD5(op)
	v := c.R(d)
	carryOut := v&0x1 != 0
	res := v >> 1
	c.SetR(d, res)
	cl, vf, n, s, z := shiftFlags(res, carryOut)
	c.applyFlags6(0xFF&^FlagH, cl, vf, false, n, s, z)
	c.advance(1)
	return 1
}
func opROR(c *Core, op uint16) int {
	d := fieldD5(op)
	v := c.R(d)
	carryIn := uint8(0)
	if c.Flag(FlagC) {
		carryIn = 0x80
	}
	carryOut := v&0x1 != 0
	res := v>>1 | carryIn
	c.SetR(d, res)
	cl, vf, n, s, z := shiftFlags(res, carryOut)
	c.applyFlags6(0xFF&^FlagH, cl, vf, false, n, s, z)
	c.advance(1)
	return 1
}

// --- Multiply -----------------------------------------------------------

func opMUL(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	res := uint16(c.R(d)) * uint16(c.R(r))
	c.SetR0R1(res)
	c.SetFlag(FlagC, res&0x8000 != 0)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}
func opMULS(c *Core, op uint16) int {
	d := 16 + int((op>>4)&0xF)
	r := 16 + int(op&0xF)
	res := uint16(int16(int8(c.R(d))) * int16(int8(c.R(r))))
	c.SetR0R1(res)
	c.SetFlag(FlagC, res&0x8000 != 0)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}
func opMULSU(c *Core, op uint16) int {
	d := 16 + int((op>>4)&0x7)
	r := 16 + int(op&0x7)
	res := uint16(int16(int8(c.R(d))) * int16(c.R(r)))
	c.SetR0R1(res)
	c.SetFlag(FlagC, res&0x8000 != 0)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}
func opFMUL(c *Core, op uint16) int {
	d := 16 + int((op>>4)&0x7)
	r := 16 + int(op&0x7)
	raw := uint16(c.R(d)) * uint16(c.R(r))
	c.SetFlag(FlagC, raw&0x8000 != 0)
	res := raw << 1
	c.SetR0R1(res)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}
func opFMULS(c *Core, op uint16) int {
	d := 16 + int((op>>4)&0x7)
	r := 16 + int(op&0x7)
	raw := uint16(int16(int8(c.R(d))) * int16(int8(c.R(r))))
	c.SetFlag(FlagC, raw&0x8000 != 0)
	res := raw << 1
	c.SetR0R1(res)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}
func opFMULSU(c *Core, op uint16) int {
	d := 16 + int((op>>4)&0x7)
	r := 16 + int(op&0x7)
	raw := uint16(int16(int8(c.R(d))) * int16(c.R(r)))
	c.SetFlag(FlagC, raw&0x8000 != 0)
	res := raw << 1
	c.SetR0R1(res)
	c.SetFlag(FlagZ, res == 0)
	c.advance(1)
	return 2
}

// --- Branches / skips ----------------------------------------------------

func opBRBS(c *Core, op uint16) int {
	s := fieldBit3(op)
	if c.sreg&(1<<s) != 0 {
		c.advance(uint32(int32(1) + sext7(op>>3)))
		return 2
	}
	c.advance(1)
	return 1
}
func opBRBC(c *Core, op uint16) int {
	s := fieldBit3(op)
	if c.sreg&(1<<s) == 0 {
		c.advance(uint32(int32(1) + sext7(op>>3)))
		return 2
	}
	c.advance(1)
	return 1
}

func (c *Core) skip() int {
	if c.next32BitWide(c.pc + 1) {
		c.advance(3)
		return 3
	}
	c.advance(2)
	return 2
}

func opCPSE(c *Core, op uint16) int {
	d, r := fieldD5(op), fieldR5(op)
	if c.R(d) == c.R(r) {
		return c.skip()
	}
	c.advance(1)
	return 1
}
func opSBRC(c *Core, op uint16) int {
	r := fieldR5(op)
	if c.R(r)&(1<<fieldBit3(op)) == 0 {
		return c.skip()
	}
	c.advance(1)
	return 1
}
func opSBRS(c *Core, op uint16) int {
	r := fieldR5(op)
	if c.R(r)&(1<<fieldBit3(op)) != 0 {
		return c.skip()
	}
	c.advance(1)
	return 1
}
func opSBIC(c *Core, op uint16) int {
	addr := uint32(fieldIOAddr5(op))
	if c.mem.Read(addr)&(1<<fieldBit3(op)) == 0 {
		return c.skip()
	}
	c.advance(1)
	return 1
}
func opSBIS(c *Core, op uint16) int {
	addr := uint32(fieldIOAddr5(op))
	if c.mem.Read(addr)&(1<<fieldBit3(op)) != 0 {
		return c.skip()
	}
	c.advance(1)
	return 1
}

// --- Jumps / calls / returns ---------------------------------------------

func opRJMP(c *Core, op uint16) int {
	c.advance(uint32(int32(1) + sext12(op)))
	return 2
}
func opRCALL(c *Core, op uint16) int {
	target := (c.pc + uint32(int32(1)+sext12(op))) & c.pcMask()
	c.advance(1)
	c.PushPC()
	c.pc = target
	if c.pc24 {
		return 4
	}
	return 3
}
func opJMPCALL(c *Core, op uint16) int {
	word2 := c.fetch(c.pc + 1)
	high6 := uint32((op>>4)&0x1F)<<1 | uint32(op&0x1)
	target := high6<<16 | uint32(word2)
	isCall := op&0x2 != 0
	if isCall {
		c.advance(2)
		c.PushPC()
		c.pc = target & c.pcMask()
		if c.pc24 {
			return 5
		}
		return 4
	}
	c.pc = target & c.pcMask()
	return 3
}
func opIJMP(c *Core, op uint16) int {
	c.pc = uint32(c.Z())
	return 2
}
func opEIJMP(c *Core, op uint16) int {
	c.pc = uint32(c.eind)<<16 | uint32(c.Z())
	return 2
}
func opICALL(c *Core, op uint16) int {
	c.advance(1)
	c.PushPC()
	c.pc = uint32(c.Z())
	if c.pc24 {
		return 4
	}
	return 3
}
func opEICALL(c *Core, op uint16) int {
	c.advance(1)
	c.PushPC()
	c.pc = uint32(c.eind)<<16 | uint32(c.Z())
	return 4
}
func opRET(c *Core, op uint16) int {
	c.pc = c.PopPC()
	if c.pc24 {
		return 5
	}
	return 4
}

// RETI clears the currently-highest-executing PMIC level, not SREG.I —
// XMEGA semantics (spec.md §4.2). Core has no PMIC handle, so it only
// raises retiPending; Device clears the PMIC level and the flag.
func opRETI(c *Core, op uint16) int {
	c.pc = c.PopPC()
	c.retiPending = true
	if c.pc24 {
		return 5
	}
	return 4
}

// --- Bit ops --------------------------------------------------------------

func opBLD(c *Core, op uint16) int {
	d := fieldD5(op)
	b := fieldBit3(op)
	if c.Flag(FlagT) {
		c.SetR(d, c.R(d)|1<<b)
	} else {
		c.SetR(d, c.R(d)&^(1<<b))
	}
	c.advance(1)
	return 1
}
func opBST(c *Core, op uint16) int {
	d := fieldD5(op)
	b := fieldBit3(op)
	c.SetFlag(FlagT, c.R(d)&(1<<b) != 0)
	c.advance(1)
	return 1
}
func opBSET(c *Core, op uint16) int {
	s := (op >> 4) & 0x7
	c.sreg |= 1 << s
	c.advance(1)
	return 1
}
func opBCLR(c *Core, op uint16) int {
	s := (op >> 4) & 0x7
	c.sreg &^= 1 << s
	c.advance(1)
	return 1
}
func opSBI(c *Core, op uint16) int {
	addr := uint32(fieldIOAddr5(op))
	c.mem.Write(addr, c.mem.Read(addr)|1<<fieldBit3(op))
	c.advance(1)
	return 2
}
func opCBI(c *Core, op uint16) int {
	addr := uint32(fieldIOAddr5(op))
	c.mem.Write(addr, c.mem.Read(addr)&^(1<<fieldBit3(op)))
	c.advance(1)
	return 2
}

// --- System ---------------------------------------------------------------

func opSLEEP(c *Core, op uint16) int { c.advance(1); return 1 }
func opBREAK(c *Core, op uint16) int {
	c.breaked = true
	c.advance(1)
	return 1
}
func opWDR(c *Core, op uint16) int { c.advance(1); return 1 }
func opDES(c *Core, op uint16) int {
	logger.Logf(logger.Allow, "cpu", "DES executed: data encryption standard is not modelled")
	c.advance(1)
	return 1
}

func opUnknown(c *Core, op uint16) int {
	logger.Logf(logger.Allow, "cpu", errors.New(errors.UnimplementedInstruction, op, c.pc).Error())
	c.advance(1)
	return 1
}
