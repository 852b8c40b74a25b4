// Package cpu implements the LR35902 instruction interpreter: register
// file, primary and CB-prefixed opcode dispatch, interrupt servicing, and
// per-instruction cycle charging.
package cpu

import (
	"github.com/tilecore/gbcore/internal/bus"
	"github.com/tilecore/gbcore/internal/diag"
	"github.com/tilecore/gbcore/internal/registers"
)

// Clock records the cost of the most recently executed instruction or
// interrupt-service prologue in both granularities; T is always 4*M.
type Clock struct {
	T, M int
}

// CPU is the LR35902 interpreter. It depends on Memory, never on a concrete
// bus pointer, so the tick driver is the only place that wires the two
// components together.
type CPU struct {
	registers.File

	IME bool

	halted    bool
	eiDelay   int // counts down to 0; hits 0 the step after the one following EI
	lastClock Clock

	mem Memory
}

// New constructs a CPU wired to mem. Registers start zeroed; a host driver
// typically follows with a boot ROM run or ResetPostBoot.
func New(mem Memory) *CPU {
	return &CPU{mem: mem}
}

// ResetPostBoot sets the register file to the values the real boot ROM
// leaves behind, for running without stepping through the boot sequence.
func (c *CPU) ResetPostBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	c.IME = false
	c.halted = false
	c.eiDelay = 0
}

// LastClock reports the cycle cost of the most recently executed step.
func (c *CPU) LastClock() Clock { return c.lastClock }

func (c *CPU) charge(t int) {
	c.lastClock = Clock{T: t, M: t / 4}
}

// Step services one pending interrupt if IME is set, otherwise fetches,
// decodes and executes one opcode, and records its cost in LastClock. The
// caller is responsible for adding LastClock into any outer accumulator.
func (c *CPU) Step() Clock {
	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	if c.halted {
		if kind, ok := c.mem.PendingInterrupt(); ok {
			c.halted = false
			if c.IME {
				c.serviceInterrupt(kind)
				return c.lastClock
			}
		} else {
			c.charge(4)
			return c.lastClock
		}
	}

	if c.IME {
		if kind, ok := c.mem.PendingInterrupt(); ok {
			c.serviceInterrupt(kind)
			return c.lastClock
		}
	}

	op := c.fetch8()
	c.execute(op)
	return c.lastClock
}

// serviceInterrupt pushes PC, jumps to the kind's vector, clears IME, and
// acknowledges the request. It costs the same as an RST n-style call.
func (c *CPU) serviceInterrupt(kind bus.Kind) {
	c.mem.AckInterrupt(kind)
	c.IME = false
	c.push16(c.PC)
	c.PC = kind.Vector()
	c.charge(16)
}

func (c *CPU) fetch8() byte {
	v := c.mem.ReadByte(c.PC)
	c.AdvancePC(1)
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.mem.ReadWord(c.PC)
	c.AdvancePC(2)
	return v
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.mem.WriteWord(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.mem.ReadWord(c.SP)
	c.SP += 2
	return v
}

// reg8 addresses one of the eight 8-bit operand slots used throughout the
// primary and CB-prefixed tables: B,C,D,E,H,L,(HL),A in that index order.
func (c *CPU) reg8(idx byte) byte {
	switch idx {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.mem.ReadByte(c.HL())
	case 7:
		return c.A
	default:
		diag.Warnf("cpu: reg8 index out of range: %d", idx)
		return 0
	}
}

func (c *CPU) setReg8(idx byte, v byte) {
	switch idx {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.mem.WriteByte(c.HL(), v)
	case 7:
		c.A = v
	default:
		diag.Warnf("cpu: setReg8 index out of range: %d", idx)
	}
}

// execute decodes and runs one primary opcode, charging its cycle cost.
func (c *CPU) execute(op byte) {
	switch op {
	case 0x00: // NOP
		c.charge(4)

	case 0x10: // STOP
		c.fetch8() // the mandatory (and in this core unused) second byte
		c.halted = true
		c.charge(4)

	case 0x76: // HALT
		c.halted = true
		c.charge(4)

	// 8-bit immediate loads into B,C,D,E,H,L,A
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E:
		dst := (op >> 3) & 7
		c.setReg8(dst, c.fetch8())
		c.charge(8)

	// LD (HL),d8
	case 0x36:
		c.mem.WriteByte(c.HL(), c.fetch8())
		c.charge(12)

	// LD r,r' / LD r,(HL) / LD (HL),r : the 0x40-0x7F block minus HALT
	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47,
		0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F,
		0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57,
		0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F,
		0x60, 0x61, 0x62, 0x63, 0x64, 0x65, 0x66, 0x67,
		0x68, 0x69, 0x6A, 0x6B, 0x6C, 0x6D, 0x6E, 0x6F,
		0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		dst := (op >> 3) & 7
		src := op & 7
		c.setReg8(dst, c.reg8(src))
		if dst == 6 || src == 6 {
			c.charge(8)
		} else {
			c.charge(4)
		}

	// 16-bit immediate loads
	case 0x01:
		c.SetBC(c.fetch16())
		c.charge(12)
	case 0x11:
		c.SetDE(c.fetch16())
		c.charge(12)
	case 0x21:
		c.SetHL(c.fetch16())
		c.charge(12)
	case 0x31:
		c.SP = c.fetch16()
		c.charge(12)
	case 0x08: // LD (a16),SP
		addr := c.fetch16()
		c.mem.WriteWord(addr, c.SP)
		c.charge(20)

	// (BC)/(DE)/(HL+)/(HL-) <-> A
	case 0x02:
		c.mem.WriteByte(c.BC(), c.A)
		c.charge(8)
	case 0x12:
		c.mem.WriteByte(c.DE(), c.A)
		c.charge(8)
	case 0x0A:
		c.A = c.mem.ReadByte(c.BC())
		c.charge(8)
	case 0x1A:
		c.A = c.mem.ReadByte(c.DE())
		c.charge(8)
	case 0x22: // LD (HL+),A
		hl := c.HL()
		c.mem.WriteByte(hl, c.A)
		c.SetHL(hl + 1)
		c.charge(8)
	case 0x2A: // LD A,(HL+)
		hl := c.HL()
		c.A = c.mem.ReadByte(hl)
		c.SetHL(hl + 1)
		c.charge(8)
	case 0x32: // LD (HL-),A
		hl := c.HL()
		c.mem.WriteByte(hl, c.A)
		c.SetHL(hl - 1)
		c.charge(8)
	case 0x3A: // LD A,(HL-)
		hl := c.HL()
		c.A = c.mem.ReadByte(hl)
		c.SetHL(hl - 1)
		c.charge(8)

	// 0xFF00-offset loads
	case 0xE0: // LDH (n),A
		n := uint16(c.fetch8())
		c.mem.WriteByte(0xFF00+n, c.A)
		c.charge(12)
	case 0xF0: // LDH A,(n)
		n := uint16(c.fetch8())
		c.A = c.mem.ReadByte(0xFF00 + n)
		c.charge(12)
	case 0xE2: // LD (C),A
		c.mem.WriteByte(0xFF00+uint16(c.C), c.A)
		c.charge(8)
	case 0xF2: // LD A,(C)
		c.A = c.mem.ReadByte(0xFF00 + uint16(c.C))
		c.charge(8)

	// Direct-address loads
	case 0xEA: // LD (a16),A
		c.mem.WriteByte(c.fetch16(), c.A)
		c.charge(16)
	case 0xFA: // LD A,(a16)
		c.A = c.mem.ReadByte(c.fetch16())
		c.charge(16)

	// Stack ops
	case 0xF5:
		c.push16(c.AF())
		c.charge(16)
	case 0xC5:
		c.push16(c.BC())
		c.charge(16)
	case 0xD5:
		c.push16(c.DE())
		c.charge(16)
	case 0xE5:
		c.push16(c.HL())
		c.charge(16)
	case 0xF1:
		c.SetAF(c.pop16())
		c.charge(12)
	case 0xC1:
		c.SetBC(c.pop16())
		c.charge(12)
	case 0xD1:
		c.SetDE(c.pop16())
		c.charge(12)
	case 0xE1:
		c.SetHL(c.pop16())
		c.charge(12)
	case 0xF9: // LD SP,HL
		c.SP = c.HL()
		c.charge(8)
	case 0xF8: // LD HL,SP+r8
		off := int8(c.fetch8())
		_, _, h, cy := add8Flags(byte(c.SP), byte(off))
		c.SetHL(uint16(int32(int16(c.SP)) + int32(off)))
		c.SetZNHC(false, false, h, cy)
		c.charge(12)
	case 0xE8: // ADD SP,r8
		off := int8(c.fetch8())
		_, _, h, cy := add8Flags(byte(c.SP), byte(off))
		c.SP = uint16(int32(int16(c.SP)) + int32(off))
		c.SetZNHC(false, false, h, cy)
		c.charge(16)

	// 8-bit ALU: register/immediate/(HL) forms for ADD/ADC/SUB/SBC/AND/XOR/OR/CP
	case 0x80, 0x81, 0x82, 0x83, 0x84, 0x85, 0x86, 0x87:
		c.aluAdd(c.operand(op), op == 0x86)
	case 0x88, 0x89, 0x8A, 0x8B, 0x8C, 0x8D, 0x8E, 0x8F:
		c.aluAdc(c.operand(op), op == 0x8E)
	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		c.aluSub(c.operand(op), op == 0x96)
	case 0x98, 0x99, 0x9A, 0x9B, 0x9C, 0x9D, 0x9E, 0x9F:
		c.aluSbc(c.operand(op), op == 0x9E)
	case 0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7:
		c.aluAnd(c.operand(op), op == 0xA6)
	case 0xA8, 0xA9, 0xAA, 0xAB, 0xAC, 0xAD, 0xAE, 0xAF:
		c.aluXor(c.operand(op), op == 0xAE)
	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		c.aluOr(c.operand(op), op == 0xB6)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		c.aluCp(c.operand(op), op == 0xBE)

	case 0xC6:
		c.aluAdd(c.fetch8(), true)
	case 0xCE:
		c.aluAdc(c.fetch8(), true)
	case 0xD6:
		c.aluSub(c.fetch8(), true)
	case 0xDE:
		c.aluSbc(c.fetch8(), true)
	case 0xE6:
		c.aluAnd(c.fetch8(), true)
	case 0xEE:
		c.aluXor(c.fetch8(), true)
	case 0xF6:
		c.aluOr(c.fetch8(), true)
	case 0xFE:
		c.aluCp(c.fetch8(), true)

	// INC/DEC r and (HL)
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x3C:
		c.incReg((op >> 3) & 7)
	case 0x34:
		c.incHL()
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x3D:
		c.decReg((op >> 3) & 7)
	case 0x35:
		c.decHL()

	// 16-bit INC/DEC (no flags)
	case 0x03:
		c.SetBC(c.BC() + 1)
		c.charge(8)
	case 0x13:
		c.SetDE(c.DE() + 1)
		c.charge(8)
	case 0x23:
		c.SetHL(c.HL() + 1)
		c.charge(8)
	case 0x33:
		c.SP++
		c.charge(8)
	case 0x0B:
		c.SetBC(c.BC() - 1)
		c.charge(8)
	case 0x1B:
		c.SetDE(c.DE() - 1)
		c.charge(8)
	case 0x2B:
		c.SetHL(c.HL() - 1)
		c.charge(8)
	case 0x3B:
		c.SP--
		c.charge(8)

	// ADD HL,rr
	case 0x09:
		c.addHL(c.BC())
	case 0x19:
		c.addHL(c.DE())
	case 0x29:
		c.addHL(c.HL())
	case 0x39:
		c.addHL(c.SP)

	// Rotates on A
	case 0x07: // RLCA
		cy := c.A>>7&1 == 1
		c.A = c.A<<1 | c.A>>7
		c.SetZNHC(false, false, false, cy)
		c.charge(4)
	case 0x0F: // RRCA
		cy := c.A&1 == 1
		c.A = c.A>>1 | c.A<<7
		c.SetZNHC(false, false, false, cy)
		c.charge(4)
	case 0x17: // RLA
		cy := c.A>>7&1 == 1
		var cin byte
		if c.Flag(registers.FlagC) {
			cin = 1
		}
		c.A = c.A<<1 | cin
		c.SetZNHC(false, false, false, cy)
		c.charge(4)
	case 0x1F: // RRA
		cy := c.A&1 == 1
		var cin byte
		if c.Flag(registers.FlagC) {
			cin = 0x80
		}
		c.A = c.A>>1 | cin
		c.SetZNHC(false, false, false, cy)
		c.charge(4)

	case 0x27: // DAA
		c.daa()
		c.charge(4)
	case 0x2F: // CPL
		c.A = ^c.A
		c.F = (c.F & (registers.FlagZ | registers.FlagC)) | registers.FlagN | registers.FlagH
		c.charge(4)
	case 0x37: // SCF
		c.F = (c.F & registers.FlagZ) | registers.FlagC
		c.charge(4)
	case 0x3F: // CCF
		c.F = (c.F & (registers.FlagZ | registers.FlagC)) ^ registers.FlagC
		c.charge(4)

	// Absolute/relative jumps
	case 0xC3:
		c.PC = c.fetch16()
		c.charge(16)
	case 0xE9:
		c.PC = c.HL()
		c.charge(4)
	case 0x18:
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		c.charge(12)
	case 0x20, 0x28, 0x30, 0x38:
		c.jrConditional(op)
	case 0xC2, 0xCA, 0xD2, 0xDA:
		c.jpConditional(op)

	// Calls/returns/restarts
	case 0xCD:
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		c.charge(24)
	case 0xC4, 0xCC, 0xD4, 0xDC:
		c.callConditional(op)
	case 0xC9:
		c.PC = c.pop16()
		c.charge(16)
	case 0xD9: // RETI
		c.PC = c.pop16()
		c.IME = true
		c.charge(16)
	case 0xC0, 0xC8, 0xD0, 0xD8:
		c.retConditional(op)
	case 0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		c.push16(c.PC)
		c.PC = uint16(op - 0xC7)
		c.charge(16)

	// Interrupt/control
	case 0xF3: // DI
		c.IME = false
		c.eiDelay = 0
		c.charge(4)
	case 0xFB: // EI
		c.eiDelay = 2
		c.charge(4)

	case 0xCB:
		c.executeCB(c.fetch8())

	default:
		diag.Warnf("cpu: unknown opcode %#02x at PC %#04x, treating as NOP", op, c.PC-1)
		diag.Warnf("%s", diag.Dump("regs", &c.File))
		c.charge(4)
	}
}

// operand resolves the 8-bit ALU source operand for an 0x80-0xBF opcode:
// the low 3 bits select B,C,D,E,H,L,(HL),A.
func (c *CPU) operand(op byte) byte {
	return c.reg8(op & 7)
}

// condition evaluates one of the four branch conditions encoded in bits
// 4-3 of a conditional opcode: NZ, Z, NC, C in that order.
func (c *CPU) condition(op byte) bool {
	switch (op >> 3) & 3 {
	case 0:
		return !c.Flag(registers.FlagZ)
	case 1:
		return c.Flag(registers.FlagZ)
	case 2:
		return !c.Flag(registers.FlagC)
	default:
		return c.Flag(registers.FlagC)
	}
}

func (c *CPU) jrConditional(op byte) {
	off := int8(c.fetch8())
	if c.condition(op) {
		c.PC = uint16(int32(c.PC) + int32(off))
		c.charge(12)
		return
	}
	c.charge(8)
}

func (c *CPU) jpConditional(op byte) {
	addr := c.fetch16()
	if c.condition(op) {
		c.PC = addr
		c.charge(16)
		return
	}
	c.charge(12)
}

func (c *CPU) callConditional(op byte) {
	addr := c.fetch16()
	if c.condition(op) {
		c.push16(c.PC)
		c.PC = addr
		c.charge(24)
		return
	}
	c.charge(12)
}

func (c *CPU) retConditional(op byte) {
	if c.condition(op) {
		c.PC = c.pop16()
		c.charge(20)
		return
	}
	c.charge(8)
}
