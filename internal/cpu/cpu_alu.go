package cpu

import "github.com/tilecore/gbcore/internal/registers"

// add8Flags computes the 8-bit result of a+b along with its zero,
// half-carry and carry outcome. ADD A uses all of it; LD HL,SP+r8 and
// ADD SP,r8 use only the half-carry and carry, which they need with
// 8-bit-unsigned-addition semantics on the low byte regardless of the
// 16-bit result.
func add8Flags(a, b byte) (res byte, z, h, cy bool) {
	r := uint16(a) + uint16(b)
	res = byte(r)
	z = res == 0
	h = (a&0x0F)+(b&0x0F) > 0x0F
	cy = r > 0xFF
	return
}

// aluCost returns 8 for the (HL) and immediate operand forms, 4 for a
// plain register operand.
func aluCost(wide bool) int {
	if wide {
		return 8
	}
	return 4
}

func (c *CPU) aluAdd(b byte, wide bool) {
	res, z, h, cy := add8Flags(c.A, b)
	c.A = res
	c.SetZNHC(z, false, h, cy)
	c.charge(aluCost(wide))
}

func (c *CPU) aluAdc(b byte, wide bool) {
	var ci byte
	if c.Flag(registers.FlagC) {
		ci = 1
	}
	r := uint16(c.A) + uint16(b) + uint16(ci)
	res := byte(r)
	h := (c.A&0x0F)+(b&0x0F)+ci > 0x0F
	cy := r > 0xFF
	c.A = res
	c.SetZNHC(res == 0, false, h, cy)
	c.charge(aluCost(wide))
}

func (c *CPU) aluSub(b byte, wide bool) {
	res, z, h, cy := sub8Flags(c.A, b)
	c.A = res
	c.SetZNHC(z, true, h, cy)
	c.charge(aluCost(wide))
}

func (c *CPU) aluSbc(b byte, wide bool) {
	var ci byte
	if c.Flag(registers.FlagC) {
		ci = 1
	}
	r := int16(c.A) - int16(b) - int16(ci)
	res := byte(r)
	h := (c.A & 0x0F) < (b&0x0F)+ci
	cy := int16(c.A) < int16(b)+int16(ci)
	c.A = res
	c.SetZNHC(res == 0, true, h, cy)
	c.charge(aluCost(wide))
}

func (c *CPU) aluAnd(b byte, wide bool) {
	c.A &= b
	c.SetZNHC(c.A == 0, false, true, false)
	c.charge(aluCost(wide))
}

func (c *CPU) aluXor(b byte, wide bool) {
	c.A ^= b
	c.SetZNHC(c.A == 0, false, false, false)
	c.charge(aluCost(wide))
}

func (c *CPU) aluOr(b byte, wide bool) {
	c.A |= b
	c.SetZNHC(c.A == 0, false, false, false)
	c.charge(aluCost(wide))
}

func (c *CPU) aluCp(b byte, wide bool) {
	_, z, h, cy := sub8Flags(c.A, b)
	c.SetZNHC(z, true, h, cy)
	c.charge(aluCost(wide))
}

func sub8Flags(a, b byte) (res byte, z, h, cy bool) {
	r := int16(a) - int16(b)
	res = byte(r)
	z = res == 0
	h = (a & 0x0F) < (b & 0x0F)
	cy = int16(a) < int16(b)
	return
}

func (c *CPU) incReg(idx byte) {
	old := c.reg8(idx)
	v := old + 1
	c.setReg8(idx, v)
	c.SetZNHC(v == 0, false, (old&0x0F)+1 > 0x0F, c.Flag(registers.FlagC))
	c.charge(4)
}

func (c *CPU) decReg(idx byte) {
	old := c.reg8(idx)
	v := old - 1
	c.setReg8(idx, v)
	c.SetZNHC(v == 0, true, old&0x0F == 0, c.Flag(registers.FlagC))
	c.charge(4)
}

func (c *CPU) incHL() {
	addr := c.HL()
	old := c.mem.ReadByte(addr)
	v := old + 1
	c.mem.WriteByte(addr, v)
	c.SetZNHC(v == 0, false, (old&0x0F)+1 > 0x0F, c.Flag(registers.FlagC))
	c.charge(12)
}

func (c *CPU) decHL() {
	addr := c.HL()
	old := c.mem.ReadByte(addr)
	v := old - 1
	c.mem.WriteByte(addr, v)
	c.SetZNHC(v == 0, true, old&0x0F == 0, c.Flag(registers.FlagC))
	c.charge(12)
}

// addHL implements ADD HL,rr: N clears, H comes from bit 11 of the 16-bit
// addition (not bit 7), C from bit 15, Z is left untouched.
func (c *CPU) addHL(rr uint16) {
	hl := c.HL()
	r := uint32(hl) + uint32(rr)
	h := (hl&0x0FFF)+(rr&0x0FFF) > 0x0FFF
	c.SetHL(uint16(r))
	c.SetZNHC(c.Flag(registers.FlagZ), false, h, r > 0xFFFF)
	c.charge(8)
}

// daa adjusts A after a BCD add/sub using the current N, H, C flags.
func (c *CPU) daa() {
	a := c.A
	cf := c.Flag(registers.FlagC)
	if !c.Flag(registers.FlagN) {
		if cf || a > 0x99 {
			a += 0x60
			cf = true
		}
		if c.Flag(registers.FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if cf {
			a -= 0x60
		}
		if c.Flag(registers.FlagH) {
			a -= 0x06
		}
	}
	c.A = a
	c.SetZNHC(c.A == 0, c.Flag(registers.FlagN), false, cf)
}
