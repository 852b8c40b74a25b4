package cpu

import "github.com/tilecore/gbcore/internal/registers"

// executeCB decodes and runs one CB-prefixed opcode. The secondary table is
// uniform: bits 7-6 select the operation group (rotate/shift/swap, BIT, RES,
// SET), bits 5-3 select the rotate/shift operation or the bit index, and
// bits 2-0 select the operand register (6 means (HL)).
func (c *CPU) executeCB(op byte) {
	reg := op & 7
	group := (op >> 6) & 3
	y := (op >> 3) & 7

	cost := 8
	if reg == 6 {
		cost = 16
	}

	switch group {
	case 0: // rotate/shift/swap
		v := c.reg8(reg)
		var cy bool
		switch y {
		case 0: // RLC
			cy = v>>7&1 == 1
			v = v<<1 | v>>7
		case 1: // RRC
			cy = v&1 == 1
			v = v>>1 | v<<7
		case 2: // RL
			cy = v>>7&1 == 1
			var cin byte
			if c.Flag(registers.FlagC) {
				cin = 1
			}
			v = v<<1 | cin
		case 3: // RR
			cy = v&1 == 1
			var cin byte
			if c.Flag(registers.FlagC) {
				cin = 0x80
			}
			v = v>>1 | cin
		case 4: // SLA
			cy = v>>7&1 == 1
			v <<= 1
		case 5: // SRA
			cy = v&1 == 1
			v = v>>1 | v&0x80
		case 6: // SWAP: nibble swap, not a bit-pair rotate
			v = v<<4 | v>>4
			cy = false
		case 7: // SRL
			cy = v&1 == 1
			v >>= 1
		}
		c.setReg8(reg, v)
		if y == 6 {
			c.SetZNHC(v == 0, false, false, false)
		} else {
			c.SetZNHC(v == 0, false, false, cy)
		}
		c.charge(cost)

	case 1: // BIT y,r: Z=(bit==0), N=0, H=1, C unchanged
		v := c.reg8(reg)
		zero := v>>y&1 == 0
		c.SetFlag(registers.FlagZ, zero)
		c.ClearFlag(registers.FlagN)
		c.SetFlag(registers.FlagH, true)
		if reg == 6 {
			c.charge(12)
		} else {
			c.charge(cost)
		}

	case 2: // RES y,r: no flag effect
		v := c.reg8(reg)
		c.setReg8(reg, v&^(1<<y))
		c.charge(cost)

	case 3: // SET y,r: no flag effect
		v := c.reg8(reg)
		c.setReg8(reg, v|(1<<y))
		c.charge(cost)
	}
}
