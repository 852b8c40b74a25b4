package bus

// bootROM is a synthetic 256-byte placeholder. It is not the real console
// boot program: it simply sets up the stack pointer, writes the boot-disable
// register, and jumps into the cartridge entry point at 0x0100. Everything
// in between is NOP padding.
var bootROM = func() [256]byte {
	var rom [256]byte
	// LD SP,0xFFFE
	rom[0x00] = 0x31
	rom[0x01] = 0xFE
	rom[0x02] = 0xFF
	// LD A,0x01
	rom[0x03] = 0x3E
	rom[0x04] = 0x01
	// LDH (0xFF50),A  -- disables the boot overlay
	rom[0x05] = 0xE0
	rom[0x06] = 0x50
	// JP 0x0100
	rom[0x07] = 0xC3
	rom[0x08] = 0x00
	rom[0x09] = 0x01
	for i := 0x0A; i < len(rom); i++ {
		rom[i] = 0x00 // NOP
	}
	return rom
}()
