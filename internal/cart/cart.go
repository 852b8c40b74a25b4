// Package cart models the cartridge ROM backing store the bus reads
// 0x0000-0x7FFF from. This core supports the fixed 32KiB ROM window only;
// bank-switching controllers are out of scope.
package cart

// romWindow is the size of the fixed, unbanked ROM address window.
const romWindow = 0x8000

// Cartridge is the minimal interface the bus needs to dispatch reads and
// writes into the cartridge region.
type Cartridge interface {
	// Read returns a byte from the ROM window (0x0000-0x7FFF).
	Read(addr uint16) byte
	// Write handles writes into the ROM window. A ROM-only cartridge
	// discards them.
	Write(addr uint16, value byte)
}

// ROMOnly is a cartridge with no banking and no control registers: the
// entire 0x0000-0x7FFF window maps directly onto the loaded image.
type ROMOnly struct {
	rom [romWindow]byte
}

// NewROMOnly copies up to 32KiB of data into a fresh fixed ROM window.
// A shorter image leaves the remainder zeroed.
func NewROMOnly(data []byte) *ROMOnly {
	c := &ROMOnly{}
	c.Load(data)
	return c
}

// Load replaces the backing store, copying up to 32KiB of data and
// zeroing anything beyond it.
func (c *ROMOnly) Load(data []byte) {
	for i := range c.rom {
		c.rom[i] = 0
	}
	copy(c.rom[:], data)
}

func (c *ROMOnly) Read(addr uint16) byte {
	if int(addr) < len(c.rom) {
		return c.rom[addr]
	}
	return 0
}

// Write is a no-op: the cartridge ROM is read-only from the program's
// point of view in this core.
func (c *ROMOnly) Write(addr uint16, value byte) {}
