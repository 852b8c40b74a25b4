// Package bus implements the memory bus: the single-ported 16-bit address
// space that dispatches reads and writes across the cartridge, work RAM,
// high RAM, the boot ROM overlay, and the PPU's memory-mapped registers. It
// also owns interrupt enable/request state and the pending interrupt queue
// the CPU drains each step.
package bus

import (
	"github.com/tilecore/gbcore/internal/cart"
	"github.com/tilecore/gbcore/internal/diag"
	"github.com/tilecore/gbcore/internal/ppu"
)

const (
	wramSize = 0x2000
	hramSize = 0x7F
)

// romLoader is implemented by cartridges that support replacing their
// backing image after construction.
type romLoader interface {
	Load([]byte)
}

// Bus wires CPU-visible address space to the cartridge, the PPU, work RAM,
// high RAM, and interrupt state.
type Bus struct {
	cart cart.Cartridge
	ppu  *ppu.PPU

	wram [wramSize]byte
	hram [hramSize]byte

	bootEnabled bool

	ie    byte
	ifReg byte
}

// New wires a Bus to the given cartridge and PPU. The boot ROM overlay
// starts active. IME is not modeled here: it lives on the CPU, which is the
// only component that consults or mutates it.
func New(c cart.Cartridge, p *ppu.PPU) *Bus {
	return &Bus{cart: c, ppu: p, bootEnabled: true}
}

// PPU exposes the owned PPU so a tick driver can call Step on it directly.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// PendingInterrupt reports the highest-priority enabled, requested
// interrupt waiting to be serviced, without consuming it.
func (b *Bus) PendingInterrupt() (Kind, bool) {
	for _, k := range priority {
		if b.ie&b.ifReg&(1<<k.Bit()) != 0 {
			return k, true
		}
	}
	return 0, false
}

// AckInterrupt clears the IF bit for the given kind, as the CPU does on
// entering its service routine.
func (b *Bus) AckInterrupt(k Kind) {
	b.ifReg &^= 1 << k.Bit()
}

// SetInterrupt sets or clears the IF bit for the given kind. It is the only
// way a device raises an interrupt request.
func (b *Bus) SetInterrupt(k Kind, asserted bool) {
	if asserted {
		b.ifReg |= 1 << k.Bit()
	} else {
		b.ifReg &^= 1 << k.Bit()
	}
}

// Step polls the PPU's V-Blank edge, clearing it, and requests a V-Blank
// interrupt when it fired. It is called once per tick, after cpu.Step and
// ppu.Step.
func (b *Bus) Step() {
	if b.ppu.ConsumeVBlankEdge() {
		b.SetInterrupt(VBlank, true)
	}
}

// LoadROM replaces the cartridge ROM backing store.
func (b *Bus) LoadROM(data []byte) {
	loader, ok := b.cart.(romLoader)
	if !ok {
		diag.Warnf("bus: cartridge does not support reloading")
		return
	}
	loader.Load(data)
}

// ReadByte dispatches a single-byte read per the region map.
func (b *Bus) ReadByte(addr uint16) byte {
	switch {
	case addr < 0x0100 && b.bootEnabled:
		return bootROM[addr]
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.ppu.ReadVRAM(addr - 0x8000)
	case addr < 0xC000:
		diag.Warnf("bus: read from unmapped address %#04x", addr)
		return 0 // external RAM, unmapped in this core
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000] // echo of work RAM
	case addr < 0xFEA0:
		diag.Warnf("bus: read from unmapped address %#04x", addr)
		return 0 // OAM, unmapped in this core
	case addr < 0xFF4C:
		return b.readIO(addr)
	case addr < 0xFF80:
		diag.Warnf("bus: read from unmapped address %#04x", addr)
		return 0
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.ie
	default:
		diag.Warnf("bus: read from unmapped address %#04x", addr)
		return 0
	}
}

// WriteByte dispatches a single-byte write per the region map.
func (b *Bus) WriteByte(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr < 0xA000:
		b.ppu.WriteVRAM(addr-0x8000, value)
	case addr < 0xC000:
		// external RAM, unmapped in this core: write discarded
		diag.Warnf("bus: write to unmapped address %#04x (value %#02x)", addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		// echo of work RAM; writes here are discarded per the region map
	case addr < 0xFEA0:
		// OAM, unmapped in this core
		diag.Warnf("bus: write to unmapped address %#04x (value %#02x)", addr, value)
	case addr < 0xFF4C || addr == 0xFF50:
		b.writeIO(addr, value)
	case addr < 0xFF80:
		// unimplemented IO register, write discarded
		diag.Warnf("bus: write to unmapped address %#04x (value %#02x)", addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.ie = value
	default:
		diag.Warnf("bus: write to unmapped address %#04x (value %#02x)", addr, value)
	}
}

// readIO handles the narrow slice of 0xFF00-0xFF4B registers this core
// implements; everything else in the range reads 0.
func (b *Bus) readIO(addr uint16) byte {
	switch addr {
	case 0xFF44:
		return b.ppu.LY()
	default:
		return 0
	}
}

// writeIO handles the narrow slice of 0xFF00-0xFF4B registers this core
// implements, plus the boot ROM unmap latch at 0xFF50.
func (b *Bus) writeIO(addr uint16, value byte) {
	switch addr {
	case 0xFF40:
		b.ppu.SetLCDC(value)
	case 0xFF50:
		b.bootEnabled = false
	default:
		// write-only or unimplemented register, discarded
	}
}

// ReadWord reads a little-endian word: low byte at addr, high byte at
// addr+1.
func (b *Bus) ReadWord(addr uint16) uint16 {
	lo := b.ReadByte(addr)
	hi := b.ReadByte(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteWord writes a little-endian word: low byte at addr, high byte at
// addr+1.
func (b *Bus) WriteWord(addr uint16, value uint16) {
	b.WriteByte(addr, byte(value))
	b.WriteByte(addr+1, byte(value>>8))
}
