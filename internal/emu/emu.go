// Package emu wires the register file, memory bus, picture processor, and
// CPU interpreter into the tick loop a host driver runs: step the CPU, feed
// its reported cycle cost to the PPU, let the bus latch any interrupt the
// PPU's V-Blank edge raised, and surface a decoded frame at most once per
// V-Blank.
package emu

import (
	"github.com/tilecore/gbcore/internal/bus"
	"github.com/tilecore/gbcore/internal/cart"
	"github.com/tilecore/gbcore/internal/cpu"
	"github.com/tilecore/gbcore/internal/diag"
	"github.com/tilecore/gbcore/internal/ppu"
	"github.com/tilecore/gbcore/internal/video"
)

// Machine owns one cartridge slot and the full cpu/bus/ppu stack driving
// it. It does not present, play audio, or read input: those are external
// collaborators at this core's interface.
type Machine struct {
	cfg Config

	cart *cart.ROMOnly
	ppu  *ppu.PPU
	bus  *bus.Bus
	cpu  *cpu.CPU

	totalT     uint64
	lastMode   ppu.Mode
	frameReady bool
}

// New builds an idle Machine with an empty cartridge slot. Call LoadROM
// before ticking it.
func New(cfg Config) *Machine {
	m := &Machine{cfg: cfg}
	m.LoadROM(nil)
	return m
}

// LoadROM installs a cartridge image and rebuilds the machine to run it
// from the boot ROM overlay. Loading the image bytes from a file is the
// host's job; this core only accepts bytes already in memory.
func (m *Machine) LoadROM(rom []byte) {
	m.cart = cart.NewROMOnly(rom)
	m.ppu = ppu.New()
	m.bus = bus.New(m.cart, m.ppu)
	m.cpu = cpu.New(m.bus)
	m.lastMode = m.ppu.Mode()
	m.frameReady = false
	m.totalT = 0
}

// ResetPostBoot skips the boot ROM sequence, placing the register file and
// the boot overlay latch directly in their post-boot state. Useful for
// running a cartridge without also emulating the boot animation.
func (m *Machine) ResetPostBoot() {
	m.cpu.ResetPostBoot()
	m.bus.WriteByte(0xFF50, 1)
	m.ppu.SetLCDC(0x80)
}

// Tick runs exactly one CPU instruction (or interrupt-service prologue),
// advances the PPU by the reported cycle count, and lets the bus latch any
// newly raised interrupt. It returns the instruction's cost.
func (m *Machine) Tick() cpu.Clock {
	pc := m.cpu.PC
	clk := m.cpu.Step()
	m.ppu.Step(clk.T)
	m.bus.Step()
	m.totalT += uint64(clk.T)

	mode := m.ppu.Mode()
	if mode == ppu.VBlank && m.lastMode != ppu.VBlank {
		m.frameReady = true
	}
	m.lastMode = mode

	if m.cfg.Trace {
		diag.Warnf("tick: pc=%#04x t=%d m=%d", pc, clk.T, clk.M)
	}
	return clk
}

// Run advances the machine by n instructions.
func (m *Machine) Run(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// FrameReady reports whether the PPU has entered V-Blank since the frame
// buffer was last consumed.
func (m *Machine) FrameReady() bool { return m.frameReady }

// ConsumeFrame decodes the current back buffer into an RGB pixel buffer and
// clears the ready flag. Calling it more than once per V-Blank edge is
// allowed but produces the same frame twice; FrameReady is how a driver
// avoids that.
func (m *Machine) ConsumeFrame() []byte {
	m.frameReady = false
	return video.Render(m.ppu.VRAM(), m.ppu.BackBuffer())
}

// TotalCycles reports the running T-cycle count since the last LoadROM.
func (m *Machine) TotalCycles() uint64 { return m.totalT }

// CPU exposes the underlying interpreter for diagnostics and tests that
// need direct register access.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// PPU exposes the underlying picture processor for diagnostics and tests.
func (m *Machine) PPU() *ppu.PPU { return m.ppu }
