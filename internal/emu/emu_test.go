package emu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResetPostBootMatchesKnownRegisterState(t *testing.T) {
	m := New(Config{})
	m.LoadROM(make([]byte, 0x8000))
	m.ResetPostBoot()

	c := m.CPU()
	require.Equal(t, byte(0x01), c.A)
	require.Equal(t, uint16(0x0100), c.PC)
	require.Equal(t, uint16(0xFFFE), c.SP)
	require.True(t, m.PPU().Enabled())
}

func TestTickAdvancesTotalCycles(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0100] = 0x00 // NOP
	m := New(Config{})
	m.LoadROM(rom)
	m.ResetPostBoot()

	m.Tick()
	require.Equal(t, uint64(4), m.TotalCycles())
}

// A full frame's worth of NOPs must cross exactly one V-Blank edge.
func TestFrameReadyFiresOncePerVBlank(t *testing.T) {
	rom := make([]byte, 0x8000)
	for i := 0x0100; i < len(rom); i++ {
		rom[i] = 0x00 // NOP everywhere; one frame of NOPs stays within the ROM window
	}
	m := New(Config{})
	m.LoadROM(rom)
	m.ResetPostBoot()

	fires := 0
	// 70224 T-cycles is one full frame; NOP costs 4 T each.
	for i := 0; i < 70224/4; i++ {
		m.Tick()
		if m.FrameReady() {
			fires++
			_ = m.ConsumeFrame()
		}
	}
	require.Equal(t, 1, fires)
}

func TestConsumeFrameClearsReadyFlag(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := New(Config{})
	m.LoadROM(rom)
	m.ResetPostBoot()

	for !m.FrameReady() {
		m.Tick()
	}
	frame := m.ConsumeFrame()
	require.False(t, m.FrameReady())
	require.Len(t, frame, 256*256*3)
}

func TestLoadROMResetsCyclesAndFrameState(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := New(Config{})
	m.LoadROM(rom)
	m.ResetPostBoot()
	m.Run(10)
	require.NotZero(t, m.TotalCycles())

	m.LoadROM(rom)
	require.Zero(t, m.TotalCycles())
	require.False(t, m.FrameReady())
}
