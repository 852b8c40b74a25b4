package cpu

import "github.com/tilecore/gbcore/internal/bus"

// Memory is the narrow interface the CPU uses to reach the bus: four
// accessors plus the two interrupt-queue operations it needs to service a
// pending interrupt. This keeps the CPU from depending on the bus's
// internal PPU wiring or its concrete I/O register dispatch.
type Memory interface {
	ReadByte(addr uint16) byte
	WriteByte(addr uint16, value byte)
	ReadWord(addr uint16) uint16
	WriteWord(addr uint16, value uint16)
	PendingInterrupt() (bus.Kind, bool)
	AckInterrupt(bus.Kind)
}
