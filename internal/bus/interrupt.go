package bus

import "github.com/tilecore/gbcore/internal/diag"

// Kind identifies one of the five interrupt sources visible on IE/IF. Only
// bit and vector assignment is modeled here; Timer, Serial and Joypad are
// never raised by this core but are represented so the priority ordering
// and dispatch machinery match real hardware.
type Kind byte

const (
	VBlank Kind = iota
	LCDStat
	Timer
	Serial
	Joypad
)

// priority lists the five kinds in the order the CPU polls them: the
// lowest-numbered pending, enabled interrupt always wins.
var priority = [...]Kind{VBlank, LCDStat, Timer, Serial, Joypad}

// Bit returns the IE/IF bit position for the interrupt kind.
func (k Kind) Bit() byte {
	switch k {
	case VBlank:
		return 0
	case LCDStat:
		return 1
	case Timer:
		return 2
	case Serial:
		return 3
	case Joypad:
		return 4
	default:
		diag.Warnf("interrupt: unknown kind %d queried for bit", k)
		return 0
	}
}

// Vector returns the fixed service-routine address for the interrupt kind.
func (k Kind) Vector() uint16 {
	switch k {
	case VBlank:
		return 0x0040
	case LCDStat:
		return 0x0048
	case Timer:
		return 0x0050
	case Serial:
		return 0x0058
	case Joypad:
		return 0x0060
	default:
		diag.Warnf("interrupt: unknown kind %d queried for vector", k)
		return 0x0000
	}
}
