// Package ppu implements the picture processor's mode-cycle state machine:
// a four-state scanline timer that owns VRAM and the background tile-index
// back buffer and raises a one-shot V-Blank edge for the bus to observe.
package ppu

import "github.com/tilecore/gbcore/internal/diag"

// Mode is one of the PPU's four cycle states.
type Mode int

const (
	ScanOAM Mode = iota
	ScanVRam
	HBlank
	VBlank
)

const (
	vramSize       = 0x2000
	bgMapSize      = 32 * 32
	bgMapBase      = 0x1800
	oamDuration    = 80
	vramDuration   = 172
	hblankDuration = 204
	lineDuration   = 456
	vblankLine     = 144
	lastLine       = 153
)

// PPU is the cyclic scanline state machine. The zero value is the same
// reset state New returns (ScanOAM, LY=0, LCD disabled).
type PPU struct {
	mode    Mode
	counter int
	ly      byte
	enabled bool

	vblankEdge bool

	vram       [vramSize]byte
	backBuffer [bgMapSize]byte
}

// New returns a freshly reset PPU. The machine starts in ScanOAM rather than
// the HBlank state named in descriptive prose elsewhere: only a
// ScanOAM-first cycle keeps the V-Blank-entry cycle count (65,664 T-cycles
// at LY==144) and the full-frame period (70,224 T-cycles) simultaneously
// consistent.
func New() *PPU {
	return &PPU{mode: ScanOAM}
}

// Mode reports the current cycle state.
func (p *PPU) Mode() Mode { return p.mode }

// LY returns the current scanline counter, exposed at 0xFF44.
func (p *PPU) LY() byte { return p.ly }

// Enabled reports whether the LCD is currently on.
func (p *PPU) Enabled() bool { return p.enabled }

// SetLCDC forwards the LCDC control write; only bit 7 (display enable) is
// honored in this core.
func (p *PPU) SetLCDC(value byte) {
	p.enabled = value&0x80 != 0
}

// ConsumeVBlankEdge reports whether a V-Blank edge has fired since the last
// call and clears it. The bus polls this once per step().
func (p *PPU) ConsumeVBlankEdge() bool {
	fired := p.vblankEdge
	p.vblankEdge = false
	return fired
}

// ReadVRAM reads a byte from VRAM given an offset already relative to 0x8000.
func (p *PPU) ReadVRAM(offset uint16) byte {
	if int(offset) >= len(p.vram) {
		diag.Warnf("ppu: VRAM read out of range: %#04x", offset)
		return 0
	}
	return p.vram[offset]
}

// WriteVRAM writes a byte into VRAM given an offset already relative to
// 0x8000.
func (p *PPU) WriteVRAM(offset uint16, value byte) {
	if int(offset) >= len(p.vram) {
		diag.Warnf("ppu: VRAM write out of range: %#04x", offset)
		return
	}
	p.vram[offset] = value
}

// VRAM exposes the full 8 KiB VRAM image for the frame-buffer exporter.
func (p *PPU) VRAM() []byte { return p.vram[:] }

// BackBuffer exposes the 32x32 tile-index snapshot for the frame-buffer
// exporter.
func (p *PPU) BackBuffer() []byte { return p.backBuffer[:] }

// Step accumulates cycles into the current mode's counter and advances the
// state machine through however many transitions the budget covers. If the
// LCD is disabled the budget is discarded without mutating mode state.
func (p *PPU) Step(cycles int) {
	if !p.enabled {
		return
	}
	p.counter += cycles
	for {
		switch p.mode {
		case ScanOAM:
			if p.counter < oamDuration {
				return
			}
			p.counter -= oamDuration
			p.mode = ScanVRam
		case ScanVRam:
			if p.counter < vramDuration {
				return
			}
			p.counter -= vramDuration
			p.renderLine()
			p.mode = HBlank
		case HBlank:
			if p.counter < hblankDuration {
				return
			}
			p.counter -= hblankDuration
			p.ly++
			if p.ly == vblankLine {
				p.mode = VBlank
				p.vblankEdge = true
			} else {
				p.mode = ScanOAM
			}
		case VBlank:
			if p.counter < lineDuration {
				return
			}
			p.counter -= lineDuration
			p.ly++
			if p.ly > lastLine {
				p.ly = 0
				p.mode = ScanOAM
			}
		default:
			diag.Warnf("ppu: unknown mode %d, resetting to ScanOAM", p.mode)
			p.mode = ScanOAM
		}
	}
}

// renderLine copies the current scanline's row of tile indices from the
// background tile map into the back buffer. Pixel decoding is deferred to
// the frame-buffer exporter.
func (p *PPU) renderLine() {
	row := int(p.ly)
	if row >= 32 {
		return
	}
	for col := 0; col < 32; col++ {
		src := bgMapBase + row*32 + col
		p.backBuffer[row*32+col] = p.vram[src]
	}
}
