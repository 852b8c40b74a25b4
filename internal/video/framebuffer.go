// Package video turns the picture processor's tile-index back buffer into
// an RGB pixel buffer. It holds no state of its own: Render is a pure
// function, kept separate from the ppu package so the decode step can be
// tested and reused independently of the mode-cycle state machine.
package video

import (
	"image"
	"image/color"
)

const (
	// TileMapDim is the width and height, in tiles, of the background map.
	TileMapDim = 32
	tileBytes  = 16
	tilePixels = 8

	// Width and Height are the exported texture's pixel dimensions.
	Width  = TileMapDim * tilePixels
	Height = TileMapDim * tilePixels

	bytesPerPixel = 3
)

// shades maps a 2-bit pixel value to its RGB triple, brightest first.
var shades = [4][3]byte{
	{230, 230, 230},
	{160, 160, 160},
	{80, 80, 80},
	{0, 0, 0},
}

// Render decodes the tile-index back buffer into a 256x256 row-major RGB
// texture. vram is the full 8KiB video RAM region; backBuffer holds one
// tile index per background cell, row-major, 32x32 entries.
//
// For each background cell it looks up the cell's 16-byte tile in vram,
// decodes each of the tile's 8 rows from its two bit-plane bytes, and
// writes the resulting 8x8 block at the cell's pixel origin.
func Render(vram, backBuffer []byte) []byte {
	dst := make([]byte, Width*Height*bytesPerPixel)
	for tileRow := 0; tileRow < TileMapDim; tileRow++ {
		for tileCol := 0; tileCol < TileMapDim; tileCol++ {
			index := backBuffer[tileRow*TileMapDim+tileCol]
			tileOff := int(index) * tileBytes
			if tileOff+tileBytes > len(vram) {
				continue
			}
			tile := vram[tileOff : tileOff+tileBytes]
			originX := tileCol * tilePixels
			originY := tileRow * tilePixels
			for y := 0; y < tilePixels; y++ {
				low, high := tile[y*2], tile[y*2+1]
				for x := 0; x < tilePixels; x++ {
					shift := uint(7 - x)
					value := (low>>shift)&1 | ((high>>shift)&1)<<1
					rgb := shades[value]
					px := originY+y
					off := (px*Width + originX + x) * bytesPerPixel
					dst[off] = rgb[0]
					dst[off+1] = rgb[1]
					dst[off+2] = rgb[2]
				}
			}
		}
	}
	return dst
}

// ToImage wraps an RGB buffer produced by Render in a standard image.RGBA
// so host-side tooling (PNG export, a presenter) can consume it without
// reimplementing the row-major pixel layout.
func ToImage(rgb []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	for i := 0; i < Width*Height; i++ {
		r, g, b := rgb[i*3], rgb[i*3+1], rgb[i*3+2]
		img.Set(i%Width, i/Width, color.RGBA{R: r, G: g, B: b, A: 0xFF})
	}
	return img
}
