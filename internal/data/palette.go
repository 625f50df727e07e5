package data

import (
	"encoding/binary"
	"fmt"
)

// DefaultPaletteColors is the number of colors decoded when no length is
// given: 8 palettes of 4 colors, the size of the color palette memory.
const DefaultPaletteColors = 32

// Color is a 15-bit color with 5 bits per channel.
type Color struct {
	R, G, B uint8
}

// ColorFromBGR555 decodes a color word, the top bit is unused.
func ColorFromBGR555(w uint16) Color {
	return Color{
		R: uint8(w & 0x1F),
		G: uint8(w >> 5 & 0x1F),
		B: uint8(w >> 10 & 0x1F),
	}
}

// BGR555 returns the color word.
func (c Color) BGR555() uint16 {
	return uint16(c.R&0x1F) | uint16(c.G&0x1F)<<5 | uint16(c.B&0x1F)<<10
}

// RGB888 returns the color scaled to 8 bits per channel.
func (c Color) RGB888() (uint8, uint8, uint8) {
	scale := func(v uint8) uint8 { return v<<3 | v>>2 }
	return scale(c.R), scale(c.G), scale(c.B)
}

func (c Color) String() string {
	r, g, b := c.RGB888()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// DecodePalette decodes little endian color words. The length is in bytes
// and must be even, 0 selects DefaultPaletteColors.
func DecodePalette(raw []byte, length int) (Result, error) {
	if length == 0 {
		length = DefaultPaletteColors * 2
	}
	if length < 0 || length%2 != 0 {
		return Result{}, fmt.Errorf("%w: palette length %d is not a multiple of 2", ErrMalformedStructure, length)
	}
	if length > len(raw) {
		return Result{}, fmt.Errorf("%w: palette length %d exceeds %d available bytes",
			ErrMalformedStructure, length, len(raw))
	}

	count := length / 2
	result := Result{
		Kind:     Palette,
		Consumed: length,
		Fields:   make([]Field, count),
		Colors:   make([]Color, count),
	}
	for i := range count {
		w := binary.LittleEndian.Uint16(raw[2*i:])
		result.Fields[i] = Field{Name: "color", Type: TypeColor, Offset: 2 * i, Value: w}
		result.Colors[i] = ColorFromBGR555(w)
	}
	return result, nil
}
