package data

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecodeSimple(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}

	result, err := DecodeSimple(raw, 3)
	assert.NoError(t, err)
	assert.Equal(t, 3, result.Consumed)
	assert.Len(t, result.Fields, 3)
	assert.Equal(t, uint16(0x03), result.Fields[2].Value)
	assert.Equal(t, 2, result.Fields[2].Offset)

	_, err = DecodeSimple(raw, 0)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
	_, err = DecodeSimple(raw, 5)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDecodePalette(t *testing.T) {
	// white, red, green, blue
	raw := []byte{0xFF, 0x7F, 0x1F, 0x00, 0xE0, 0x03, 0x00, 0x7C}

	t.Run("four colors", func(t *testing.T) {
		result, err := DecodePalette(raw, 8)
		assert.NoError(t, err)
		assert.Equal(t, 8, result.Consumed)
		assert.Len(t, result.Colors, 4)
		assert.Equal(t, Color{R: 31, G: 31, B: 31}, result.Colors[0])
		assert.Equal(t, Color{R: 31}, result.Colors[1])
		assert.Equal(t, Color{G: 31}, result.Colors[2])
		assert.Equal(t, Color{B: 31}, result.Colors[3])
		assert.Equal(t, "#ffffff", result.Colors[0].String())
	})

	t.Run("odd length", func(t *testing.T) {
		_, err := DecodePalette(raw, 7)
		assert.True(t, errors.Is(err, ErrMalformedStructure))
	})

	t.Run("top bit is ignored", func(t *testing.T) {
		result, err := DecodePalette([]byte{0x00, 0x80}, 2)
		assert.NoError(t, err)
		assert.Equal(t, Color{}, result.Colors[0])
	})

	t.Run("default length", func(t *testing.T) {
		result, err := DecodePalette(make([]byte, 100), 0)
		assert.NoError(t, err)
		assert.Equal(t, DefaultPaletteColors*2, result.Consumed)
		assert.Len(t, result.Colors, DefaultPaletteColors)

		_, err = DecodePalette(make([]byte, 10), 0)
		assert.True(t, errors.Is(err, ErrMalformedStructure))
	})
}

func TestColorRoundTrip(t *testing.T) {
	for _, w := range []uint16{0x0000, 0x7FFF, 0x1234, 0x03E0} {
		assert.Equal(t, w, ColorFromBGR555(w).BGR555())
	}
}

func TestDecodeRLE(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		length   int
		decoded  []byte
		consumed int
		wantErr  bool
	}{
		{
			name:     "repeat run",
			raw:      []byte{0x03, 0xAA, 0x00},
			decoded:  []byte{0xAA, 0xAA, 0xAA},
			consumed: 3,
		},
		{
			name:     "literal run",
			raw:      []byte{0x82, 0x01, 0x02, 0x00, 0xFF},
			decoded:  []byte{0x01, 0x02},
			consumed: 4,
		},
		{
			name:     "mixed runs",
			raw:      []byte{0x02, 0x11, 0x81, 0x22, 0x01, 0x33, 0x00},
			decoded:  []byte{0x11, 0x11, 0x22, 0x33},
			consumed: 7,
		},
		{
			name:     "stops at requested length",
			raw:      []byte{0x02, 0x11, 0x02, 0x22, 0x02, 0x33},
			length:   4,
			decoded:  []byte{0x11, 0x11, 0x22, 0x22},
			consumed: 4,
		},
		{
			name:     "truncates the last run",
			raw:      []byte{0x05, 0x11},
			length:   3,
			decoded:  []byte{0x11, 0x11, 0x11},
			consumed: 2,
		},
		{
			name:     "terminator before requested length",
			raw:      []byte{0x01, 0x11, 0x00},
			length:   10,
			decoded:  []byte{0x11},
			consumed: 3,
		},
		{
			name:     "empty stream",
			raw:      []byte{0x00},
			consumed: 1,
		},
		{
			name:    "missing terminator",
			raw:     []byte{0x02, 0x11},
			wantErr: true,
		},
		{
			name:    "truncated literal",
			raw:     []byte{0x84, 0x01},
			wantErr: true,
		},
		{
			name:    "truncated repeat",
			raw:     []byte{0x04},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := DecodeRLE(tt.raw, tt.length)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrMalformedStructure))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.consumed, result.Consumed)
			assert.Equal(t, len(tt.decoded), len(result.Decoded))
			for i, b := range tt.decoded {
				assert.Equal(t, b, result.Decoded[i])
			}
		})
	}
}

func TestParseLayout(t *testing.T) {
	layout, err := ParseLayout("db, dw ,addr,db,hp:db,ptr:addr_be,color_be")
	assert.NoError(t, err)
	assert.Equal(t, 11, layout.Width)

	names := []string{"db", "dw", "addr", "db_1", "hp", "ptr", "color_be"}
	assert.Len(t, layout.Fields, len(names))
	for i, name := range names {
		assert.Equal(t, name, layout.Fields[i].Name)
	}
	assert.Equal(t, 9, layout.Fields[6].Offset)

	again, err := ParseLayout(layout.String())
	assert.NoError(t, err)
	assert.Equal(t, layout.Width, again.Width)

	for _, spec := range []string{"", "db,xx", "a:db,a:dw", ":db", "db_1:dw,db,db"} {
		_, err := ParseLayout(spec)
		assert.True(t, errors.Is(err, ErrMalformedStructure), spec)
	}
}

func TestDecodeTable(t *testing.T) {
	layout, err := ParseLayout("db,dw,addr,addr_be")
	assert.NoError(t, err)
	raw := []byte{
		0x01, 0x34, 0x12, 0x00, 0x40, 0x40, 0x00,
		0x02, 0x78, 0x56, 0x50, 0x01, 0x01, 0x50,
		0xFF,
	}

	result, err := DecodeTable(raw, 2, layout)
	assert.NoError(t, err)
	assert.Equal(t, 14, result.Consumed)
	assert.Len(t, result.Rows, 2)

	row := result.Rows[1]
	f, ok := row.Get("dw")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x5678), f.Value)
	f, ok = row.Get("addr")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0150), f.Value)
	assert.Equal(t, 10, f.Offset)
	f, ok = row.Get("addr_be")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0150), f.Value)
	_, ok = row.Get("missing")
	assert.False(t, ok)

	_, err = DecodeTable(raw, 3, layout)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
	_, err = DecodeTable(raw, 0, layout)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDecodeJumpTable(t *testing.T) {
	raw := []byte{0x50, 0x01, 0x00, 0x40, 0xFF, 0x7F, 0x00, 0xC0, 0x50, 0x01}

	assert.Equal(t, 3, DetectJumpTableRows(raw, 0x0100))

	result, err := DecodeJumpTable(raw, 0, 0x0100)
	assert.NoError(t, err)
	assert.Equal(t, JumpTable, result.Kind)
	assert.Equal(t, 6, result.Consumed)
	assert.Equal(t, uint16(0x7FFF), result.Rows[2].Fields[0].Value)

	result, err = DecodeJumpTable(raw, 5, 0x0100)
	assert.NoError(t, err)
	assert.Equal(t, 10, result.Consumed)

	_, err = DecodeJumpTable([]byte{0x00, 0x00}, 0, 0x0100)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDetectJumpTableRows(t *testing.T) {
	tests := []struct {
		name     string
		start    uint16
		raw      []byte
		expected int
	}{
		{
			name:  "handler follows table",
			start: 0x0200,
			// $0206 $0209 $020C, then ld a,1 ; ret
			raw:      []byte{0x06, 0x02, 0x09, 0x02, 0x0C, 0x02, 0x3E, 0x01, 0xC9, 0x3E, 0x02, 0xC9},
			expected: 3,
		},
		{
			name:     "targets before the table",
			start:    0x0200,
			raw:      []byte{0x50, 0x01, 0x60, 0x01, 0x00, 0x00},
			expected: 2,
		},
		{
			name:     "target outside of rom",
			start:    0x4000,
			raw:      []byte{0x00, 0x50, 0x00, 0xC0, 0x10, 0x40},
			expected: 1,
		},
		{
			name:     "truncated",
			start:    0x0200,
			raw:      []byte{0x50, 0x01, 0x60},
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectJumpTableRows(tt.raw, tt.start))
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	raw := make([]byte, HeaderLength)
	copy(raw[headerTitle:], "TETRIS")
	raw[0x43] = 0x01 // MBC1
	raw[0x44] = 0x01
	raw[0x4A] = 0xBE
	raw[0x4B] = 0xEF
	raw[headerChecksumOffset] = headerChecksum(raw)

	result, err := DecodeHeader(raw, HeaderStart)
	assert.NoError(t, err)
	assert.Equal(t, Header, result.Kind)
	assert.Equal(t, HeaderLength, result.Consumed)
	assert.Equal(t, "Cartridge Header: TETRIS", result.Description)

	values := make(map[string]uint16)
	for _, f := range result.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, uint16(0x01), values["type"])
	assert.Equal(t, uint16(0xBEEF), values["global_checksum"])
	assert.Equal(t, uint16(1), values["checksum_valid"])

	raw[headerChecksumOffset]++
	result, err = DecodeHeader(raw, HeaderStart)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0), result.Fields[len(result.Fields)-1].Value)

	_, err = DecodeHeader(raw, 0x0100)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
	_, err = DecodeHeader(raw[:0x20], HeaderStart)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDecodeSGB(t *testing.T) {
	raw := make([]byte, 48)
	raw[0] = 0x71 // ICON_EN, 1 packet
	raw[1] = 0x01

	result, err := DecodeSGB(raw)
	assert.NoError(t, err)
	assert.Equal(t, SGB, result.Kind)
	assert.Equal(t, 16, result.Consumed)
	assert.Equal(t, "SGB Packet: $0f ICON_EN (SGB Function)", result.Description)

	raw[0] = 0x5A // PAL_TRN, 2 packets
	result, err = DecodeSGB(raw)
	assert.NoError(t, err)
	assert.Equal(t, 32, result.Consumed)

	raw[0] = 0xF9
	result, err = DecodeSGB(raw)
	assert.NoError(t, err)
	assert.Equal(t, "SGB Packet: unknown", result.Description)

	raw[0] = 0x78
	_, err = DecodeSGB(raw)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
	_, err = DecodeSGB([]byte{0x07})
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDecodeEmpty(t *testing.T) {
	raw := []byte{0x00, 0x00, 0x00, 0x00, 0xFF}

	result, err := DecodeEmpty(raw, 0, 0x0200)
	assert.NoError(t, err)
	assert.Equal(t, Empty, result.Kind)
	assert.Equal(t, 4, result.Consumed)

	// the entry point NOP ends a run
	assert.Equal(t, 2, DetectEmptyLength(raw, 0x00FE))
	assert.Equal(t, 0, DetectEmptyLength(raw, 0x0100))

	result, err = DecodeEmpty(raw, 5, 0x0200)
	assert.NoError(t, err)
	assert.Equal(t, 5, result.Consumed)

	_, err = DecodeEmpty(raw[4:], 0, 0x0200)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
	_, err = DecodeEmpty(raw, 6, 0x0200)
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}

func TestDecode(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}
	for _, kind := range Kinds {
		parsed, err := ParseKind(kind.String())
		assert.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	result, err := Decode(Table, 0x0100, raw, 2, "dw")
	assert.NoError(t, err)
	assert.Equal(t, 4, result.Consumed)

	_, err = Decode(Table, 0x0100, raw, 1, "quad")
	assert.True(t, errors.Is(err, ErrMalformedStructure))

	_, err = ParseKind("sprite")
	assert.True(t, errors.Is(err, ErrMalformedStructure))
}
