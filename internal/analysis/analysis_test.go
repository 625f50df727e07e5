package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/disasm"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/xref"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// newTestEngine returns an engine for a cartridge with 4 ROM banks. code is
// written to ROM bank 0 at $0100, banks 2 and 3 are filled with $FF.
func newTestEngine(t *testing.T, code []byte) (*Engine, *disasm.Database) {
	t.Helper()

	img := memory.NewImage()
	rom0 := make([]byte, 0x4000)
	copy(rom0[0x100:], code)
	img.SetBank(address.ROM, 0, rom0, 0)
	img.SetBank(address.ROM, 1, []byte{0x3E, 0x01, 0xC9}, 0)
	img.SetBank(address.ROM, 2, nil, 0xFF)
	img.SetBank(address.ROM, 3, nil, 0xFF)
	img.AddBanks(address.VRAM, 1)
	img.AddBanks(address.WRAM, 2)
	img.AddBanks(address.OAM, 1)
	img.AddBanks(address.IOR, 1)
	img.AddBanks(address.HRAM, 1)

	logger := log.NewTestLogger(t)
	db := disasm.New(disasm.Dependencies{Logger: logger, Source: img})
	return New(logger, db), db
}

func TestAutoXrefBankPin(t *testing.T) {
	e, db := newTestEngine(t, []byte{0xC3, 0x00, 0x40})
	origin := address.MustParse("ROM.0:$0100")

	ins, err := db.Decode(origin)
	assert.NoError(t, err)
	assert.Equal(t, 3, ins.Length)
	assert.True(t, ins.IsJump())
	assert.Equal(t, uint16(0x4000), ins.Target.CPU)
	assert.False(t, ins.Target.Resolved)

	_, _, err = e.AutoXref(origin)
	assert.True(t, errors.Is(err, ErrUnresolved))
	assert.Empty(t, db.Xrefs())
	assert.Empty(t, db.Code())
	// the bytes are still free for data
	_, err = db.PreviewBlock(data.Simple, origin, 3, "")
	assert.NoError(t, err)

	assert.NoError(t, db.SetBank(address.MustParse("$4000"), 1, 1))

	x, added, err := e.AutoXref(origin)
	assert.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, xref.Jump, x.Kind)
	assert.Equal(t, origin, x.From)
	assert.Equal(t, address.MustParse("ROM.1:$4000"), x.To)

	_, added, err = e.AutoXref(origin)
	assert.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, db.Xrefs(), 1)
}

func TestAutoXrefKinds(t *testing.T) {
	tests := []struct {
		name string
		code []byte
		kind xref.Kind
		to   string
	}{
		{"call", []byte{0xCD, 0x50, 0x01}, xref.Call, "ROM.0:$0150"},
		{"relative jump", []byte{0x18, 0x10}, xref.Jump, "ROM.0:$0112"},
		{"rst", []byte{0xEF}, xref.Call, "ROM.0:$0028"},
		{"read", []byte{0xFA, 0x00, 0xC0}, xref.Read, "WRAM.0:$C000"},
		{"write", []byte{0xEA, 0x80, 0xFF}, xref.Write, "HRAM:$FF80"},
		{"io write", []byte{0xE0, 0x40}, xref.Write, "IOR:$FF40"},
		{"pointer load", []byte{0x21, 0x00, 0x02}, xref.Read, "ROM.0:$0200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, tt.code)

			x, added, err := e.AutoXref(address.MustParse("ROM.0:$0100"))
			assert.NoError(t, err)
			assert.True(t, added)
			assert.Equal(t, tt.kind, x.Kind)
			assert.Equal(t, address.MustParse(tt.to), x.To)
		})
	}
}

func TestAutoXrefNoTarget(t *testing.T) {
	e, db := newTestEngine(t, []byte{0x00, 0xEA, 0x00, 0x20})

	_, _, err := e.AutoXref(address.MustParse("ROM.0:$0100"))
	assert.True(t, errors.Is(err, ErrNoTarget))

	// write to an MBC register
	_, _, err = e.AutoXref(address.MustParse("ROM.0:$0101"))
	assert.True(t, errors.Is(err, ErrNoTarget))
	assert.Empty(t, db.Code())
}

func TestAutoLabel(t *testing.T) {
	e, db := newTestEngine(t, nil)
	from := address.MustParse("ROM.0:$0100")
	declare := func(kind xref.Kind, to string) address.Address {
		a := address.MustParse(to)
		_, err := db.DeclareXref(xref.Xref{Kind: kind, From: from, To: a})
		assert.NoError(t, err)
		return a
	}

	_, err := db.CreateLabel("main", address.MustParse("ROM.1:$4100"))
	assert.NoError(t, err)

	tests := []struct {
		name     string
		addr     func() address.Address
		expected string
	}{
		{"call", func() address.Address { return declare(xref.Call, "ROM.1:$4000") }, "func_01_4000"},
		{"call and jump", func() address.Address {
			declare(xref.Jump, "ROM.0:$0300")
			return declare(xref.Call, "ROM.0:$0300")
		}, "func_00_0300"},
		{"jump without scope", func() address.Address { return declare(xref.Jump, "ROM.0:$0200") }, "jump_00_0200"},
		{"jump in scope", func() address.Address { return declare(xref.Jump, "ROM.1:$4108") }, "main.jump_4108"},
		{"rom read", func() address.Address { return declare(xref.Read, "ROM.0:$0400") }, "data_00_0400"},
		{"wram write", func() address.Address { return declare(xref.Write, "WRAM.0:$C010") }, "var_wram_00_C010"},
		{"hram read", func() address.Address { return declare(xref.Read, "HRAM:$FF90") }, "var_hram_FF90"},
		{"io register", func() address.Address { return declare(xref.Write, "IOR:$FF40") }, "rLCDC"},
		{"interrupt enable", func() address.Address { return declare(xref.Write, "HRAM:$FFFF") }, "rIE"},
		{"no references", func() address.Address { return address.MustParse("ROM.0:$0500") }, "label_00_0500"},
		{"existing label", func() address.Address { return address.MustParse("ROM.1:$4100") }, "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.addr()
			name, err := e.AutoLabel(a)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, name)

			lbl, ok := db.LabelAt(a)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, lbl.Name)
		})
	}
}

func TestAutoLabelCollision(t *testing.T) {
	e, db := newTestEngine(t, nil)

	_, err := db.CreateLabel("label_00_0600", address.MustParse("ROM.0:$0700"))
	assert.NoError(t, err)
	_, err = db.CreateLabel("label_00_0600_1", address.MustParse("ROM.0:$0701"))
	assert.NoError(t, err)

	name, err := e.AutoLabel(address.MustParse("ROM.0:$0600"))
	assert.NoError(t, err)
	assert.Equal(t, "label_00_0600_2", name)

	_, err = e.AutoLabel(address.New(address.ROM, address.NoBank, 0))
	assert.True(t, errors.Is(err, address.ErrAmbiguousBank))
}

func TestSweep(t *testing.T) {
	code := []byte{
		0x00,             // $0100 nop
		0xCD, 0x00, 0x40, // $0101 call $4000, unresolved
		0x18, 0xFE, //       $0104 jr $0104
		0x00, 0x00, //       $0106 nop, nop
		0x12, 0x34, //       $0108 data block
		0x21, 0x50, 0x01, // $010A ld hl, $0150
		0xD3, //             $010D illegal
	}
	e, db := newTestEngine(t, code)
	_, err := db.CreateBlock(data.Simple, address.MustParse("ROM.0:$0108"), 2, "")
	assert.NoError(t, err)

	result, err := e.Sweep(context.Background(), address.MustParse("ROM.0:$0100"), 0x20,
		SweepOptions{Labels: true, Workers: 2})
	assert.NoError(t, err)
	assert.False(t, result.Done)
	assert.True(t, result.Stop != nil)
	assert.Equal(t, address.MustParse("ROM.0:$010D"), result.Next)
	assert.Equal(t, 6, result.Instructions)
	assert.Equal(t, 2, result.Xrefs)
	assert.Equal(t, 2, result.Labels)
	assert.Equal(t, 1, result.Unresolved)

	_, ok := db.Label("jump_00_0104")
	assert.True(t, ok)
	_, ok = db.Label("data_00_0150")
	assert.True(t, ok)
	assert.Len(t, db.Code(), 6)

	result, err = e.Sweep(context.Background(), address.MustParse("ROM.0:$0100"), 0x0D, SweepOptions{})
	assert.NoError(t, err)
	assert.True(t, result.Done)
	assert.Equal(t, 6, result.Instructions)
	assert.Equal(t, 0, result.Xrefs)
}

func TestSweepCancelled(t *testing.T) {
	e, db := newTestEngine(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Sweep(ctx, address.MustParse("ROM.0:$0100"), 0x100, SweepOptions{})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, db.Code())
}

func TestEmptyBanks(t *testing.T) {
	e, db := newTestEngine(t, []byte{0x3E})

	blocks, err := e.EmptyBanks()
	assert.NoError(t, err)
	assert.Len(t, blocks, 2)
	assert.Equal(t, address.MustParse("ROM.2:$4000"), blocks[0].Address)
	assert.Equal(t, data.Empty, blocks[0].Kind)
	assert.Equal(t, 0x4000, blocks[1].Size())

	blocks, err = e.EmptyBanks()
	assert.NoError(t, err)
	assert.Empty(t, blocks)
	assert.Len(t, db.Blocks(), 2)
}
