package symbols

import (
	"errors"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func rom(bank int, cpu uint16) address.Address {
	if bank == 0 {
		return address.New(address.ROM, 0, cpu)
	}
	return address.New(address.ROM, bank, cpu-0x4000)
}

//nolint:funlen // test functions can be long
func TestTableCreate(t *testing.T) {
	t.Run("global and local", func(t *testing.T) {
		tbl := New()
		_, err := tbl.Create("main", rom(0, 0x0150))
		assert.NoError(t, err)

		lbl, err := tbl.Create(".loop", rom(0, 0x0160))
		assert.NoError(t, err)
		assert.Equal(t, "main.loop", lbl.Name)
		assert.True(t, lbl.IsLocal())
		assert.Equal(t, "main", lbl.Global())
		assert.Equal(t, "loop", lbl.Local())

		got, ok := tbl.At(rom(0, 0x0160))
		assert.True(t, ok)
		assert.Equal(t, "main.loop", got.Name)
	})

	t.Run("same local name in different scopes", func(t *testing.T) {
		tbl := New()
		_, err := tbl.Create("first", rom(0, 0x0150))
		assert.NoError(t, err)
		_, err = tbl.Create("first.loop", rom(0, 0x0152))
		assert.NoError(t, err)
		_, err = tbl.Create("second", rom(0, 0x0200))
		assert.NoError(t, err)
		_, err = tbl.Create(".loop", rom(0, 0x0202))
		assert.NoError(t, err)
		assert.Equal(t, 4, tbl.Len())
	})

	t.Run("duplicates", func(t *testing.T) {
		tbl := New()
		_, err := tbl.Create("main", rom(0, 0x0150))
		assert.NoError(t, err)
		_, err = tbl.Create("main.loop", rom(0, 0x0151))
		assert.NoError(t, err)

		_, err = tbl.Create("main", rom(0, 0x0200))
		assert.True(t, errors.Is(err, ErrDuplicateLabel))
		_, err = tbl.Create("other", rom(0, 0x0150))
		assert.True(t, errors.Is(err, ErrDuplicateLabel))
		_, err = tbl.Create(".loop", rom(0, 0x0152))
		assert.True(t, errors.Is(err, ErrDuplicateLabel))
		assert.Equal(t, 2, tbl.Len())
	})

	t.Run("invalid names", func(t *testing.T) {
		tbl := New()
		for _, name := range []string{"", "1abc", "a.b.c", "a..b", "a b", "main.", "-x"} {
			_, err := tbl.Create(name, rom(0, 0x0150))
			assert.True(t, errors.Is(err, ErrInvalidName), name)
		}
		_, err := tbl.Create(".loop", rom(0, 0x0150))
		assert.True(t, errors.Is(err, ErrInvalidName))
	})

	t.Run("local scope", func(t *testing.T) {
		tbl := New()
		_, err := tbl.Create("bank1", rom(1, 0x4100))
		assert.NoError(t, err)

		_, err = tbl.Create("missing.loop", rom(1, 0x4200))
		assert.True(t, errors.Is(err, ErrUnknownLabel))
		_, err = tbl.Create("bank1.before", rom(1, 0x4000))
		assert.True(t, errors.Is(err, ErrInvalidName))
		_, err = tbl.Create("bank1.other", rom(2, 0x4200))
		assert.True(t, errors.Is(err, ErrInvalidName))
	})

	t.Run("unresolved address", func(t *testing.T) {
		tbl := New()
		_, err := tbl.Create("main", address.New(address.ROM, address.NoBank, 0))
		assert.True(t, errors.Is(err, address.ErrAmbiguousBank))
	})
}

func TestTableDelete(t *testing.T) {
	tbl := New()
	_, _ = tbl.Create("main", rom(0, 0x0150))
	_, _ = tbl.Create("main.loop", rom(0, 0x0151))
	_, _ = tbl.Create("main.done", rom(0, 0x0158))
	_, _ = tbl.Create("other", rom(0, 0x0200))

	deleted, err := tbl.Delete("main")
	assert.NoError(t, err)
	assert.Len(t, deleted, 3)
	assert.Equal(t, "main", deleted[0].Name)
	assert.Equal(t, 1, tbl.Len())

	_, ok := tbl.At(rom(0, 0x0151))
	assert.False(t, ok)

	_, err = tbl.Delete("main")
	assert.True(t, errors.Is(err, ErrUnknownLabel))

	_, err = tbl.Create("main.loop", rom(0, 0x0151))
	assert.True(t, errors.Is(err, ErrUnknownLabel))
}

//nolint:funlen // test functions can be long
func TestTableRename(t *testing.T) {
	setup := func() *Table {
		tbl := New()
		_, _ = tbl.Create("main", rom(0, 0x0150))
		_, _ = tbl.Create("main.loop", rom(0, 0x0151))
		_, _ = tbl.Create("other", rom(0, 0x0200))
		return tbl
	}

	t.Run("global moves locals", func(t *testing.T) {
		tbl := setup()
		lbl, err := tbl.Rename("main", "start")
		assert.NoError(t, err)
		assert.Equal(t, rom(0, 0x0150), lbl.Address)

		_, ok := tbl.Get("main.loop")
		assert.False(t, ok)
		local, ok := tbl.Get("start.loop")
		assert.True(t, ok)
		assert.Equal(t, rom(0, 0x0151), local.Address)
		assert.Len(t, tbl.Locals("start"), 1)
	})

	t.Run("local shorthand", func(t *testing.T) {
		tbl := setup()
		lbl, err := tbl.Rename("main.loop", ".again")
		assert.NoError(t, err)
		assert.Equal(t, "main.again", lbl.Name)
	})

	t.Run("collision leaves state unchanged", func(t *testing.T) {
		tbl := setup()
		_, err := tbl.Rename("main", "other")
		assert.True(t, errors.Is(err, ErrDuplicateLabel))
		_, ok := tbl.Get("main.loop")
		assert.True(t, ok)
		assert.Equal(t, 3, tbl.Len())
	})

	t.Run("global with locals can not become local", func(t *testing.T) {
		tbl := setup()
		_, err := tbl.Create("other.x", rom(0, 0x0201))
		assert.NoError(t, err)
		_, err = tbl.Rename("other", "main.other")
		assert.True(t, errors.Is(err, ErrInvalidName))
	})

	t.Run("invalid and unknown", func(t *testing.T) {
		tbl := setup()
		_, err := tbl.Rename("missing", "x")
		assert.True(t, errors.Is(err, ErrUnknownLabel))
		_, err = tbl.Rename("main", "9x")
		assert.True(t, errors.Is(err, ErrInvalidName))
	})

	t.Run("global without locals becomes local", func(t *testing.T) {
		tbl := setup()
		lbl, err := tbl.Rename("other", "main.other")
		assert.NoError(t, err)
		assert.True(t, lbl.IsLocal())
		assert.Len(t, tbl.Locals("main"), 2)
	})

	t.Run("same name", func(t *testing.T) {
		tbl := setup()
		_, err := tbl.Rename("main", "main")
		assert.NoError(t, err)
	})
}

func TestTableScope(t *testing.T) {
	tbl := New()
	_, _ = tbl.Create("a", rom(0, 0x0100))
	_, _ = tbl.Create("b", rom(0, 0x0200))
	_, _ = tbl.Create("b.local", rom(0, 0x0210))

	scope, ok := tbl.Scope(rom(0, 0x0250))
	assert.True(t, ok)
	assert.Equal(t, "b", scope.Name)

	scope, ok = tbl.Scope(rom(0, 0x01FF))
	assert.True(t, ok)
	assert.Equal(t, "a", scope.Name)

	_, ok = tbl.Scope(rom(0, 0x0050))
	assert.False(t, ok)

	_, ok = tbl.Scope(rom(1, 0x4300))
	assert.False(t, ok)

	labels := tbl.Labels()
	assert.Len(t, labels, 3)
	assert.Equal(t, "b.local", labels[2].Name)
}
