package overrides

import (
	"errors"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func TestStoreOriginBank(t *testing.T) {
	s := New()
	origin := address.New(address.ROM, 0, 0x0100)
	assert.NoError(t, s.SetBank(origin, 3, 2))

	bank, ok := s.OriginBank(address.New(address.ROM, 0, 0x0102))
	assert.True(t, ok)
	assert.Equal(t, 2, bank)

	_, ok = s.OriginBank(address.New(address.ROM, 0, 0x0103))
	assert.False(t, ok)

	_, ok = s.TargetBank(address.New(address.ROM, address.NoBank, 0))
	assert.False(t, ok)
}

func TestStoreTargetBank(t *testing.T) {
	s := New()
	target := address.New(address.ROM, address.NoBank, 0)
	assert.NoError(t, s.SetBank(target, 0x100, 1))

	bank, ok := s.TargetBank(address.New(address.ROM, address.NoBank, 0x00FF))
	assert.True(t, ok)
	assert.Equal(t, 1, bank)

	_, ok = s.TargetBank(address.New(address.ROM, address.NoBank, 0x0100))
	assert.False(t, ok)

	_, ok = s.OriginBank(address.New(address.ROM, 1, 0))
	assert.False(t, ok)
}

func TestStoreConflicts(t *testing.T) {
	s := New()
	start := address.New(address.ROM, 0, 0x0200)
	assert.NoError(t, s.SetBank(start, 0x10, 1))

	t.Run("same range replaces", func(t *testing.T) {
		assert.NoError(t, s.SetBank(start, 0x10, 2))
		bank, ok := s.OriginBank(start)
		assert.True(t, ok)
		assert.Equal(t, 2, bank)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("overlap with different bank", func(t *testing.T) {
		err := s.SetBank(address.New(address.ROM, 0, 0x0208), 0x10, 3)
		assert.True(t, errors.Is(err, ErrConflict))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("overlap with same bank", func(t *testing.T) {
		assert.NoError(t, s.SetBank(address.New(address.ROM, 0, 0x0208), 0x10, 2))
		assert.Equal(t, 2, s.Len())
	})

	t.Run("scalar does not conflict", func(t *testing.T) {
		assert.NoError(t, s.SetScalar(start, 1))
		assert.True(t, s.Scalar(start))
		assert.Len(t, s.At(start), 2)
	})
}

func TestStoreValidation(t *testing.T) {
	s := New()
	assert.Error(t, s.SetBank(address.New(address.ROM, 0, 0), 0, 1))
	assert.Error(t, s.SetBank(address.New(address.ROM, 0, 0), 1, -1))

	err := s.SetBank(address.New(address.ROM, 1, 0x3FFF), 2, 1)
	assert.True(t, errors.Is(err, address.ErrUnknownAddress))

	err = s.SetScalar(address.New(address.ROM, address.NoBank, 0), 1)
	assert.True(t, errors.Is(err, address.ErrAmbiguousBank))
	assert.Equal(t, 0, s.Len())
}

func TestStoreClear(t *testing.T) {
	s := New()
	start := address.New(address.ROM, 0, 0x0300)
	assert.NoError(t, s.SetBank(start, 1, 1))
	assert.NoError(t, s.SetScalar(start, 1))
	assert.NoError(t, s.SetScalar(address.New(address.ROM, 0, 0x0301), 1))

	assert.Equal(t, 2, s.Clear(start))
	assert.Equal(t, 0, s.Clear(start))
	entries := s.Entries()
	assert.Len(t, entries, 1)
	assert.Equal(t, uint16(0x0301), entries[0].Start.Offset)
}
