package memory

import (
	"errors"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/retrogolib/assert"
)

func TestImage(t *testing.T) {
	img := NewImage()
	img.SetBank(address.ROM, 0, []byte{0x00, 0xC3}, 0xFF)
	img.SetBank(address.ROM, 2, []byte{0x11}, 0xFF)
	img.AddBanks(address.VRAM, 2)

	assert.Equal(t, 3, img.BankCount(address.ROM))
	assert.Equal(t, 2, img.BankCount(address.VRAM))
	assert.Equal(t, 0, img.BankCount(address.SRAM))

	b, err := img.ByteAt(address.New(address.ROM, 0, 1))
	assert.NoError(t, err)
	assert.Equal(t, byte(0xC3), b)

	b, err = img.ByteAt(address.New(address.ROM, 0, 0x3FFF))
	assert.NoError(t, err)
	assert.Equal(t, byte(0xFF), b)

	_, err = img.ByteAt(address.New(address.ROM, 1, 0))
	assert.True(t, errors.Is(err, address.ErrUnknownAddress))

	_, err = img.ByteAt(address.New(address.ROM, address.NoBank, 0))
	assert.True(t, errors.Is(err, address.ErrAmbiguousBank))

	m := img.Map()
	assert.Equal(t, 3, m.BankCount(address.ROM))
}

func TestRead(t *testing.T) {
	img := NewImage()
	img.SetBank(address.HRAM, 0, []byte{1, 2, 3}, 0)

	buf, err := Read(img, address.New(address.HRAM, 0, 1), 2)
	assert.NoError(t, err)
	assert.Len(t, buf, 2)
	assert.Equal(t, byte(2), buf[0])

	buf, err = Read(img, address.New(address.HRAM, 0, 0x7E), 10)
	assert.NoError(t, err)
	assert.Len(t, buf, 2)
}
