package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/cartridge"
	"github.com/retroenv/gbdisasm/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoad(t *testing.T) {
	t.Run("load ROM file", func(t *testing.T) {
		tmpFile := createTempFile(t, "test.gb", buildMinimalROM(0))

		loader := New()
		opts := options.Program{}
		opts.Input = tmpFile

		cart, img, err := loader.Load(opts)
		assert.NoError(t, err)
		assert.Equal(t, 2, cart.ROMBanks)
		assert.Equal(t, 2, img.BankCount(address.ROM))

		b, err := img.ByteAt(address.MustParse("ROM.0:$0100"))
		assert.NoError(t, err)
		assert.Equal(t, byte(0xC3), b)
	})

	t.Run("load ROM with save file", func(t *testing.T) {
		tmpFile := createTempFile(t, "test.gb", buildMinimalROM(2))
		save := make([]byte, address.SRAM.BankSize())
		save[0x10] = 0x42
		tmpSave := createTempFile(t, "test.sav", save)

		loader := New()
		opts := options.Program{}
		opts.Input = tmpFile
		opts.Save = tmpSave

		_, img, err := loader.Load(opts)
		assert.NoError(t, err)
		b, err := img.ByteAt(address.MustParse("SRAM.0:$A010"))
		assert.NoError(t, err)
		assert.Equal(t, byte(0x42), b)
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		loader := New()
		opts := options.Program{}
		opts.Input = "/nonexistent/file.gb"

		_, _, err := loader.Load(opts)
		assert.Error(t, err)
	})

	t.Run("error on non-existent save file", func(t *testing.T) {
		tmpFile := createTempFile(t, "test.gb", buildMinimalROM(2))

		loader := New()
		opts := options.Program{}
		opts.Input = tmpFile
		opts.Save = "/nonexistent/file.sav"

		_, _, err := loader.Load(opts)
		assert.Error(t, err)
	})
}

func TestLoadFromBytes(t *testing.T) {
	t.Run("error on too small ROM", func(t *testing.T) {
		loader := New()
		_, _, err := loader.LoadFromBytes(make([]byte, 0x100), nil)
		assert.True(t, errors.Is(err, cartridge.ErrInvalidROM))
	})

	t.Run("error on short save", func(t *testing.T) {
		loader := New()
		_, _, err := loader.LoadFromBytes(buildMinimalROM(2), []byte{0x01})
		assert.True(t, errors.Is(err, cartridge.ErrSaveSize))
	})
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

// buildMinimalROM creates a 32KB ROM with a jump at the entry point and the
// given RAM size code in the header.
func buildMinimalROM(ramSize byte) []byte {
	const (
		romSize       = 2 * cartridge.BankSize
		headerRAMSize = 0x149
	)
	data := make([]byte, romSize)
	copy(data[0x100:], []byte{0xC3, 0x50, 0x01})
	data[headerRAMSize] = ramSize
	return data
}
