// Package loader handles cartridge file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/gbdisasm/internal/cartridge"
	"github.com/retroenv/gbdisasm/internal/memory"
	"github.com/retroenv/gbdisasm/internal/options"
)

// Loader handles loading cartridge files from disk.
type Loader struct{}

// New creates a new cartridge loader.
func New() *Loader {
	return &Loader{}
}

// Load loads and parses the ROM file and the optional battery save file.
// Returns the cartridge and the memory image of all its address spaces.
func (l *Loader) Load(opts options.Program) (*cartridge.Cartridge, *memory.Image, error) {
	rom, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}

	var save []byte
	if opts.Save != "" {
		save, err = os.ReadFile(opts.Save)
		if err != nil {
			return nil, nil, fmt.Errorf("reading save file %s: %w", opts.Save, err)
		}
	}

	return l.LoadFromBytes(rom, save)
}

// LoadFromBytes parses a ROM and an optional battery save from memory.
func (l *Loader) LoadFromBytes(rom, save []byte) (*cartridge.Cartridge, *memory.Image, error) {
	cart, err := cartridge.Load(rom)
	if err != nil {
		return nil, nil, fmt.Errorf("loading cartridge: %w", err)
	}

	img := cart.Image()
	if save != nil {
		if err := cart.LoadSave(img, save); err != nil {
			return nil, nil, fmt.Errorf("loading save: %w", err)
		}
	}
	return cart, img, nil
}
