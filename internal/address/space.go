package address

import (
	"fmt"
	"strings"
)

// Space is one of the memory areas of the CPU address map.
type Space int

// Address spaces in CPU address order.
const (
	ROM Space = iota
	VRAM
	SRAM
	WRAM
	OAM
	IOR
	HRAM
)

// Spaces lists all address spaces in CPU address order.
var Spaces = []Space{ROM, VRAM, SRAM, WRAM, OAM, IOR, HRAM}

// layout describes the static CPU view of a space. The first fixedSize
// bytes of the view always map bank 0, the remainder is a switched window
// of bankSize bytes. A space without switched window has fixedSize == size.
type layout struct {
	name      string
	start     uint16
	size      int
	bankSize  int
	fixedSize int
}

var layouts = [...]layout{
	ROM:  {name: "ROM", start: 0x0000, size: 0x8000, bankSize: 0x4000, fixedSize: 0x4000},
	VRAM: {name: "VRAM", start: 0x8000, size: 0x2000, bankSize: 0x2000},
	SRAM: {name: "SRAM", start: 0xA000, size: 0x2000, bankSize: 0x2000},
	WRAM: {name: "WRAM", start: 0xC000, size: 0x2000, bankSize: 0x1000, fixedSize: 0x1000},
	OAM:  {name: "OAM", start: 0xFE00, size: 0xA0, bankSize: 0xA0, fixedSize: 0xA0},
	IOR:  {name: "IOR", start: 0xFF00, size: 0x80, bankSize: 0x80, fixedSize: 0x80},
	HRAM: {name: "HRAM", start: 0xFF80, size: 0x80, bankSize: 0x80, fixedSize: 0x80},
}

func (s Space) String() string {
	if !s.valid() {
		return fmt.Sprintf("Space(%d)", int(s))
	}
	return layouts[s].name
}

func (s Space) valid() bool {
	return s >= ROM && s <= HRAM
}

// Start returns the first CPU address of the space.
func (s Space) Start() uint16 {
	return layouts[s].start
}

// End returns the last CPU address of the space.
func (s Space) End() uint16 {
	l := layouts[s]
	return l.start + uint16(l.size-1)
}

// BankSize returns the size of one bank of the space.
func (s Space) BankSize() int {
	return layouts[s].bankSize
}

// Banked returns whether the space has a switched bank window.
func (s Space) Banked() bool {
	l := layouts[s]
	return l.fixedSize < l.size
}

// HasFixed returns whether the low part of the space always maps bank 0.
func (s Space) HasFixed() bool {
	return layouts[s].fixedSize > 0
}

// IsRAM returns whether the space is writable memory.
func (s Space) IsRAM() bool {
	switch s {
	case VRAM, SRAM, WRAM, OAM, HRAM:
		return true
	default:
		return false
	}
}

// inFixed returns whether the CPU address lies in the fixed part of the space.
func (s Space) inFixed(cpu uint16) bool {
	l := layouts[s]
	return int(cpu-l.start) < l.fixedSize
}

// ParseSpace returns the space for the given case insensitive name.
func ParseSpace(name string) (Space, error) {
	for _, s := range Spaces {
		if strings.EqualFold(layouts[s].name, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown address space '%s'", ErrUnknownAddress, name)
}

// SpaceOf returns the space that the CPU address belongs to. Echo RAM and
// the unusable area after OAM belong to no space.
func SpaceOf(cpu uint16) (Space, bool) {
	for _, s := range Spaces {
		l := layouts[s]
		if cpu >= l.start && int(cpu-l.start) < l.size {
			return s, true
		}
	}
	return 0, false
}
