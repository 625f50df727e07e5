// Package cartridge parses Game Boy ROM images and exposes their banks.
package cartridge

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/memory"
)

// Header locations.
const (
	headerTitle          = 0x134
	headerCGBFlag        = 0x143
	headerType           = 0x147
	headerROMSize        = 0x148
	headerRAMSize        = 0x149
	headerChecksum       = 0x14D
	headerGlobalChecksum = 0x14E
	headerEnd            = 0x150
)

// BankSize is the size of a ROM bank.
const BankSize = 0x4000

var (
	// ErrInvalidROM is returned when the data is too small to be a ROM.
	ErrInvalidROM = errors.New("invalid rom")
	// ErrSaveSize is returned when a save file does not match the RAM size.
	ErrSaveSize = errors.New("save size mismatch")
)

// Header contains the parsed cartridge header.
type Header struct {
	Title          string
	CGB            bool
	Type           byte
	ROMSize        byte
	RAMSize        byte
	Checksum       byte
	GlobalChecksum uint16
}

// Cartridge is a loaded ROM image.
type Cartridge struct {
	Header   Header
	ROMBanks int
	RAMBanks int
	CRC32    uint32

	rom []byte
}

// ramBanks maps the header RAM size code to the number of 8 KiB banks.
var ramBanks = map[byte]int{
	0: 0,
	1: 1,
	2: 1,
	3: 4,
	4: 16,
	5: 8,
}

var typeNames = map[byte]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}

// Load parses the ROM data. The last bank is padded with $FF if the data is
// not a multiple of the bank size.
func Load(data []byte) (*Cartridge, error) {
	if len(data) < headerEnd {
		return nil, fmt.Errorf("%w: size %d is smaller than the header", ErrInvalidROM, len(data))
	}

	c := &Cartridge{
		Header: parseHeader(data),
		CRC32:  crc32.ChecksumIEEE(data),
	}

	c.ROMBanks = max((len(data)+BankSize-1)/BankSize, 2)
	c.rom = make([]byte, c.ROMBanks*BankSize)
	n := copy(c.rom, data)
	for i := n; i < len(c.rom); i++ {
		c.rom[i] = 0xFF
	}

	c.RAMBanks = ramBanks[c.Header.RAMSize]
	return c, nil
}

func parseHeader(data []byte) Header {
	h := Header{
		CGB:            data[headerCGBFlag]&0x80 != 0,
		Type:           data[headerType],
		ROMSize:        data[headerROMSize],
		RAMSize:        data[headerRAMSize],
		Checksum:       data[headerChecksum],
		GlobalChecksum: binary.BigEndian.Uint16(data[headerGlobalChecksum:]),
	}

	titleEnd := headerCGBFlag + 1
	if h.CGB {
		titleEnd = headerCGBFlag
	}
	title := data[headerTitle:titleEnd]
	if i := strings.IndexByte(string(title), 0); i >= 0 {
		title = title[:i]
	}
	h.Title = strings.TrimSpace(string(title))
	return h
}

// TypeName returns the name of the cartridge type.
func (h Header) TypeName() string {
	if name, ok := typeNames[h.Type]; ok {
		return name
	}
	return fmt.Sprintf("unknown ($%02X)", h.Type)
}

// VerifyHeaderChecksum returns whether the header checksum matches the
// header bytes.
func (c *Cartridge) VerifyHeaderChecksum() bool {
	var sum byte
	for _, b := range c.rom[headerTitle:headerChecksum] {
		sum = sum - b - 1
	}
	return sum == c.Header.Checksum
}

// Image returns a memory image containing the ROM banks and zero filled RAM
// banks sized for the hardware the cartridge targets.
func (c *Cartridge) Image() *memory.Image {
	img := memory.NewImage()
	for bank := range c.ROMBanks {
		img.SetBank(address.ROM, bank, c.rom[bank*BankSize:(bank+1)*BankSize], 0xFF)
	}

	vram, wram := 1, 2
	if c.Header.CGB {
		vram, wram = 2, 8
	}
	img.AddBanks(address.VRAM, vram)
	img.AddBanks(address.SRAM, c.RAMBanks)
	img.AddBanks(address.WRAM, wram)
	img.AddBanks(address.OAM, 1)
	img.AddBanks(address.IOR, 1)
	img.AddBanks(address.HRAM, 1)
	return img
}

// LoadSave copies the content of a battery save file into the SRAM banks of
// the image.
func (c *Cartridge) LoadSave(img *memory.Image, data []byte) error {
	size := c.RAMBanks * address.SRAM.BankSize()
	if len(data) < size {
		return fmt.Errorf("%w: expected %d bytes but got %d", ErrSaveSize, size, len(data))
	}
	for bank := range c.RAMBanks {
		offset := bank * address.SRAM.BankSize()
		img.SetBank(address.SRAM, bank, data[offset:offset+address.SRAM.BankSize()], 0)
	}
	return nil
}

// ROM returns the padded ROM data.
func (c *Cartridge) ROM() []byte {
	return c.rom
}
