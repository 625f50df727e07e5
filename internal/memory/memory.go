// Package memory provides banked byte sources for the disassembler.
package memory

import (
	"fmt"

	"github.com/retroenv/gbdisasm/internal/address"
)

// Source provides read access to the bytes of all banks of all spaces.
type Source interface {
	ByteAt(a address.Address) (byte, error)
	BankCount(space address.Space) int
}

// Image is an in memory Source that holds one byte slice per bank.
type Image struct {
	banks map[address.Space][][]byte
}

// NewImage returns an empty image.
func NewImage() *Image {
	return &Image{banks: make(map[address.Space][][]byte)}
}

// SetBank sets the content of a bank. The data is padded or cut to the bank
// size of the space, padding uses the fill byte.
func (img *Image) SetBank(space address.Space, bank int, data []byte, fill byte) {
	buf := make([]byte, space.BankSize())
	n := copy(buf, data)
	for i := n; i < len(buf); i++ {
		buf[i] = fill
	}

	banks := img.banks[space]
	for len(banks) <= bank {
		banks = append(banks, nil)
	}
	banks[bank] = buf
	img.banks[space] = banks
}

// AddBanks appends count zero filled banks to the space.
func (img *Image) AddBanks(space address.Space, count int) {
	for range count {
		img.SetBank(space, len(img.banks[space]), nil, 0)
	}
}

// ByteAt returns the byte at the address.
func (img *Image) ByteAt(a address.Address) (byte, error) {
	data, err := img.bank(a)
	if err != nil {
		return 0, err
	}
	if int(a.Offset) >= len(data) {
		return 0, fmt.Errorf("%w: %s", address.ErrUnknownAddress, a)
	}
	return data[a.Offset], nil
}

// BankCount returns the number of banks of the space.
func (img *Image) BankCount(space address.Space) int {
	return len(img.banks[space])
}

// Map returns an address map using the bank counts of the image.
func (img *Image) Map() *address.Map {
	return NewMap(img)
}

func (img *Image) bank(a address.Address) ([]byte, error) {
	if !a.Resolved() {
		return nil, fmt.Errorf("reading %s: %w", a, address.ErrAmbiguousBank)
	}
	banks := img.banks[a.Space]
	if a.Bank < 0 || a.Bank >= len(banks) || banks[a.Bank] == nil {
		return nil, fmt.Errorf("%w: %s bank %d does not exist", address.ErrUnknownAddress, a.Space, a.Bank)
	}
	return banks[a.Bank], nil
}

// NewMap returns an address map using the bank counts of the source.
func NewMap(src Source) *address.Map {
	counts := make(map[address.Space]int, len(address.Spaces))
	for _, space := range address.Spaces {
		counts[space] = src.BankCount(space)
	}
	return address.NewMap(counts)
}

// Read returns up to n bytes starting at the address. Fewer bytes are
// returned if the end of the bank window is reached first.
func Read(src Source, a address.Address, n int) ([]byte, error) {
	n = min(n, a.Space.BankSize()-int(a.Offset))
	buf := make([]byte, 0, max(n, 0))
	for i := range n {
		b, err := src.ByteAt(address.New(a.Space, a.Bank, a.Offset+uint16(i)))
		if err != nil {
			return nil, err
		}
		buf = append(buf, b)
	}
	return buf, nil
}
