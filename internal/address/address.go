// Package address implements the banked memory model: address spaces, bank
// windows, resolution of CPU addresses to banked addresses and the textual
// address grammar.
package address

import (
	"cmp"
	"errors"
	"fmt"
)

// NoBank marks the bank of an address as unresolved.
const NoBank = -1

var (
	// ErrAmbiguousBank is returned when an address lies in a switched bank
	// window and no bank can be determined.
	ErrAmbiguousBank = errors.New("ambiguous bank")
	// ErrUnknownAddress is returned for addresses that are not mapped, out of
	// range for their space or malformed.
	ErrUnknownAddress = errors.New("unknown address")
)

// Address is a location in a specific bank of an address space. Offset is
// relative to the start of the bank window the bank is mapped to.
type Address struct {
	Space  Space
	Bank   int
	Offset uint16
}

// New returns a new address.
func New(space Space, bank int, offset uint16) Address {
	return Address{Space: space, Bank: bank, Offset: offset}
}

// Resolved returns whether the bank of the address is known.
func (a Address) Resolved() bool {
	return a.Bank != NoBank
}

// CPU returns the 16-bit address the CPU uses to access the address.
func (a Address) CPU() uint16 {
	l := layouts[a.Space]
	if !a.Space.Banked() || (a.Bank == 0 && l.fixedSize > 0) {
		return l.start + a.Offset
	}
	return l.start + uint16(l.fixedSize) + a.Offset
}

// Add returns the address n bytes after a. The second return value is false
// if the result leaves the bank window of a.
func (a Address) Add(n int) (Address, bool) {
	off := int(a.Offset) + n
	if off < 0 || off >= a.Space.BankSize() {
		return a, false
	}
	a.Offset = uint16(off)
	return a, true
}

// Compare orders addresses by space, bank and offset. The order is only
// meant for display.
func (a Address) Compare(b Address) int {
	if c := cmp.Compare(a.Space, b.Space); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Bank, b.Bank); c != 0 {
		return c
	}
	return cmp.Compare(a.Offset, b.Offset)
}

// SameBank returns whether both addresses are in the same bank of the same space.
func (a Address) SameBank(b Address) bool {
	return a.Space == b.Space && a.Bank == b.Bank
}

// String returns the fully qualified text form of the address, for example
// ROM.1:$4000 or HRAM:$FF80.
func (a Address) String() string {
	switch {
	case !a.Space.valid():
		return fmt.Sprintf("%s:$%04X", a.Space, a.Offset)
	case !a.Space.Banked():
		return fmt.Sprintf("%s:$%04X", a.Space, a.CPU())
	case a.Bank == NoBank:
		return fmt.Sprintf("%s.X:$%04X", a.Space, a.CPU())
	default:
		return fmt.Sprintf("%s.%X:$%04X", a.Space, a.Bank, a.CPU())
	}
}

// check validates the address independent of any bank counts.
func (a Address) check() error {
	if !a.Space.valid() {
		return fmt.Errorf("%w: invalid address space %d", ErrUnknownAddress, int(a.Space))
	}
	if int(a.Offset) >= a.Space.BankSize() {
		return fmt.Errorf("%w: offset $%04X exceeds %s bank size", ErrUnknownAddress, a.Offset, a.Space)
	}
	if a.Bank == NoBank {
		return fmt.Errorf("%w: %s", ErrAmbiguousBank, a)
	}
	if a.Bank < 0 || (!a.Space.Banked() && a.Bank != 0) {
		return fmt.Errorf("%w: invalid bank %d for %s", ErrUnknownAddress, a.Bank, a.Space)
	}
	return nil
}
