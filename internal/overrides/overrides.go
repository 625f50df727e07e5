// Package overrides stores user supplied context for address resolution:
// pinned banks and scalar hints.
package overrides

import (
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
)

// ErrConflict is returned when an entry overlaps an entry that pins a different bank.
var ErrConflict = errors.New("conflicting context entry")

// Kind is the kind of a context entry.
type Kind int

// Context entry kinds.
const (
	Bank Kind = iota + 1
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Bank:
		return "bank"
	case Scalar:
		return "scalar"
	default:
		return "unknown"
	}
}

// Entry applies a context to a range of addresses.
//
// A resolved start address pins the operands of instructions inside the
// range. A bank entry with an unresolved start address pins every reference
// whose target lies inside the CPU range.
type Entry struct {
	Start  address.Address
	Length int
	Kind   Kind
	Bank   int
}

// Targets returns whether the entry applies to reference targets instead of
// instruction origins.
func (e Entry) Targets() bool {
	return !e.Start.Resolved()
}

// Contains returns whether the address lies inside the entry range.
func (e Entry) Contains(a address.Address) bool {
	if !e.Start.SameBank(a) {
		return false
	}
	return a.Offset >= e.Start.Offset && int(a.Offset) < int(e.Start.Offset)+e.Length
}

func (e Entry) overlaps(o Entry) bool {
	if !e.Start.SameBank(o.Start) {
		return false
	}
	return int(e.Start.Offset) < int(o.Start.Offset)+o.Length &&
		int(o.Start.Offset) < int(e.Start.Offset)+e.Length
}

// Store holds all context entries.
type Store struct {
	entries []Entry
}

// New returns a new empty store.
func New() *Store {
	return &Store{}
}

// SetBank pins the bank for the range starting at start.
func (s *Store) SetBank(start address.Address, length, bank int) error {
	if bank < 0 {
		return fmt.Errorf("invalid bank %d", bank)
	}
	e := Entry{Start: start, Length: length, Kind: Bank, Bank: bank}
	if err := checkRange(e); err != nil {
		return err
	}
	for _, existing := range s.entries {
		if existing.Kind != Bank || sameRange(existing, e) {
			continue
		}
		if existing.overlaps(e) && existing.Bank != bank {
			return fmt.Errorf("%w: %s already pins bank %d", ErrConflict, existing.Start, existing.Bank)
		}
	}
	s.put(e)
	return nil
}

// SetScalar marks the operands of instructions in the range as plain values.
func (s *Store) SetScalar(start address.Address, length int) error {
	if !start.Resolved() {
		return fmt.Errorf("%w: scalar hint needs a banked address", address.ErrAmbiguousBank)
	}
	e := Entry{Start: start, Length: length, Kind: Scalar}
	if err := checkRange(e); err != nil {
		return err
	}
	s.put(e)
	return nil
}

// Clear removes all entries starting at the address and returns the number
// of removed entries.
func (s *Store) Clear(start address.Address) int {
	before := len(s.entries)
	s.entries = slices.DeleteFunc(s.entries, func(e Entry) bool {
		return e.Start == start
	})
	return before - len(s.entries)
}

// OriginBank returns the bank pinned for operands of the instruction at origin.
func (s *Store) OriginBank(origin address.Address) (int, bool) {
	for _, e := range s.entries {
		if e.Kind == Bank && !e.Targets() && e.Contains(origin) {
			return e.Bank, true
		}
	}
	return 0, false
}

// TargetBank returns the bank pinned for references to the unresolved target.
func (s *Store) TargetBank(target address.Address) (int, bool) {
	for _, e := range s.entries {
		if e.Kind == Bank && e.Targets() && e.Contains(target) {
			return e.Bank, true
		}
	}
	return 0, false
}

// Scalar returns whether the operands of the instruction at origin are values.
func (s *Store) Scalar(origin address.Address) bool {
	for _, e := range s.entries {
		if e.Kind == Scalar && e.Contains(origin) {
			return true
		}
	}
	return false
}

// At returns all entries that contain the address.
func (s *Store) At(a address.Address) []Entry {
	var result []Entry
	for _, e := range s.entries {
		if e.Contains(a) {
			result = append(result, e)
		}
	}
	return result
}

// Entries returns all entries sorted by start address and kind.
func (s *Store) Entries() []Entry {
	return slices.Clone(s.entries)
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// put replaces an entry with identical range and kind or inserts it sorted.
func (s *Store) put(e Entry) {
	for i, existing := range s.entries {
		if existing.Kind == e.Kind && sameRange(existing, e) {
			s.entries[i] = e
			return
		}
	}
	i, _ := slices.BinarySearchFunc(s.entries, e, compare)
	s.entries = slices.Insert(s.entries, i, e)
}

func compare(a, b Entry) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return int(a.Kind) - int(b.Kind)
}

func sameRange(a, b Entry) bool {
	return a.Start == b.Start && a.Length == b.Length
}

func checkRange(e Entry) error {
	if e.Length < 1 {
		return fmt.Errorf("invalid context length %d", e.Length)
	}
	if int(e.Start.Offset)+e.Length > e.Start.Space.BankSize() {
		return fmt.Errorf("%w: context range of %s exceeds its bank", address.ErrUnknownAddress, e.Start)
	}
	return nil
}
