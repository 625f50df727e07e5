package address

import (
	"errors"
	"fmt"
)

// Map holds the bank counts of a cartridge and resolves CPU addresses to
// banked addresses.
type Map struct {
	banks [len(layouts)]int
}

// NewMap returns a map using the given bank counts. Spaces not contained in
// counts have a single bank.
func NewMap(counts map[Space]int) *Map {
	m := &Map{}
	for _, s := range Spaces {
		m.banks[s] = 1
		if n, ok := counts[s]; ok {
			m.banks[s] = n
		}
	}
	return m
}

// BankCount returns the number of banks of the space.
func (m *Map) BankCount(s Space) int {
	return m.banks[s]
}

// switched returns the first bank and the number of banks that can be mapped
// into the switched window of the space.
func (m *Map) switched(s Space) (int, int) {
	if s.HasFixed() {
		return 1, max(m.banks[s]-1, 0)
	}
	return 0, m.banks[s]
}

// Resolve returns the address that the CPU address refers to when the given
// bank is mapped. Addresses in fixed parts always resolve to bank 0. In a
// switched window bank can be NoBank if only a single bank can be mapped.
func (m *Map) Resolve(cpu uint16, bank int) (Address, error) {
	space, ok := SpaceOf(cpu)
	if !ok {
		return Address{}, fmt.Errorf("%w: $%04X is not mapped", ErrUnknownAddress, cpu)
	}

	l := layouts[space]
	rel := cpu - l.start
	if int(rel) < l.fixedSize {
		return Address{Space: space, Bank: 0, Offset: rel}, nil
	}

	a := Address{Space: space, Bank: bank, Offset: rel - uint16(l.fixedSize)}
	first, count := m.switched(space)
	if bank == NoBank {
		switch count {
		case 0:
			return Address{}, fmt.Errorf("%w: %s has no switchable bank", ErrUnknownAddress, space)
		case 1:
			a.Bank = first
			return a, nil
		default:
			return a, fmt.Errorf("%w: $%04X", ErrAmbiguousBank, cpu)
		}
	}

	if bank < first || bank >= first+count {
		return Address{}, fmt.Errorf("%w: bank %d is not mappable to $%04X", ErrUnknownAddress, bank, cpu)
	}
	return a, nil
}

// Validate checks that the address is resolved and exists on the cartridge.
func (m *Map) Validate(a Address) error {
	if err := a.check(); err != nil {
		return err
	}
	if !a.Space.Banked() {
		return nil
	}

	if a.Space.HasFixed() && a.Bank == 0 {
		return nil
	}
	first, count := m.switched(a.Space)
	if a.Bank < first || a.Bank >= first+count {
		return fmt.Errorf("%w: %s bank %d does not exist", ErrUnknownAddress, a.Space, a.Bank)
	}
	return nil
}

// Complete fills in the bank of an unresolved address if only a single bank
// can be mapped at its location.
func (m *Map) Complete(a Address) (Address, error) {
	if a.Resolved() {
		return a, m.Validate(a)
	}
	return m.Resolve(a.CPU(), NoBank)
}

// Parse parses an address and completes its bank using the bank counts of
// the map. CPU relative addresses in a switched window stay unresolved if
// more than one bank can be mapped there.
func (m *Map) Parse(text string) (Address, error) {
	a, qualified, err := parse(text)
	if err != nil {
		return Address{}, err
	}
	if a.Resolved() {
		if err := m.Validate(a); err != nil {
			return Address{}, err
		}
		return a, nil
	}

	resolved, err := m.Resolve(a.CPU(), NoBank)
	switch {
	case err == nil:
		return resolved, nil
	case errors.Is(err, ErrAmbiguousBank) && !qualified:
		return a, nil
	default:
		return Address{}, fmt.Errorf("parsing '%s': %w", text, err)
	}
}

// Banks returns all existing banks of the space in ascending order.
func (m *Map) Banks(s Space) []int {
	n := m.banks[s]
	if !s.Banked() {
		n = 1
	}
	banks := make([]int, 0, n)
	for i := range n {
		banks = append(banks, i)
	}
	return banks
}
