package disasm

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/program"
	"github.com/retroenv/retrogolib/log"
)

// ErrDuplicateSection is returned when a section name or start address is
// already in use.
var ErrDuplicateSection = errors.New("duplicate section")

// CreateSection starts a named section at the address. Section names are
// unique and every address starts at most one section. The returned bool is
// false if the section already exists.
func (db *Database) CreateSection(name string, addr address.Address) (bool, error) {
	if err := db.validate(addr); err != nil {
		return false, err
	}
	if name == "" || strings.ContainsAny(name, "\" \t") {
		return false, fmt.Errorf("invalid section name '%s'", name)
	}

	if existing, ok := db.sections[addr]; ok {
		if existing == name {
			return false, nil
		}
		return false, fmt.Errorf("%w: section '%s' already starts at %s", ErrDuplicateSection, existing, addr)
	}
	for a, existing := range db.sections {
		if existing == name {
			return false, fmt.Errorf("%w: section '%s' already starts at %s", ErrDuplicateSection, name, a)
		}
	}

	db.sections[addr] = name
	db.logger.Debug("Created section", log.String("name", name), log.Stringer("address", addr))
	return true, nil
}

// DeleteSection removes the section starting at the address.
func (db *Database) DeleteSection(addr address.Address) (program.Section, error) {
	name, ok := db.sections[addr]
	if !ok {
		return program.Section{}, fmt.Errorf("%w: no section starts at %s", address.ErrUnknownAddress, addr)
	}
	delete(db.sections, addr)
	return program.Section{Address: addr, Name: name}, nil
}

// Section returns the name of the section starting at the address.
func (db *Database) Section(addr address.Address) (string, bool) {
	name, ok := db.sections[addr]
	return name, ok
}

// Sections returns all sections sorted by address.
func (db *Database) Sections() []program.Section {
	addrs := slices.SortedFunc(maps.Keys(db.sections), address.Address.Compare)
	sections := make([]program.Section, 0, len(addrs))
	for _, a := range addrs {
		sections = append(sections, program.Section{Address: a, Name: db.sections[a]})
	}
	return sections
}
