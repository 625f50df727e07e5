// Package program represents the persistent state of a disassembly project.
package program

import (
	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/data"
	"github.com/retroenv/gbdisasm/internal/overrides"
	"github.com/retroenv/gbdisasm/internal/symbols"
	"github.com/retroenv/gbdisasm/internal/xref"
)

// Checksums contains the CRC32 checksum to identify the ROM a project belongs to.
type Checksums struct {
	ROM uint32
}

// Block is a classified data block. The decoded content is derived from the
// ROM bytes when the block is restored.
type Block struct {
	Address address.Address
	Kind    data.Kind
	Length  int    // bytes, colors or rows depending on the kind
	Spec    string // field list of tables
}

// Comment is a user comment attached to an address.
type Comment struct {
	Address address.Address
	Text    string
}

// Range is a byte range inside a single bank.
type Range struct {
	Address address.Address
	Length  int
}

// Section is a named assembly section starting at an address.
type Section struct {
	Address address.Address
	Name    string
}

// Program is a snapshot of all user decisions of a disassembly database.
// All slices are sorted by address.
type Program struct {
	Checksums Checksums

	Context  []overrides.Entry
	Labels   []symbols.Label
	Xrefs    []xref.Xref
	Blocks   []Block
	Code     []address.Address // start addresses of committed instructions
	Comments []Comment
	Sections []Section
	Freed    []Range // ranges of deleted data blocks
}

// Empty returns whether the program does not contain any decision.
func (p *Program) Empty() bool {
	return len(p.Context) == 0 && len(p.Labels) == 0 && len(p.Xrefs) == 0 &&
		len(p.Blocks) == 0 && len(p.Code) == 0 && len(p.Comments) == 0 &&
		len(p.Sections) == 0 && len(p.Freed) == 0
}

// Listing is the content of an assembly listing of a bank range.
type Listing struct {
	Checksums Checksums
	Start     address.Address
	Offsets   []Offset
	Aliases   map[string]uint16 // names used in the listing that are defined outside of it
}
