package program

import (
	"fmt"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
)

// OffsetType defines the classification of an address.
type OffsetType uint8

// classifications.
const (
	UnknownOffset OffsetType = 0
	CodeOffset    OffsetType = 1 << iota
	DataOffset
	CodeAsData      // reference into the middle of an instruction
	CallDestination // destination of a call, indicating a function
	JumpDestination
	Accessed // target of a read or write
)

var offsetTypeNames = []struct {
	typ  OffsetType
	name string
}{
	{CodeOffset, "code"},
	{DataOffset, "data"},
	{CodeAsData, "code-as-data"},
	{CallDestination, "call-destination"},
	{JumpDestination, "jump-destination"},
	{Accessed, "accessed"},
}

// String returns the names of all set flags.
func (t OffsetType) String() string {
	if t == UnknownOffset {
		return "unknown"
	}
	var names []string
	for _, n := range offsetTypeNames {
		if t&n.typ != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Offset describes the classification of an address and the bytes that belong
// to the element starting there.
type Offset struct {
	Address address.Address
	Data    []byte
	Type    OffsetType

	Section string // name of the section starting at the address
	Label   string // label defined at the address
	Code    string // instruction in assembler syntax
	Comment string
}

// IsType returns whether the offset is of given type.
func (o *Offset) IsType(typ OffsetType) bool {
	ret := o.Type&typ != 0
	return ret
}

// SetType sets the type of the offset.
func (o *Offset) SetType(typ OffsetType) {
	o.Type |= typ
}

// ClearType unsets the type of the offset.
func (o *Offset) ClearType(typ OffsetType) {
	mask := ^(typ)
	o.Type &= mask
}

// HexCodeComment returns the bytes of the offset as hex string.
func (o *Offset) HexCodeComment() (string, error) {
	var sb strings.Builder
	for i, b := range o.Data {
		if i > 0 {
			if _, err := sb.WriteString(" "); err != nil {
				return "", fmt.Errorf("writing separator: %w", err)
			}
		}
		if _, err := fmt.Fprintf(&sb, "%02X", b); err != nil {
			return "", fmt.Errorf("writing hex byte: %w", err)
		}
	}
	return sb.String(), nil
}
