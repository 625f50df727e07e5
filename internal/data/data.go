// Package data implements decoders for structured data blocks.
//
// All decoders are pure functions on raw bytes, they return the decoded
// fields and the number of bytes the structure occupies.
package data

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedStructure is returned when raw bytes do not form the requested structure.
var ErrMalformedStructure = errors.New("malformed structure")

// Kind is the decoding scheme of a data block.
type Kind int

// Data block kinds.
const (
	Simple Kind = iota + 1
	RLE
	Palette
	Table
	JumpTable
	Header
	SGB
	Empty
)

// Kinds lists all data block kinds.
var Kinds = []Kind{Simple, RLE, Palette, Table, JumpTable, Header, SGB, Empty}

var kindNames = map[Kind]string{
	Simple:    "simple",
	RLE:       "rle",
	Palette:   "palette",
	Table:     "table",
	JumpTable: "jumptable",
	Header:    "header",
	SGB:       "sgb",
	Empty:     "empty",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind returns the kind for the given name.
func ParseKind(name string) (Kind, error) {
	for kind, s := range kindNames {
		if strings.EqualFold(s, name) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown data kind '%s'", ErrMalformedStructure, name)
}

// Field is a single decoded value.
type Field struct {
	Name   string
	Type   FieldType
	Offset int // offset of the field relative to the block start
	Value  uint16
}

// Color returns the field value decoded as color.
func (f Field) Color() Color {
	return ColorFromBGR555(f.Value)
}

// Row is a decoded table row.
type Row struct {
	Index  int
	Fields []Field
}

// Get returns the field with the given name.
func (r Row) Get(name string) (Field, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Result is the outcome of decoding a data block.
type Result struct {
	Kind        Kind
	Consumed    int     // bytes occupied by the block
	Fields      []Field // bytes, colors, RLE runs or header fields
	Rows        []Row   // table and jump table rows
	Colors      []Color // palette colors
	Decoded     []byte  // RLE output
	Layout      *Layout // table row layout
	Description string  // header title or SGB command
}

// Decode decodes raw bytes with the given scheme, start is the CPU address
// of the first byte. For tables length is the row count and spec the field
// list; other kinds ignore spec. A length of 0 requests the default or
// detected length of the kind.
func Decode(kind Kind, start uint16, raw []byte, length int, spec string) (Result, error) {
	switch kind {
	case Simple:
		return DecodeSimple(raw, length)
	case RLE:
		return DecodeRLE(raw, length)
	case Palette:
		return DecodePalette(raw, length)
	case Table:
		layout, err := ParseLayout(spec)
		if err != nil {
			return Result{}, err
		}
		return DecodeTable(raw, length, layout)
	case JumpTable:
		return DecodeJumpTable(raw, length, start)
	case Header:
		return DecodeHeader(raw, start)
	case SGB:
		return DecodeSGB(raw)
	case Empty:
		return DecodeEmpty(raw, length, start)
	default:
		return Result{}, fmt.Errorf("%w: unsupported data kind %d", ErrMalformedStructure, int(kind))
	}
}

// DecodeSimple returns length bytes verbatim.
func DecodeSimple(raw []byte, length int) (Result, error) {
	if length <= 0 {
		return Result{}, fmt.Errorf("%w: simple data needs a length", ErrMalformedStructure)
	}
	if length > len(raw) {
		return Result{}, fmt.Errorf("%w: length %d exceeds %d available bytes",
			ErrMalformedStructure, length, len(raw))
	}

	fields := make([]Field, length)
	for i, b := range raw[:length] {
		fields[i] = Field{Name: "db", Type: TypeByte, Offset: i, Value: uint16(b)}
	}
	return Result{Kind: Simple, Consumed: length, Fields: fields}, nil
}
