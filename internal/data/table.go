package data

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the encoding of a table field.
type FieldType int

// Table field types.
const (
	TypeByte    FieldType = iota + 1 // db
	TypeWord                         // dw, little endian
	TypeAddr                         // addr, little endian pointer
	TypeAddrBE                       // addr_be, big endian pointer
	TypeColor                        // color, little endian BGR555
	TypeColorBE                      // color_be, big endian BGR555
)

var fieldTypeNames = map[FieldType]string{
	TypeByte:    "db",
	TypeWord:    "dw",
	TypeAddr:    "addr",
	TypeAddrBE:  "addr_be",
	TypeColor:   "color",
	TypeColorBE: "color_be",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// Size returns the number of bytes a field of the type occupies.
func (t FieldType) Size() int {
	if t == TypeByte {
		return 1
	}
	return 2
}

// IsPointer returns whether the field value is a CPU address.
func (t FieldType) IsPointer() bool {
	return t == TypeAddr || t == TypeAddrBE
}

func (t FieldType) decode(b []byte) uint16 {
	switch t {
	case TypeByte:
		return uint16(b[0])
	case TypeAddrBE, TypeColorBE:
		return binary.BigEndian.Uint16(b)
	default:
		return binary.LittleEndian.Uint16(b)
	}
}

func parseFieldType(name string) (FieldType, error) {
	for t, s := range fieldTypeNames {
		if s == strings.ToLower(name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown field type '%s'", ErrMalformedStructure, name)
}

// FieldSpec is a named field of a table row.
type FieldSpec struct {
	Name   string
	Type   FieldType
	Offset int
}

// Layout describes the fields of a table row.
type Layout struct {
	Fields []FieldSpec
	Width  int
}

// ParseLayout parses a comma separated field list like "db,dw,addr" or
// "hp:db,next:addr". Unnamed fields are named after their type, repeated
// names get a numeric suffix.
func ParseLayout(spec string) (Layout, error) {
	if strings.TrimSpace(spec) == "" {
		return Layout{}, fmt.Errorf("%w: empty field list", ErrMalformedStructure)
	}

	var layout Layout
	names := map[string]bool{}
	used := map[string]int{}
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		name, typeName, named := strings.Cut(item, ":")
		if !named {
			typeName = name
			name = ""
		}

		typ, err := parseFieldType(strings.TrimSpace(typeName))
		if err != nil {
			return Layout{}, err
		}

		name = strings.TrimSpace(name)
		if !named {
			name = typ.String()
			if n := used[name]; n > 0 {
				name += "_" + strconv.Itoa(n)
			}
			used[typ.String()]++
		}
		if name == "" || names[name] {
			return Layout{}, fmt.Errorf("%w: invalid field name '%s'", ErrMalformedStructure, name)
		}
		names[name] = true

		layout.Fields = append(layout.Fields, FieldSpec{Name: name, Type: typ, Offset: layout.Width})
		layout.Width += typ.Size()
	}
	return layout, nil
}

// String returns the field list in the form accepted by ParseLayout.
func (l Layout) String() string {
	items := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		items[i] = f.Name + ":" + f.Type.String()
	}
	return strings.Join(items, ",")
}

// DecodeTable decodes rows of fixed width records.
func DecodeTable(raw []byte, rows int, layout Layout) (Result, error) {
	if rows < 1 {
		return Result{}, fmt.Errorf("%w: table needs at least one row", ErrMalformedStructure)
	}
	if layout.Width == 0 {
		return Result{}, fmt.Errorf("%w: empty row layout", ErrMalformedStructure)
	}
	size := rows * layout.Width
	if size > len(raw) {
		return Result{}, fmt.Errorf("%w: %d rows of %d bytes overrun the %d available bytes",
			ErrMalformedStructure, rows, layout.Width, len(raw))
	}

	result := Result{Kind: Table, Consumed: size, Rows: make([]Row, rows), Layout: &layout}
	for i := range rows {
		base := i * layout.Width
		row := Row{Index: i, Fields: make([]Field, len(layout.Fields))}
		for j, spec := range layout.Fields {
			offset := base + spec.Offset
			row.Fields[j] = Field{
				Name:   spec.Name,
				Type:   spec.Type,
				Offset: offset,
				Value:  spec.Type.decode(raw[offset:]),
			}
		}
		result.Rows[i] = row
		result.Fields = append(result.Fields, row.Fields...)
	}
	return result, nil
}
