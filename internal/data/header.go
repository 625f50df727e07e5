package data

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// HeaderStart is the CPU address of the cartridge header block, it follows
// the entry point and spans the logo up to the global checksum.
const (
	HeaderStart  = 0x0104
	HeaderLength = 0x4C
)

// header field offsets relative to HeaderStart.
const (
	headerTitle          = 0x30
	headerTitleLength    = 16
	headerChecksumStart  = 0x30 // header checksum covers $0134-$014C
	headerChecksumOffset = 0x49
)

var headerFields = []FieldSpec{
	{Name: "licensee", Type: TypeWord, Offset: 0x40},
	{Name: "sgb", Type: TypeByte, Offset: 0x42},
	{Name: "type", Type: TypeByte, Offset: 0x43},
	{Name: "rom_size", Type: TypeByte, Offset: 0x44},
	{Name: "ram_size", Type: TypeByte, Offset: 0x45},
	{Name: "destination", Type: TypeByte, Offset: 0x46},
	{Name: "old_licensee", Type: TypeByte, Offset: 0x47},
	{Name: "version", Type: TypeByte, Offset: 0x48},
	{Name: "header_checksum", Type: TypeByte, Offset: headerChecksumOffset},
	{Name: "global_checksum", Type: TypeAddrBE, Offset: 0x4A},
}

// DecodeHeader decodes the cartridge header. The block can only be located
// at HeaderStart and always has HeaderLength bytes.
func DecodeHeader(raw []byte, start uint16) (Result, error) {
	if start != HeaderStart {
		return Result{}, fmt.Errorf("%w: cartridge header can only be at $%04X", ErrMalformedStructure, HeaderStart)
	}
	if len(raw) < HeaderLength {
		return Result{}, fmt.Errorf("%w: cartridge header needs %d bytes, %d available",
			ErrMalformedStructure, HeaderLength, len(raw))
	}

	result := Result{
		Kind:        Header,
		Consumed:    HeaderLength,
		Fields:      make([]Field, 0, len(headerFields)+1),
		Description: "Cartridge Header: " + headerTitleText(raw[headerTitle:headerTitle+headerTitleLength]),
	}
	for _, spec := range headerFields {
		var value uint16
		switch spec.Type {
		case TypeByte:
			value = uint16(raw[spec.Offset])
		case TypeAddrBE:
			value = binary.BigEndian.Uint16(raw[spec.Offset:])
		default:
			value = binary.LittleEndian.Uint16(raw[spec.Offset:])
		}
		result.Fields = append(result.Fields, Field{Name: spec.Name, Type: spec.Type, Offset: spec.Offset, Value: value})
	}

	result.Fields = append(result.Fields, Field{
		Name:   "checksum_valid",
		Type:   TypeByte,
		Offset: headerChecksumOffset,
		Value:  boolValue(headerChecksum(raw) == raw[headerChecksumOffset]),
	})
	return result, nil
}

// headerChecksum computes the checksum the boot ROM verifies.
func headerChecksum(raw []byte) byte {
	var sum byte
	for _, b := range raw[headerChecksumStart:headerChecksumOffset] {
		sum = sum - b - 1
	}
	return sum
}

// headerTitleText returns the printable part of the title, the last bytes
// of the title area are used for manufacturer and CGB flags by newer games.
func headerTitleText(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c < 0x20 || c >= 0x7F {
			break
		}
		sb.WriteByte(c)
	}
	return strings.TrimSpace(sb.String())
}

func boolValue(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
