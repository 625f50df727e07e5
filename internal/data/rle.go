package data

import "fmt"

const (
	rleTerminator = 0x00
	rleLiteral    = 0x80
)

// DecodeRLE decodes run length encoded data. Every run starts with a
// control byte: 0 terminates the stream, with bit 7 set the lower 7 bits
// give the number of literal bytes that follow, otherwise the following
// byte is repeated control byte times.
//
// Decoding stops at the terminator or, if length is positive, once length
// bytes are produced. Runs are consumed as a whole, surplus output of the
// last run is dropped.
func DecodeRLE(raw []byte, length int) (Result, error) {
	if length < 0 {
		return Result{}, fmt.Errorf("%w: invalid RLE length %d", ErrMalformedStructure, length)
	}

	result := Result{Kind: RLE}
	pos := 0
	for length == 0 || len(result.Decoded) < length {
		if pos >= len(raw) {
			return Result{}, fmt.Errorf("%w: RLE stream ends without terminator", ErrMalformedStructure)
		}

		control := raw[pos]
		start := pos
		pos++
		if control == rleTerminator {
			break
		}

		if control&rleLiteral != 0 {
			n := int(control &^ rleLiteral)
			if pos+n > len(raw) {
				return Result{}, fmt.Errorf("%w: RLE literal run at offset %d is truncated", ErrMalformedStructure, start)
			}
			result.Decoded = append(result.Decoded, raw[pos:pos+n]...)
			result.Fields = append(result.Fields, Field{Name: "literal", Type: TypeByte, Offset: start, Value: uint16(n)})
			pos += n
			continue
		}

		if pos >= len(raw) {
			return Result{}, fmt.Errorf("%w: RLE repeat run at offset %d is truncated", ErrMalformedStructure, start)
		}
		for range control {
			result.Decoded = append(result.Decoded, raw[pos])
		}
		result.Fields = append(result.Fields, Field{Name: "repeat", Type: TypeByte, Offset: start, Value: uint16(control)})
		pos++
	}

	if length > 0 && len(result.Decoded) > length {
		result.Decoded = result.Decoded[:length]
	}
	result.Consumed = pos
	return result, nil
}
