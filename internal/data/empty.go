package data

import "fmt"

// entryPoint holds the NOP that starts most cartridges, it is code and never
// part of an empty run.
const entryPoint = 0x0100

// DetectEmptyLength returns the number of zero bytes at the start of raw,
// which is located at the CPU address start.
func DetectEmptyLength(raw []byte, start uint16) int {
	n := 0
	for n < len(raw) && raw[n] == 0 && int(start)+n != entryPoint {
		n++
	}
	return n
}

// DecodeEmpty marks unused space. With length 0 the length of the zero run
// is detected.
func DecodeEmpty(raw []byte, length int, start uint16) (Result, error) {
	if length < 0 {
		return Result{}, fmt.Errorf("%w: invalid empty length %d", ErrMalformedStructure, length)
	}
	if length == 0 {
		length = DetectEmptyLength(raw, start)
		if length == 0 {
			return Result{}, fmt.Errorf("%w: no empty space found", ErrMalformedStructure)
		}
	}
	if length > len(raw) {
		return Result{}, fmt.Errorf("%w: length %d exceeds %d available bytes",
			ErrMalformedStructure, length, len(raw))
	}
	return Result{Kind: Empty, Consumed: length}, nil
}
