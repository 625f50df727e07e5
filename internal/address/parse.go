package address

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	cpuPattern       = regexp.MustCompile(`^(?:\$|0[xX])([0-9A-Fa-f]{1,4})$`)
	bankPattern      = regexp.MustCompile(`^([0-9A-Fa-f]{1,4}):(?:\$|0[xX])?([0-9A-Fa-f]{1,4})$`)
	qualifiedPattern = regexp.MustCompile(`^([A-Za-z]+)(?:\.([0-9A-Fa-f]{1,4}))?:(?:\$|0[xX])?([0-9A-Fa-f]{1,4})$`)
)

// Parse parses an address in one of the forms:
//
//	$NNNN or 0xNNNN   CPU relative, bank unresolved in switched windows
//	BB:NNNN           bank relative
//	TYPE.BB:NNNN      fully qualified, TYPE:NNNN if the bank is implied
//
// NNNN is always the CPU address. Parse does not know any bank counts, use
// Map.Parse to complete banks of single bank windows.
func Parse(text string) (Address, error) {
	a, qualified, err := parse(text)
	if err != nil {
		return Address{}, err
	}
	if qualified && !a.Resolved() {
		return Address{}, fmt.Errorf("%w: '%s' needs a bank", ErrAmbiguousBank, text)
	}
	return a, nil
}

// MustParse is like Parse but panics on error.
func MustParse(text string) Address {
	a, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return a
}

// parse returns the parsed address and whether it was given in the fully
// qualified form.
func parse(text string) (Address, bool, error) {
	text = strings.TrimSpace(text)

	if m := cpuPattern.FindStringSubmatch(text); m != nil {
		cpu := parseHex(m[1])
		space, ok := SpaceOf(cpu)
		if !ok {
			return Address{}, false, fmt.Errorf("%w: $%04X is not mapped", ErrUnknownAddress, cpu)
		}
		return atCPU(space, NoBank, cpu), false, nil
	}

	if m := bankPattern.FindStringSubmatch(text); m != nil {
		bank, cpu := int(parseHex(m[1])), parseHex(m[2])
		space, ok := SpaceOf(cpu)
		if !ok {
			return Address{}, false, fmt.Errorf("%w: $%04X is not mapped", ErrUnknownAddress, cpu)
		}
		a, err := bankRelative(space, bank, cpu)
		return a, false, err
	}

	if m := qualifiedPattern.FindStringSubmatch(text); m != nil {
		space, err := ParseSpace(m[1])
		if err != nil {
			return Address{}, true, err
		}
		cpu := parseHex(m[3])
		if cpu < space.Start() || cpu > space.End() {
			return Address{}, true, fmt.Errorf("%w: $%04X is not in %s", ErrUnknownAddress, cpu, space)
		}
		if m[2] == "" {
			return atCPU(space, NoBank, cpu), true, nil
		}
		a, err := bankRelative(space, int(parseHex(m[2])), cpu)
		return a, true, err
	}

	return Address{}, false, fmt.Errorf("%w: malformed address '%s'", ErrUnknownAddress, text)
}

// atCPU returns the address for a CPU address inside the space. Fixed parts
// and unbanked spaces always use bank 0.
func atCPU(space Space, bank int, cpu uint16) Address {
	l := layouts[space]
	rel := cpu - l.start
	if int(rel) < l.fixedSize {
		return Address{Space: space, Bank: 0, Offset: rel}
	}
	return Address{Space: space, Bank: bank, Offset: rel - uint16(l.fixedSize)}
}

// bankRelative validates that the bank can be mapped at the CPU address:
// bank 0 only maps fixed parts, other banks only switched windows.
func bankRelative(space Space, bank int, cpu uint16) (Address, error) {
	switch {
	case !space.Banked():
		if bank != 0 {
			return Address{}, fmt.Errorf("%w: %s is not banked", ErrUnknownAddress, space)
		}
	case space.inFixed(cpu):
		if bank != 0 {
			return Address{}, fmt.Errorf("%w: $%04X is in the fixed bank of %s, did you mean 0:%04X",
				ErrUnknownAddress, cpu, space, cpu)
		}
	case space.HasFixed() && bank == 0:
		return Address{}, fmt.Errorf("%w: bank 0 of %s is not mapped to $%04X", ErrUnknownAddress, space, cpu)
	}
	return atCPU(space, bank, cpu), nil
}

func parseHex(s string) uint16 {
	// the patterns limit the input to 4 hex digits
	v, _ := strconv.ParseUint(s, 16, 16)
	return uint16(v)
}
