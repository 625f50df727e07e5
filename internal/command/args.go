package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/gbdisasm/internal/symbols"
)

// parseAddress parses an address argument. Label names are accepted
// wherever an address is, a name starting with a dot is a local label in the
// scope of the cursor.
func (s *Session) parseAddress(arg string) (address.Address, error) {
	name, ok := s.labelName(arg)
	if !ok {
		return s.db.Banks().Parse(arg)
	}
	lbl, found := s.db.Label(name)
	if !found {
		return address.Address{}, fmt.Errorf("%w: %s", symbols.ErrUnknownLabel, name)
	}
	return lbl.Address, nil
}

// labelName returns the full label name for an argument that is a label
// name, qualifying local names with the scope of the cursor.
func (s *Session) labelName(arg string) (string, bool) {
	if strings.HasPrefix(arg, ".") {
		scope, ok := s.db.Scope(s.cursor)
		if !ok {
			return arg, true
		}
		return scope.Name + arg, true
	}
	if symbols.ValidateName(arg) != nil {
		return arg, false
	}
	return arg, true
}

// optionalAddress splits an optional leading address from the arguments.
// The first argument is an address if there are more arguments than
// others, or if it is no decimal number. The cursor is returned if no
// address is given.
func (s *Session) optionalAddress(args []string, others int) (address.Address, []string, error) {
	if len(args) == 0 || (len(args) <= others && isNumber(args[0])) {
		return s.cursor, args, nil
	}
	a, err := s.parseAddress(args[0])
	if err != nil {
		return address.Address{}, nil, err
	}
	return a, args[1:], nil
}

// number parses a decimal or $ / 0x prefixed hexadecimal number.
func number(arg string) (int, error) {
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(arg, "$"):
		v, err = strconv.ParseUint(arg[1:], 16, 31)
	case strings.HasPrefix(arg, "0x"), strings.HasPrefix(arg, "0X"):
		v, err = strconv.ParseUint(arg[2:], 16, 31)
	default:
		v, err = strconv.ParseUint(arg, 10, 31)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: '%s' is not a number", ErrUsage, arg)
	}
	return int(v), nil
}

// optionalNumber returns the number at index i or def if it does not exist.
func optionalNumber(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	return number(args[i])
}

func isNumber(arg string) bool {
	_, err := strconv.ParseUint(arg, 10, 31)
	return err == nil
}
