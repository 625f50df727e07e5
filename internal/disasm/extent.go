package disasm

import (
	"slices"

	"github.com/retroenv/gbdisasm/internal/address"
)

// span is a byte range inside a single bank.
type span struct {
	start  address.Address
	length int
}

func (s span) end() int {
	return int(s.start.Offset) + s.length
}

func (s span) contains(a address.Address) bool {
	return s.start.SameBank(a) && a.Offset >= s.start.Offset && int(a.Offset) < s.end()
}

// extent is the range occupied by a data block or a committed instruction.
type extent struct {
	span
	code bool
}

// extents indexes all occupied ranges per bank, sorted by offset. The ranges
// of a bank never overlap.
type extents map[address.Address][]extent

func bankOf(a address.Address) address.Address {
	a.Offset = 0
	return a
}

// overlapping returns the first extent that overlaps the span.
func (e extents) overlapping(s span) (extent, bool) {
	list := e[bankOf(s.start)]
	i, _ := slices.BinarySearchFunc(list, int(s.start.Offset), func(x extent, offset int) int {
		if x.end() <= offset {
			return -1
		}
		return 1
	})
	if i < len(list) && int(list[i].start.Offset) < s.end() {
		return list[i], true
	}
	return extent{}, false
}

// at returns the extent that contains the address.
func (e extents) at(a address.Address) (extent, bool) {
	return e.overlapping(span{start: a, length: 1})
}

func (e extents) add(x extent) {
	key := bankOf(x.start)
	list := e[key]
	i, _ := slices.BinarySearchFunc(list, x.start.Offset, func(x extent, offset uint16) int {
		return int(x.start.Offset) - int(offset)
	})
	e[key] = slices.Insert(list, i, x)
}

func (e extents) remove(start address.Address) {
	key := bankOf(start)
	e[key] = slices.DeleteFunc(e[key], func(x extent) bool {
		return x.start == start
	})
	if len(e[key]) == 0 {
		delete(e, key)
	}
}
