// Package xref implements the cross reference graph between addresses.
package xref

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
)

// ErrUnknownKind is returned when parsing an unsupported reference kind.
var ErrUnknownKind = errors.New("unknown reference kind")

// Kind is the kind of a reference.
type Kind int

// Reference kinds.
const (
	Call Kind = iota + 1
	Jump
	Read
	Write
)

// Kinds lists all reference kinds.
var Kinds = []Kind{Call, Jump, Read, Write}

var kindNames = map[Kind]string{
	Call:  "call",
	Jump:  "jump",
	Read:  "read",
	Write: "write",
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
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownKind, name)
}

// Xref is a directed reference from an origin to a destination.
type Xref struct {
	Kind Kind
	From address.Address
	To   address.Address
}

func (x Xref) String() string {
	return fmt.Sprintf("%s %s -> %s", x.Kind, x.From, x.To)
}

func compare(a, b Xref) int {
	if c := a.From.Compare(b.From); c != 0 {
		return c
	}
	if c := a.To.Compare(b.To); c != 0 {
		return c
	}
	return int(a.Kind) - int(b.Kind)
}

// Graph holds all references indexed by origin and by destination.
type Graph struct {
	from map[address.Address][]Xref
	to   map[address.Address][]Xref
	size int
}

// New returns a new empty graph.
func New() *Graph {
	return &Graph{
		from: make(map[address.Address][]Xref),
		to:   make(map[address.Address][]Xref),
	}
}

// Declare adds a reference. It returns false if the identical reference
// already exists.
func (g *Graph) Declare(x Xref) bool {
	if slices.Contains(g.from[x.From], x) {
		return false
	}
	g.from[x.From] = insertSorted(g.from[x.From], x)
	g.to[x.To] = insertSorted(g.to[x.To], x)
	g.size++
	return true
}

// Has returns whether the reference exists.
func (g *Graph) Has(x Xref) bool {
	return slices.Contains(g.from[x.From], x)
}

// Clear removes all references originating at the address and returns them.
func (g *Graph) Clear(from address.Address) []Xref {
	removed := g.from[from]
	delete(g.from, from)

	for _, x := range removed {
		refs := slices.DeleteFunc(g.to[x.To], func(o Xref) bool {
			return o == x
		})
		if len(refs) == 0 {
			delete(g.to, x.To)
		} else {
			g.to[x.To] = refs
		}
	}
	g.size -= len(removed)
	return removed
}

// From returns all references originating at the address.
func (g *Graph) From(a address.Address) []Xref {
	return slices.Clone(g.from[a])
}

// To returns all references pointing to the address.
func (g *Graph) To(a address.Address) []Xref {
	return slices.Clone(g.to[a])
}

// Len returns the number of references.
func (g *Graph) Len() int {
	return g.size
}

// All returns all references sorted by origin, destination and kind.
func (g *Graph) All() []Xref {
	all := make([]Xref, 0, g.size)
	for _, refs := range g.from {
		all = append(all, refs...)
	}
	slices.SortFunc(all, compare)
	return all
}

func insertSorted(refs []Xref, x Xref) []Xref {
	i, _ := slices.BinarySearchFunc(refs, x, compare)
	return slices.Insert(refs, i, x)
}
