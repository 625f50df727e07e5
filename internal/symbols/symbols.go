// Package symbols provides the label table with dotted global.local scoping.
package symbols

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/retroenv/gbdisasm/internal/address"
	"github.com/retroenv/retrogolib/set"
)

var (
	// ErrDuplicateLabel is returned when a name or an address is already labeled.
	ErrDuplicateLabel = errors.New("duplicate label")
	// ErrInvalidName is returned for malformed label names.
	ErrInvalidName = errors.New("invalid label name")
	// ErrUnknownLabel is returned when a label does not exist.
	ErrUnknownLabel = errors.New("unknown label")
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Label is a name assigned to an address.
type Label struct {
	Name    string
	Address address.Address
}

// Global returns the global component of the name.
func (l Label) Global() string {
	global, _, _ := strings.Cut(l.Name, ".")
	return global
}

// Local returns the local component of the name, empty for global labels.
func (l Label) Local() string {
	_, local, _ := strings.Cut(l.Name, ".")
	return local
}

// IsLocal returns whether the label is scoped to a global label.
func (l Label) IsLocal() bool {
	return strings.Contains(l.Name, ".")
}

// Table contains all labels, indexed by name and by address.
type Table struct {
	byName    map[string]Label
	byAddress map[address.Address]string
	locals    map[string]set.Set[string] // global name to full names of its locals
}

// New returns a new empty label table.
func New() *Table {
	return &Table{
		byName:    make(map[string]Label),
		byAddress: make(map[address.Address]string),
		locals:    make(map[string]set.Set[string]),
	}
}

// Create adds a label. A name starting with a dot is a local label of the
// nearest preceding global label.
func (t *Table) Create(name string, addr address.Address) (Label, error) {
	name, err := t.Qualify(name, addr)
	if err != nil {
		return Label{}, err
	}
	lbl := Label{Name: name, Address: addr}
	if err := t.checkCreate(lbl, ""); err != nil {
		return Label{}, err
	}
	t.insert(lbl)
	return lbl, nil
}

// Delete removes a label. Deleting a global label deletes all its locals.
// The deleted labels are returned.
func (t *Table) Delete(name string) ([]Label, error) {
	lbl, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLabel, name)
	}

	var deleted []Label
	if !lbl.IsLocal() {
		for _, local := range t.sortedLocals(name) {
			deleted = append(deleted, t.byName[local])
			t.remove(t.byName[local])
		}
	}
	t.remove(lbl)
	return append([]Label{lbl}, deleted...), nil
}

// Rename changes the name of a label, keeping its address. Locals of a
// renamed global label move to the new global name.
func (t *Table) Rename(oldName, newName string) (Label, error) {
	lbl, ok := t.byName[oldName]
	if !ok {
		return Label{}, fmt.Errorf("%w: %s", ErrUnknownLabel, oldName)
	}

	scope := oldName
	if lbl.IsLocal() {
		scope = lbl.Global()
	}
	if strings.HasPrefix(newName, ".") {
		newName = scope + newName
	}
	if newName == oldName {
		return lbl, nil
	}

	renamed := Label{Name: newName, Address: lbl.Address}
	if err := t.checkCreate(renamed, oldName); err != nil {
		return Label{}, err
	}
	locals := t.sortedLocals(oldName)
	if !lbl.IsLocal() && renamed.IsLocal() && len(locals) > 0 {
		return Label{}, fmt.Errorf("%w: global label %s has local labels", ErrInvalidName, oldName)
	}

	moved := make([]Label, 0, len(locals))
	for _, local := range locals {
		l := t.byName[local]
		moved = append(moved, Label{Name: newName + "." + l.Local(), Address: l.Address})
		t.remove(l)
	}
	t.remove(lbl)
	t.insert(renamed)
	for _, l := range moved {
		t.insert(l)
	}
	return renamed, nil
}

// Get returns the label with the given full name.
func (t *Table) Get(name string) (Label, bool) {
	lbl, ok := t.byName[name]
	return lbl, ok
}

// At returns the label at the given address.
func (t *Table) At(addr address.Address) (Label, bool) {
	name, ok := t.byAddress[addr]
	if !ok {
		return Label{}, false
	}
	return t.byName[name], true
}

// Scope returns the nearest global label at or before the address in the
// same bank.
func (t *Table) Scope(addr address.Address) (Label, bool) {
	var scope Label
	found := false
	for _, lbl := range t.byName {
		if lbl.IsLocal() || !lbl.Address.SameBank(addr) || lbl.Address.Offset > addr.Offset {
			continue
		}
		if !found || lbl.Address.Offset > scope.Address.Offset {
			scope = lbl
			found = true
		}
	}
	return scope, found
}

// Qualify returns the full name for a label name used at the address.
// Names starting with a dot are prefixed with the scope at the address.
func (t *Table) Qualify(name string, addr address.Address) (string, error) {
	if !strings.HasPrefix(name, ".") {
		return name, nil
	}
	scope, ok := t.Scope(addr)
	if !ok {
		return "", fmt.Errorf("%w: no global label in scope of %s", ErrInvalidName, addr)
	}
	return scope.Name + name, nil
}

// Locals returns the local labels of a global label sorted by address.
func (t *Table) Locals(global string) []Label {
	names := t.sortedLocals(global)
	labels := make([]Label, 0, len(names))
	for _, name := range names {
		labels = append(labels, t.byName[name])
	}
	return labels
}

// Labels returns all labels sorted by address.
func (t *Table) Labels() []Label {
	labels := make([]Label, 0, len(t.byName))
	for _, lbl := range t.byName {
		labels = append(labels, lbl)
	}
	slices.SortFunc(labels, func(a, b Label) int {
		if c := a.Address.Compare(b.Address); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return labels
}

// Len returns the number of labels.
func (t *Table) Len() int {
	return len(t.byName)
}

// ValidateName checks the syntax of a full label name.
func ValidateName(name string) error {
	global, local, dotted := strings.Cut(name, ".")
	if !identifier.MatchString(global) {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}
	if dotted && !identifier.MatchString(local) {
		return fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}
	return nil
}

// checkCreate validates that the label can be inserted. ignore names a
// label that is about to be removed by the same operation.
func (t *Table) checkCreate(lbl Label, ignore string) error {
	if err := ValidateName(lbl.Name); err != nil {
		return err
	}
	if !lbl.Address.Resolved() {
		return fmt.Errorf("%w: label %s needs a banked address", address.ErrAmbiguousBank, lbl.Name)
	}
	if lbl.Name != ignore {
		if _, ok := t.byName[lbl.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateLabel, lbl.Name)
		}
	}
	if existing, ok := t.byAddress[lbl.Address]; ok && existing != ignore {
		return fmt.Errorf("%w: %s is already labeled %s", ErrDuplicateLabel, lbl.Address, existing)
	}
	if !lbl.IsLocal() {
		return nil
	}

	global, ok := t.byName[lbl.Global()]
	if !ok || global.Name == ignore {
		return fmt.Errorf("%w: %s", ErrUnknownLabel, lbl.Global())
	}
	if !global.Address.SameBank(lbl.Address) || global.Address.Offset > lbl.Address.Offset {
		return fmt.Errorf("%w: %s is outside of the scope of %s", ErrInvalidName, lbl.Name, global.Name)
	}
	return nil
}

func (t *Table) insert(lbl Label) {
	t.byName[lbl.Name] = lbl
	t.byAddress[lbl.Address] = lbl.Name
	if !lbl.IsLocal() {
		return
	}
	locals, ok := t.locals[lbl.Global()]
	if !ok {
		locals = set.New[string]()
		t.locals[lbl.Global()] = locals
	}
	locals.Add(lbl.Name)
}

func (t *Table) remove(lbl Label) {
	delete(t.byName, lbl.Name)
	delete(t.byAddress, lbl.Address)
	if !lbl.IsLocal() {
		delete(t.locals, lbl.Name)
		return
	}
	if locals, ok := t.locals[lbl.Global()]; ok {
		delete(locals, lbl.Name)
	}
}

func (t *Table) sortedLocals(global string) []string {
	locals := t.locals[global]
	names := make([]string, 0, len(locals))
	for name := range locals {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		return t.byName[a].Address.Compare(t.byName[b].Address)
	})
	return names
}
