package macro

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// ID is an invocation's macro identifier: either a NameID or an AddressID.
// The encoding lets invocations reference macros by name or by numeric
// address interchangeably.
type ID interface {
	fmt.Stringer
	macroID()
}

// NameID addresses a macro by name.
type NameID string

func (NameID) macroID() {}

func (id NameID) String() string { return string(id) }

// AddressID addresses a macro by table position.
type AddressID int

func (AddressID) macroID() {}

func (id AddressID) String() string { return strconv.Itoa(int(id)) }

// ParseID interprets an identifier's text form: all-digit text is a
// numeric address, anything else is a name.
func ParseID(text string) ID {
	if text == "" {
		return NameID(text)
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return NameID(text)
		}
	}
	address, err := strconv.Atoi(text)
	if err != nil {
		return NameID(text)
	}
	return AddressID(address)
}

// DuplicateNameError reports an attempt to register a macro under a name
// the table already maps.
type DuplicateNameError struct {
	Name            string
	ExistingAddress int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("macro named %q already exists at address %d", e.Name, e.ExistingAddress)
}

// Table is an append-only macro registry. Addresses are positions in the
// append order, assigned once and stable for the table's lifetime; named
// entries are additionally indexed by name. The first NumSystemMacros
// addresses of a system-initialized table are reserved for the built-in
// set, so user macros start at FirstUserMacroID.
//
// A Table is exclusively owned by its consumer. Clones share the
// underlying macro definitions, which are immutable, so handing each
// reader its own copy of the system table is cheap; only the address
// vector and name index are duplicated.
type Table struct {
	macrosByAddress []*Macro
	macrosByName    map[string]int
}

// NewEmptyTable returns a table with no entries. The first macro added
// receives address 0.
func NewEmptyTable() *Table {
	return &Table{macrosByName: make(map[string]int)}
}

// Clone returns an independent table holding the same entries. Appends to
// either table are invisible to the other.
func (t *Table) Clone() *Table {
	return &Table{
		macrosByAddress: slices.Clone(t.macrosByAddress),
		macrosByName:    maps.Clone(t.macrosByName),
	}
}

// Len returns the number of entries, which is also the next address to be
// assigned.
func (t *Table) Len() int {
	return len(t.macrosByAddress)
}

// IsEmpty reports whether the table has no entries.
func (t *Table) IsEmpty() bool {
	return len(t.macrosByAddress) == 0
}

// MacroAtAddress resolves a numeric address. It returns false for any
// address the table has not assigned.
func (t *Table) MacroAtAddress(address int) (Ref, bool) {
	if address < 0 || address >= len(t.macrosByAddress) {
		return Ref{}, false
	}
	return NewRef(address, t.macrosByAddress[address]), true
}

// MacroWithName resolves a name to the entry it was registered at.
func (t *Table) MacroWithName(name string) (Ref, bool) {
	address, ok := t.macrosByName[name]
	if !ok {
		return Ref{}, false
	}
	return NewRef(address, t.macrosByAddress[address]), true
}

// AddressForName returns the address a name is registered at.
func (t *Table) AddressForName(name string) (int, bool) {
	address, ok := t.macrosByName[name]
	return address, ok
}

// MacroWithID resolves either addressing form.
func (t *Table) MacroWithID(id ID) (Ref, bool) {
	switch v := id.(type) {
	case NameID:
		return t.MacroWithName(string(v))
	case AddressID:
		return t.MacroAtAddress(int(v))
	default:
		return Ref{}, false
	}
}

// AllMacros returns every entry in address order.
func (t *Table) AllMacros() []Ref {
	refs := make([]Ref, len(t.macrosByAddress))
	for i, m := range t.macrosByAddress {
		refs[i] = NewRef(i, m)
	}
	return refs
}

// AddMacro appends a template-defined macro at the next address and
// returns that address. A named template whose name is already registered
// fails with a DuplicateNameError and leaves the table unchanged;
// anonymous templates cannot collide.
func (t *Table) AddMacro(template *Template) (int, error) {
	if name, ok := template.Name(); ok {
		if existing, taken := t.macrosByName[name]; taken {
			return 0, &DuplicateNameError{Name: name, ExistingAddress: existing}
		}
	}
	return t.appendShared(NewMacroFromTemplate(template)), nil
}

// AppendAllMacrosFrom imports every entry of other, preserving other's
// relative order and assigning addresses that continue from t's current
// length. The import aborts at the first name collision; entries appended
// before the collision remain in the table.
func (t *Table) AppendAllMacrosFrom(other *Table) error {
	for _, m := range other.macrosByAddress {
		if name, ok := m.Name(); ok {
			if existing, taken := t.macrosByName[name]; taken {
				return &DuplicateNameError{Name: name, ExistingAddress: existing}
			}
		}
		t.appendShared(m)
	}
	return nil
}

// appendShared appends an existing macro definition without copying it and
// returns the address it was assigned.
func (t *Table) appendShared(m *Macro) int {
	address := len(t.macrosByAddress)
	t.macrosByAddress = append(t.macrosByAddress, m)
	if name, ok := m.Name(); ok {
		t.macrosByName[name] = address
	}
	return address
}
