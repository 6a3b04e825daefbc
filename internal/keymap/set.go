package keymap

import "fmt"

// Set holds one table per edit mode and tracks which is active.
// Swapping the active table changes only key resolution; buffer and
// history state are untouched.
type Set struct {
	tables map[string]*Table
	active string
}

// NewSet creates a set containing the given tables. The first table
// becomes active.
func NewSet(tables ...*Table) *Set {
	s := &Set{
		tables: make(map[string]*Table, len(tables)),
	}
	for i, t := range tables {
		s.tables[t.Name()] = t
		if i == 0 {
			s.active = t.Name()
		}
	}
	return s
}

// Add registers a table, replacing any table with the same name.
func (s *Set) Add(t *Table) {
	s.tables[t.Name()] = t
	if s.active == "" {
		s.active = t.Name()
	}
}

// Active returns the active table.
func (s *Set) Active() *Table {
	return s.tables[s.active]
}

// ActiveName returns the active table's name.
func (s *Set) ActiveName() string {
	return s.active
}

// Activate switches the active table by name.
func (s *Set) Activate(name string) error {
	if _, ok := s.tables[name]; !ok {
		return fmt.Errorf("no keymap named %q", name)
	}
	s.active = name
	return nil
}

// Get returns a table by name.
func (s *Set) Get(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Names returns the registered table names.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	return names
}
