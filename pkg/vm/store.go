package vm

import (
	"github.com/google/btree"

	"zawa/pkg/value"
)

type binding struct {
	name string
	val  value.Value
}

// Store is the global variable space of one machine. It is ordered by name
// so listings and dumps are stable.
type Store struct {
	tree *btree.BTreeG[binding]
}

func NewStore() *Store {
	return &Store{
		tree: btree.NewG(16, func(a, b binding) bool { return a.name < b.name }),
	}
}

func (s *Store) Lookup(name string) (value.Value, bool) {
	b, ok := s.tree.Get(binding{name: name})
	return b.val, ok
}

func (s *Store) Set(name string, v value.Value) {
	s.tree.ReplaceOrInsert(binding{name: name, val: v})
}

func (s *Store) Len() int { return s.tree.Len() }

// Names returns the variable names in ascending order.
func (s *Store) Names() []string {
	names := make([]string, 0, s.tree.Len())
	s.tree.Ascend(func(b binding) bool {
		names = append(names, b.name)
		return true
	})
	return names
}

// Snapshot copies the store into a map, for dumps and tests.
func (s *Store) Snapshot() map[string]value.Value {
	m := make(map[string]value.Value, s.tree.Len())
	s.tree.Ascend(func(b binding) bool {
		m[b.name] = b.val
		return true
	})
	return m
}
