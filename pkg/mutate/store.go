package mutate

import (
	"github.com/cockroachdb/swiss"
	"github.com/vango-dev/mutate/pkg/dom"
)

// Key names a slot in a Store.
type Key string

const (
	keyTreeObservation      Key = "observation:tree"
	keyAttributeObservation Key = "observation:attribute"
)

// nodeListenersKey and rootListenersKey namespace the listener maps of each
// channel.
func nodeListenersKey(ch Channel) Key {
	return Key(ch.String() + ":node")
}

func rootListenersKey(ch Channel) Key {
	return Key(ch.String() + ":root")
}

type slot struct {
	root *dom.Node
	key  Key
}

// Store is a key/value store scoped by root node. Removing the last key of
// a root removes the root.
type Store struct {
	entries swiss.Map[slot, any]
	roots   swiss.Map[*dom.Node, int]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	s := &Store{}
	s.entries.Init(16)
	s.roots.Init(4)
	return s
}

// Get returns the value stored under (root, key).
func (s *Store) Get(root *dom.Node, key Key) (any, bool) {
	return s.entries.Get(slot{root, key})
}

// Set stores v under (root, key).
func (s *Store) Set(root *dom.Node, key Key, v any) {
	sl := slot{root, key}
	if _, ok := s.entries.Get(sl); !ok {
		n, _ := s.roots.Get(root)
		s.roots.Put(root, n+1)
	}
	s.entries.Put(sl, v)
}

// Delete removes (root, key).
func (s *Store) Delete(root *dom.Node, key Key) {
	sl := slot{root, key}
	if _, ok := s.entries.Get(sl); !ok {
		return
	}
	s.entries.Delete(sl)
	n, _ := s.roots.Get(root)
	if n <= 1 {
		s.roots.Delete(root)
		return
	}
	s.roots.Put(root, n-1)
}

// Has reports whether any key is stored for root.
func (s *Store) Has(root *dom.Node) bool {
	_, ok := s.roots.Get(root)
	return ok
}

// Len returns the number of stored keys across all roots.
func (s *Store) Len() int {
	return s.entries.Len()
}

// Roots returns the number of roots with at least one key.
func (s *Store) Roots() int {
	return s.roots.Len()
}

// load returns the T stored under (root, key), creating it with create when
// absent.
func load[T any](s *Store, root *dom.Node, key Key, create func() T) T {
	if v, ok := s.Get(root, key); ok {
		return v.(T)
	}
	v := create()
	s.Set(root, key, v)
	return v
}

// lookup returns the T stored under (root, key).
func lookup[T any](s *Store, root *dom.Node, key Key) (T, bool) {
	v, ok := s.Get(root, key)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}
