package ordered

import (
	"cmp"
	"iter"

	"github.com/ValentinKolb/rbKV/lib/rbtree"
)

// MultiMap is a sorted map that allows several values per key. Values of
// one key are kept in insertion order.
type MultiMap[K, V any] struct {
	t *rbtree.Tree[K, V]
}

// NewMultiMap creates an empty multimap ordered by less.
func NewMultiMap[K, V any](less rbtree.LessFunc[K]) *MultiMap[K, V] {
	return &MultiMap[K, V]{t: rbtree.New[K, V](less, rbtree.Multi)}
}

// NewOrderedMultiMap creates an empty multimap using the natural order of K.
func NewOrderedMultiMap[K cmp.Ordered, V any]() *MultiMap[K, V] {
	return NewMultiMap[K, V](rbtree.OrderedLess[K])
}

// Insert appends value to key's values. The returned cursor can be passed
// to EraseAt to remove exactly this entry.
func (m *MultiMap[K, V]) Insert(key K, value V) rbtree.Cursor[K, V] {
	c, _ := m.t.Insert(key, value)
	return c
}

// Values returns the values stored for key in insertion order.
func (m *MultiMap[K, V]) Values(key K) []V {
	first, last := m.t.EqualRange(key)
	var out []V
	for c := range m.t.Range(first, last) {
		out = append(out, c.Value())
	}
	return out
}

// Count returns the number of values stored for key.
func (m *MultiMap[K, V]) Count(key K) int { return m.t.Count(key) }

// DeleteAll removes every value of key and returns how many were removed.
func (m *MultiMap[K, V]) DeleteAll(key K) int { return m.t.EraseKey(key) }

// EraseAt removes the single entry at c.
func (m *MultiMap[K, V]) EraseAt(c rbtree.Cursor[K, V]) { m.t.Erase(c) }

// Len returns the total number of entries.
func (m *MultiMap[K, V]) Len() int { return m.t.Len() }

// PeekMin returns the first entry without removing it.
func (m *MultiMap[K, V]) PeekMin() (K, V, bool) { return m.t.Min() }

// PopMin removes and returns the first entry, i.e. the earliest inserted
// value of the smallest key.
func (m *MultiMap[K, V]) PopMin() (k K, v V, ok bool) {
	c := m.t.Begin()
	if c.IsEnd() {
		return k, v, false
	}
	k, v = c.Key(), c.Value()
	m.t.Erase(c)
	return k, v, true
}

// All yields every entry in key order.
func (m *MultiMap[K, V]) All() iter.Seq2[K, V] { return m.t.All() }

// Clear removes all entries.
func (m *MultiMap[K, V]) Clear() { m.t.Clear() }

// Tree returns the underlying tree.
func (m *MultiMap[K, V]) Tree() *rbtree.Tree[K, V] { return m.t }
