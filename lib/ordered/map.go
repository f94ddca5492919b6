package ordered

import (
	"cmp"
	"iter"

	"github.com/ValentinKolb/rbKV/lib/rbtree"
)

// Map is a sorted map with unique keys.
type Map[K, V any] struct {
	t *rbtree.Tree[K, V]
}

// NewMap creates an empty map ordered by less.
func NewMap[K, V any](less rbtree.LessFunc[K]) *Map[K, V] {
	return &Map[K, V]{t: rbtree.New[K, V](less, rbtree.Unique)}
}

// NewOrderedMap creates an empty map using the natural order of K.
func NewOrderedMap[K cmp.Ordered, V any]() *Map[K, V] {
	return NewMap[K, V](rbtree.OrderedLess[K])
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	c := m.t.Find(key)
	if c.IsEnd() {
		return value, false
	}
	return c.Value(), true
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool { return m.t.Contains(key) }

// Set stores value under key, replacing an existing value.
// It reports whether the key was newly added.
func (m *Map[K, V]) Set(key K, value V) (added bool) {
	c, added := m.t.Insert(key, value)
	if !added {
		c.SetValue(value)
	}
	return added
}

// SetIfAbsent stores value only if key is missing. It returns the value that
// is stored afterwards and whether it was added.
func (m *Map[K, V]) SetIfAbsent(key K, value V) (V, bool) {
	c, added := m.t.Insert(key, value)
	return c.Value(), added
}

// GetOrInsert returns a pointer to the value for key, inserting the zero
// value first if key is missing. The pointer stays valid until key is
// deleted.
func (m *Map[K, V]) GetOrInsert(key K) *V {
	var zero V
	c, _ := m.t.Insert(key, zero)
	return c.ValuePtr()
}

// Delete removes key and reports whether it was present.
func (m *Map[K, V]) Delete(key K) bool { return m.t.EraseKey(key) > 0 }

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.t.Len() }

// Ceil returns the entry with the smallest key not less than key.
func (m *Map[K, V]) Ceil(key K) (k K, v V, ok bool) {
	return entryAt(m.t.LowerBound(key))
}

// Floor returns the entry with the largest key not greater than key.
func (m *Map[K, V]) Floor(key K) (k K, v V, ok bool) {
	return entryAt(m.t.Floor(key))
}

// All yields the entries in ascending key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] { return m.t.All() }

// Backward yields the entries in descending key order.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] { return m.t.Backward() }

// Range yields the entries with keys in [from, to).
func (m *Map[K, V]) Range(from, to K) iter.Seq2[K, V] { return m.t.Ascend(from, to) }

// Clear removes all entries.
func (m *Map[K, V]) Clear() { m.t.Clear() }

// Tree returns the underlying tree.
func (m *Map[K, V]) Tree() *rbtree.Tree[K, V] { return m.t }

func entryAt[K, V any](c rbtree.Cursor[K, V]) (k K, v V, ok bool) {
	if c.IsEnd() {
		return k, v, false
	}
	return c.Key(), c.Value(), true
}
