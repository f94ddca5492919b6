package ordered

import (
	"cmp"
	"iter"

	"github.com/ValentinKolb/rbKV/lib/rbtree"
)

// ----------------------------------------------------------------------------
// Set
// ----------------------------------------------------------------------------

// Set is a sorted set of unique keys.
type Set[K any] struct {
	t *rbtree.Tree[K, struct{}]
}

// NewSet creates an empty set ordered by less.
func NewSet[K any](less rbtree.LessFunc[K]) *Set[K] {
	return &Set[K]{t: rbtree.New[K, struct{}](less, rbtree.Unique)}
}

// NewOrderedSet creates an empty set using the natural order of K.
func NewOrderedSet[K cmp.Ordered]() *Set[K] {
	return NewSet[K](rbtree.OrderedLess[K])
}

// Insert adds key and reports whether it was not present before.
func (s *Set[K]) Insert(key K) bool {
	_, ok := s.t.Insert(key, struct{}{})
	return ok
}

// Contains reports whether key is in the set.
func (s *Set[K]) Contains(key K) bool { return s.t.Contains(key) }

// Erase removes key and reports whether it was present.
func (s *Set[K]) Erase(key K) bool { return s.t.EraseKey(key) > 0 }

// Len returns the number of keys.
func (s *Set[K]) Len() int { return s.t.Len() }

// Min returns the smallest key.
func (s *Set[K]) Min() (K, bool) {
	k, _, ok := s.t.Min()
	return k, ok
}

// Max returns the largest key.
func (s *Set[K]) Max() (K, bool) {
	k, _, ok := s.t.Max()
	return k, ok
}

// All yields the keys in ascending order.
func (s *Set[K]) All() iter.Seq[K] { return s.t.Keys() }

// Range yields the keys in [from, to).
func (s *Set[K]) Range(from, to K) iter.Seq[K] {
	return keysOf(s.t.Ascend(from, to))
}

// Clear removes all keys.
func (s *Set[K]) Clear() { s.t.Clear() }

// Tree returns the underlying tree.
func (s *Set[K]) Tree() *rbtree.Tree[K, struct{}] { return s.t }

// ----------------------------------------------------------------------------
// MultiSet
// ----------------------------------------------------------------------------

// MultiSet is a sorted collection that allows equivalent keys.
type MultiSet[K any] struct {
	t *rbtree.Tree[K, struct{}]
}

// NewMultiSet creates an empty multiset ordered by less.
func NewMultiSet[K any](less rbtree.LessFunc[K]) *MultiSet[K] {
	return &MultiSet[K]{t: rbtree.New[K, struct{}](less, rbtree.Multi)}
}

// NewOrderedMultiSet creates an empty multiset using the natural order of K.
func NewOrderedMultiSet[K cmp.Ordered]() *MultiSet[K] {
	return NewMultiSet[K](rbtree.OrderedLess[K])
}

// Insert adds key. It always succeeds.
func (s *MultiSet[K]) Insert(key K) rbtree.Cursor[K, struct{}] {
	c, _ := s.t.Insert(key, struct{}{})
	return c
}

// Count returns how many keys equivalent to key are stored.
func (s *MultiSet[K]) Count(key K) int { return s.t.Count(key) }

// EraseAll removes every key equivalent to key and returns the number removed.
func (s *MultiSet[K]) EraseAll(key K) int { return s.t.EraseKey(key) }

// EraseOne removes the earliest inserted key equivalent to key.
func (s *MultiSet[K]) EraseOne(key K) bool {
	c := s.t.Find(key)
	if c.IsEnd() {
		return false
	}
	s.t.Erase(c)
	return true
}

// Len returns the number of keys including duplicates.
func (s *MultiSet[K]) Len() int { return s.t.Len() }

// All yields the keys in ascending order, duplicates in insertion order.
func (s *MultiSet[K]) All() iter.Seq[K] { return s.t.Keys() }

// Tree returns the underlying tree.
func (s *MultiSet[K]) Tree() *rbtree.Tree[K, struct{}] { return s.t }

func keysOf[K, V any](seq iter.Seq2[K, V]) iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range seq {
			if !yield(k) {
				return
			}
		}
	}
}
