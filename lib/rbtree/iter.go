package rbtree

import "iter"

// The iterators below fetch the following node before yielding the current
// one, so the loop body may erase the element it was handed. Any other
// mutation during iteration leaves the remaining sequence unspecified.

// All yields every element in ascending order.
func (t *Tree[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		ascend(minimum(t.root), nil, yield)
	}
}

// Backward yields every element in descending order.
func (t *Tree[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		descend(maximum(t.root), yield)
	}
}

// Keys yields every key in ascending order.
func (t *Tree[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range t.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Ascend yields the elements with keys in [from, to) in ascending order.
func (t *Tree[K, V]) Ascend(from, to K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if !t.less(from, to) {
			return
		}
		ascend(t.lowerBound(from), t.lowerBound(to), yield)
	}
}

// AscendFrom yields the elements with keys not less than from.
func (t *Tree[K, V]) AscendFrom(from K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		ascend(t.lowerBound(from), nil, yield)
	}
}

// Descend yields the elements with keys not greater than from in
// descending order.
func (t *Tree[K, V]) Descend(from K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		descend(t.Floor(from).n, yield)
	}
}

// Range yields the elements in [first, last) by cursor.
func (t *Tree[K, V]) Range(first, last Cursor[K, V]) iter.Seq[Cursor[K, V]] {
	t.checkOwned("Range", first)
	t.checkOwned("Range", last)
	return func(yield func(Cursor[K, V]) bool) {
		for n := first.n; n != nil && n != last.n; {
			next := successor(n)
			if !yield(Cursor[K, V]{t: t, n: n}) {
				return
			}
			n = next
		}
	}
}

func ascend[K, V any](n, stop *node[K, V], yield func(K, V) bool) {
	for n != nil && n != stop {
		next := successor(n)
		if !yield(n.key, n.value) {
			return
		}
		n = next
	}
}

func descend[K, V any](n *node[K, V], yield func(K, V) bool) {
	for n != nil {
		prev := predecessor(n)
		if !yield(n.key, n.value) {
			return
		}
		n = prev
	}
}
