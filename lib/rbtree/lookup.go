package rbtree

// Find returns the first element equivalent to key, or End.
func (t *Tree[K, V]) Find(key K) Cursor[K, V] {
	return Cursor[K, V]{t: t, n: t.find(key)}
}

// Contains reports whether an element equivalent to key exists.
func (t *Tree[K, V]) Contains(key K) bool {
	return t.find(key) != nil
}

// LowerBound returns the first element whose key is not less than key.
func (t *Tree[K, V]) LowerBound(key K) Cursor[K, V] {
	return Cursor[K, V]{t: t, n: t.lowerBound(key)}
}

// UpperBound returns the first element whose key is greater than key.
func (t *Tree[K, V]) UpperBound(key K) Cursor[K, V] {
	return Cursor[K, V]{t: t, n: t.upperBound(key)}
}

// EqualRange returns the half-open range [first, last) of elements
// equivalent to key. Both cursors are equal when there is none.
func (t *Tree[K, V]) EqualRange(key K) (first, last Cursor[K, V]) {
	return t.LowerBound(key), t.UpperBound(key)
}

// Count returns the number of elements equivalent to key.
func (t *Tree[K, V]) Count(key K) int {
	if t.policy == Unique {
		if t.find(key) != nil {
			return 1
		}
		return 0
	}
	n, last := t.lowerBound(key), t.upperBound(key)
	count := 0
	for ; n != last; n = successor(n) {
		count++
	}
	return count
}

// Floor returns the last element whose key is not greater than key, or End.
func (t *Tree[K, V]) Floor(key K) Cursor[K, V] {
	ub := t.upperBound(key)
	if ub == nil {
		return t.RBegin()
	}
	return Cursor[K, V]{t: t, n: predecessor(ub)}
}

func (t *Tree[K, V]) find(key K) *node[K, V] {
	if t.policy == Multi {
		n := t.lowerBound(key)
		if n != nil && !t.less(key, n.key) {
			return n
		}
		return nil
	}
	n := t.root
	for n != nil {
		switch {
		case t.less(key, n.key):
			n = n.left
		case t.less(n.key, key):
			n = n.right
		default:
			return n
		}
	}
	return nil
}

func (t *Tree[K, V]) lowerBound(key K) *node[K, V] {
	var best *node[K, V]
	for n := t.root; n != nil; {
		if !t.less(n.key, key) {
			best = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return best
}

func (t *Tree[K, V]) upperBound(key K) *node[K, V] {
	var best *node[K, V]
	for n := t.root; n != nil; {
		if t.less(key, n.key) {
			best = n
			n = n.left
		} else {
			n = n.right
		}
	}
	return best
}
