package rbtree

// Cursor denotes an element of a Tree or the end sentinel. Cursors are
// small values and may be copied freely. The zero Cursor belongs to no tree
// and must not be used.
type Cursor[K, V any] struct {
	t *Tree[K, V]
	n *node[K, V] // nil is End
}

// Begin returns a cursor to the first element, or End for an empty tree.
func (t *Tree[K, V]) Begin() Cursor[K, V] {
	return Cursor[K, V]{t: t, n: minimum(t.root)}
}

// End returns the past-the-end cursor.
func (t *Tree[K, V]) End() Cursor[K, V] {
	return Cursor[K, V]{t: t}
}

// RBegin returns a cursor to the last element, the start of a reverse walk.
func (t *Tree[K, V]) RBegin() Cursor[K, V] {
	return Cursor[K, V]{t: t, n: maximum(t.root)}
}

// REnd returns the sentinel terminating a reverse walk. It is the same
// position as End.
func (t *Tree[K, V]) REnd() Cursor[K, V] {
	return t.End()
}

// Next returns the cursor after c. From the last element it returns End,
// from End it wraps to Begin.
func (c Cursor[K, V]) Next() Cursor[K, V] {
	c.mustTree("Next")
	if c.n == nil {
		return c.t.Begin()
	}
	c.mustLive("Next")
	return Cursor[K, V]{t: c.t, n: successor(c.n)}
}

// Prev returns the cursor before c. From the first element it returns End,
// from End it wraps to the last element.
func (c Cursor[K, V]) Prev() Cursor[K, V] {
	c.mustTree("Prev")
	if c.n == nil {
		return c.t.RBegin()
	}
	c.mustLive("Prev")
	return Cursor[K, V]{t: c.t, n: predecessor(c.n)}
}

// Key returns the key at c. It panics on End or an erased element.
func (c Cursor[K, V]) Key() K {
	c.mustElem("Key")
	return c.n.key
}

// Value returns the value at c. It panics on End or an erased element.
func (c Cursor[K, V]) Value() V {
	c.mustElem("Value")
	return c.n.value
}

// ValuePtr returns a pointer to the stored value. The pointer stays valid
// until the element is erased.
func (c Cursor[K, V]) ValuePtr() *V {
	c.mustElem("ValuePtr")
	return &c.n.value
}

// SetValue replaces the value at c. Keys cannot be modified.
func (c Cursor[K, V]) SetValue(v V) {
	c.mustElem("SetValue")
	c.n.value = v
}

// IsEnd reports whether c is the end sentinel.
func (c Cursor[K, V]) IsEnd() bool {
	return c.n == nil
}

// Valid reports whether c denotes a live element.
func (c Cursor[K, V]) Valid() bool {
	return c.n != nil && !c.n.dead
}

// Equal reports whether both cursors denote the same position.
func (c Cursor[K, V]) Equal(o Cursor[K, V]) bool {
	return c.t == o.t && c.n == o.n
}

func (c Cursor[K, V]) mustTree(op string) {
	if c.t == nil {
		violate(op, "zero cursor")
	}
}

func (c Cursor[K, V]) mustLive(op string) {
	if c.n.dead {
		violate(op, "cursor refers to an erased element")
	}
}

func (c Cursor[K, V]) mustElem(op string) {
	if c.n == nil {
		violate(op, "end cursor is not dereferenceable")
	}
	c.mustLive(op)
}
