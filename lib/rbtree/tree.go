package rbtree

import "cmp"

// Tree is a red-black tree mapping keys of type K to values of type V.
// The zero value is not usable; create trees with New or NewOrdered.
type Tree[K, V any] struct {
	root   *node[K, V]
	less   LessFunc[K]
	policy Policy
	size   int
}

// New creates an empty tree ordered by less. It panics if less is nil.
func New[K, V any](less LessFunc[K], policy Policy) *Tree[K, V] {
	if less == nil {
		violate("New", "nil comparator")
	}
	if policy != Unique && policy != Multi {
		violate("New", "unknown policy "+policy.String())
	}
	return &Tree[K, V]{less: less, policy: policy}
}

// NewOrdered creates an empty tree using the natural order of K.
func NewOrdered[K cmp.Ordered, V any](policy Policy) *Tree[K, V] {
	return New[K, V](OrderedLess[K], policy)
}

// Len returns the number of elements.
func (t *Tree[K, V]) Len() int { return t.size }

// Empty reports whether the tree holds no elements.
func (t *Tree[K, V]) Empty() bool { return t.size == 0 }

// Policy returns the duplicate-key policy fixed at construction.
func (t *Tree[K, V]) Policy() Policy { return t.policy }

// KeyLess returns the comparator the tree was built with.
func (t *Tree[K, V]) KeyLess() LessFunc[K] { return t.less }

// ----------------------------------------------------------------------------
// Insert
// ----------------------------------------------------------------------------

// Insert adds key with value.
//
// For a Unique tree holding an equivalent key, the tree is left unchanged and
// the cursor of the existing element is returned with inserted == false.
// Otherwise a new element is created and returned with inserted == true. In a
// Multi tree the new element becomes the last of its equivalence class.
func (t *Tree[K, V]) Insert(key K, value V) (c Cursor[K, V], inserted bool) {
	var parent *node[K, V]
	link := &t.root
	for cur := t.root; cur != nil; {
		parent = cur
		switch {
		case t.less(key, cur.key):
			link = &cur.left
			cur = cur.left
		case t.policy == Unique && !t.less(cur.key, key):
			return Cursor[K, V]{t: t, n: cur}, false
		default:
			// ties go right so the class keeps insertion order
			link = &cur.right
			cur = cur.right
		}
	}

	n := allocate(key, value)
	n.parent = parent
	*link = n
	t.size++
	t.insertFixup(n)
	return Cursor[K, V]{t: t, n: n}, true
}

// insertFixup restores the red-black properties after z was attached as a
// red leaf. Every iteration either terminates or moves two levels up.
func (t *Tree[K, V]) insertFixup(z *node[K, V]) {
	for z.parent.isRed() {
		p := z.parent
		g := p.parent // exists, a red node is never the root
		if p == g.left {
			if u := g.right; u.isRed() {
				p.color, u.color, g.color = black, black, red
				z = g
				continue
			}
			if z == p.right {
				z = p
				t.rotateLeft(z)
				p = z.parent
			}
			p.color, g.color = black, red
			t.rotateRight(g)
		} else {
			if u := g.left; u.isRed() {
				p.color, u.color, g.color = black, black, red
				z = g
				continue
			}
			if z == p.left {
				z = p
				t.rotateRight(z)
				p = z.parent
			}
			p.color, g.color = black, red
			t.rotateLeft(g)
		}
	}
	t.root.color = black
}

// ----------------------------------------------------------------------------
// Erase
// ----------------------------------------------------------------------------

// Erase removes the element at c and returns a cursor to its successor (End
// if c was the last element). Only cursors denoting the erased element are
// invalidated. It panics if c is End, already erased, or from another tree.
func (t *Tree[K, V]) Erase(c Cursor[K, V]) Cursor[K, V] {
	t.checkOwned("Erase", c)
	if c.n == nil {
		violate("Erase", "end cursor")
	}
	next := successor(c.n)
	t.unlink(c.n)
	free(c.n)
	return Cursor[K, V]{t: t, n: next}
}

// EraseKey removes every element equivalent to key and returns how many
// were removed. A missing key is a no-op.
func (t *Tree[K, V]) EraseKey(key K) int {
	if t.policy == Unique {
		n := t.find(key)
		if n == nil {
			return 0
		}
		t.unlink(n)
		free(n)
		return 1
	}
	removed := 0
	first, last := t.lowerBound(key), t.upperBound(key)
	for n := first; n != last; removed++ {
		next := successor(n)
		t.unlink(n)
		free(n)
		n = next
	}
	return removed
}

// EraseRange removes the elements in [first, last) and returns last.
// first must not come after last.
func (t *Tree[K, V]) EraseRange(first, last Cursor[K, V]) Cursor[K, V] {
	t.checkOwned("EraseRange", first)
	t.checkOwned("EraseRange", last)
	if first.n == minimum(t.root) && last.n == nil {
		t.Clear()
		return t.End()
	}
	for n := first.n; n != last.n; {
		if n == nil {
			violate("EraseRange", "first is after last")
		}
		next := successor(n)
		t.unlink(n)
		free(n)
		n = next
	}
	return last
}

// unlink detaches z from the tree. When z has two children its in-order
// successor y is moved into z's position; y keeps its own payload so that
// cursors to y stay valid.
func (t *Tree[K, V]) unlink(z *node[K, V]) {
	var x, xParent *node[K, V]
	removedColor := z.color

	switch {
	case z.left == nil:
		x, xParent = z.right, z.parent
		t.transplant(z, z.right)
	case z.right == nil:
		x, xParent = z.left, z.parent
		t.transplant(z, z.left)
	default:
		y := minimum(z.right)
		removedColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	t.size--
	if removedColor == black {
		t.eraseFixup(x, xParent)
	}
}

// eraseFixup resolves the double-black at x, whose parent is passed
// separately because x may be a nil leaf.
func (t *Tree[K, V]) eraseFixup(x, parent *node[K, V]) {
	for x != t.root && x.isBlack() {
		if x == parent.left {
			w := parent.right
			if w.isRed() {
				w.color, parent.color = black, red
				t.rotateLeft(parent)
				w = parent.right
			}
			if w.left.isBlack() && w.right.isBlack() {
				w.color = red
				x, parent = parent, parent.parent
				continue
			}
			if w.right.isBlack() {
				w.left.color, w.color = black, red
				t.rotateRight(w)
				w = parent.right
			}
			w.color, parent.color = parent.color, black
			w.right.color = black
			t.rotateLeft(parent)
			x, parent = t.root, nil
		} else {
			w := parent.left
			if w.isRed() {
				w.color, parent.color = black, red
				t.rotateRight(parent)
				w = parent.left
			}
			if w.left.isBlack() && w.right.isBlack() {
				w.color = red
				x, parent = parent, parent.parent
				continue
			}
			if w.left.isBlack() {
				w.right.color, w.color = black, red
				t.rotateLeft(w)
				w = parent.left
			}
			w.color, parent.color = parent.color, black
			w.left.color = black
			t.rotateRight(parent)
			x, parent = t.root, nil
		}
	}
	if x != nil {
		x.color = black
	}
}

// ----------------------------------------------------------------------------
// Links and rotations
// ----------------------------------------------------------------------------

// transplant replaces the subtree rooted at u with the one rooted at v.
func (t *Tree[K, V]) transplant(u, v *node[K, V]) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (t *Tree[K, V]) rotateLeft(x *node[K, V]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	t.transplant(x, y)
	y.left = x
	x.parent = y
}

func (t *Tree[K, V]) rotateRight(x *node[K, V]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	t.transplant(x, y)
	y.right = x
	x.parent = y
}

// ----------------------------------------------------------------------------
// Whole-tree operations
// ----------------------------------------------------------------------------

// Clear removes all elements. Every cursor into the tree becomes invalid.
func (t *Tree[K, V]) Clear() {
	if t.root == nil {
		return
	}
	stack := []*node[K, V]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		free(n)
	}
	t.root = nil
	t.size = 0
}

// Swap exchanges the contents of t and other in O(1). Comparators and
// policies are swapped as well. Cursors obtained before the swap must not be
// used afterwards.
func (t *Tree[K, V]) Swap(other *Tree[K, V]) {
	*t, *other = *other, *t
}

// Clone returns a structural copy of t with the same shape and colors.
// Values are copied by assignment.
func (t *Tree[K, V]) Clone() *Tree[K, V] {
	c := &Tree[K, V]{less: t.less, policy: t.policy, size: t.size}
	c.root = cloneSubtree(t.root, nil)
	return c
}

func cloneSubtree[K, V any](n, parent *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	c := &node[K, V]{key: n.key, value: n.value, color: n.color, parent: parent}
	c.left = cloneSubtree(n.left, c)
	c.right = cloneSubtree(n.right, c)
	return c
}

// Min returns the smallest element.
func (t *Tree[K, V]) Min() (key K, value V, ok bool) {
	if n := minimum(t.root); n != nil {
		return n.key, n.value, true
	}
	return key, value, false
}

// Max returns the largest element. In a Multi tree this is the most recently
// inserted element of the largest class.
func (t *Tree[K, V]) Max() (key K, value V, ok bool) {
	if n := maximum(t.root); n != nil {
		return n.key, n.value, true
	}
	return key, value, false
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[K, V]) Height() int {
	return height(t.root)
}

func height[K, V any](n *node[K, V]) int {
	if n == nil {
		return 0
	}
	return 1 + max(height(n.left), height(n.right))
}

// BlackHeight returns the number of black nodes on any root-to-leaf path.
func (t *Tree[K, V]) BlackHeight() int {
	h := 0
	for n := t.root; n != nil; n = n.left {
		if n.color == black {
			h++
		}
	}
	return h
}

func (t *Tree[K, V]) checkOwned(op string, c Cursor[K, V]) {
	if c.t != t {
		violate(op, "cursor belongs to another tree")
	}
	if c.n != nil && c.n.dead {
		violate(op, "cursor refers to an erased element")
	}
}
