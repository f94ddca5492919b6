package rbtree

type color bool

const (
	red   color = true
	black color = false
)

// node is a single element. key never changes after allocation; parent is
// a back-link used for stepping and rebalancing only.
type node[K, V any] struct {
	key    K
	value  V
	left   *node[K, V]
	right  *node[K, V]
	parent *node[K, V]
	color  color
	dead   bool
}

// isBlack treats nil leaves as black.
func (n *node[K, V]) isBlack() bool {
	return n == nil || n.color == black
}

func (n *node[K, V]) isRed() bool {
	return n != nil && n.color == red
}

// ----------------------------------------------------------------------------
// Node store
// ----------------------------------------------------------------------------

// allocate returns a detached red node. Insert calls it before touching any
// link so a failed allocation leaves the tree untouched.
func allocate[K, V any](key K, value V) *node[K, V] {
	return &node[K, V]{key: key, value: value, color: red}
}

// free detaches n and marks it dead so that outstanding cursors can detect
// the use-after-erase. The payload is cleared to drop references.
func free[K, V any](n *node[K, V]) {
	var zk K
	var zv V
	n.key, n.value = zk, zv
	n.left, n.right, n.parent = nil, nil, nil
	n.dead = true
}

// ----------------------------------------------------------------------------
// Structural helpers
// ----------------------------------------------------------------------------

func minimum[K, V any](n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func maximum[K, V any](n *node[K, V]) *node[K, V] {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

// successor returns the in-order next node or nil.
func successor[K, V any](n *node[K, V]) *node[K, V] {
	if n.right != nil {
		return minimum(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n, p = p, p.parent
	}
	return p
}

// predecessor returns the in-order previous node or nil.
func predecessor[K, V any](n *node[K, V]) *node[K, V] {
	if n.left != nil {
		return maximum(n.left)
	}
	p := n.parent
	for p != nil && n == p.left {
		n, p = p, p.parent
	}
	return p
}
