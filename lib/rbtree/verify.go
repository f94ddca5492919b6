package rbtree

import "github.com/cockroachdb/errors"

// Validate checks the red-black properties, parent links, key order and the
// element count. It returns the first violation found, or nil.
func (t *Tree[K, V]) Validate() error {
	if t.root == nil {
		if t.size != 0 {
			return errors.AssertionFailedf("empty tree reports size %d", t.size)
		}
		return nil
	}
	if t.root.parent != nil {
		return errors.AssertionFailedf("root has a parent")
	}
	if t.root.color != black {
		return errors.AssertionFailedf("root is red")
	}
	count, _, err := t.validateSubtree(t.root)
	if err != nil {
		return err
	}
	if count != t.size {
		return errors.AssertionFailedf("size is %d but tree holds %d nodes", t.size, count)
	}
	return t.validateOrder()
}

// validateSubtree returns the node count and black-height of n.
func (t *Tree[K, V]) validateSubtree(n *node[K, V]) (count, blackHeight int, err error) {
	if n == nil {
		return 0, 1, nil
	}
	if n.dead {
		return 0, 0, errors.AssertionFailedf("erased node still linked")
	}
	if n.isRed() && (n.left.isRed() || n.right.isRed()) {
		return 0, 0, errors.AssertionFailedf("red node %v has a red child", n.key)
	}
	for _, c := range [2]*node[K, V]{n.left, n.right} {
		if c != nil && c.parent != n {
			return 0, 0, errors.AssertionFailedf("child %v of %v has a wrong parent link", c.key, n.key)
		}
	}
	lc, lh, err := t.validateSubtree(n.left)
	if err != nil {
		return 0, 0, err
	}
	rc, rh, err := t.validateSubtree(n.right)
	if err != nil {
		return 0, 0, err
	}
	if lh != rh {
		return 0, 0, errors.AssertionFailedf("black-height mismatch below %v: %d vs %d", n.key, lh, rh)
	}
	if n.color == black {
		lh++
	}
	return lc + rc + 1, lh, nil
}

func (t *Tree[K, V]) validateOrder() error {
	prev := minimum(t.root)
	for n := successor(prev); n != nil; prev, n = n, successor(n) {
		if t.less(n.key, prev.key) {
			return errors.AssertionFailedf("key %v is ordered before its predecessor %v", n.key, prev.key)
		}
		if t.policy == Unique && !t.less(prev.key, n.key) {
			return errors.AssertionFailedf("duplicate key %v in unique tree", n.key)
		}
	}
	return nil
}
