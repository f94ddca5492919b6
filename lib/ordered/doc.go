// Package ordered provides sorted container types built on lib/rbtree.
//
// All four containers share one tree implementation and differ only in the
// duplicate policy and whether a value is stored:
//
//   - Set:      unique keys, no values
//   - MultiSet: equivalent keys allowed, kept in insertion order
//   - Map:      unique keys with values
//   - MultiMap: equivalent keys allowed, each with its own value
//
// Each container has a New* constructor taking a comparator and a
// NewOrdered* constructor for cmp.Ordered keys. Tree exposes the underlying
// rbtree.Tree for cursor-level access; cursor stability rules of that package
// apply unchanged.
//
// The containers are not safe for concurrent use.
package ordered
