// Package rbtree provides the ordered associative container engine used by rbKV.
// It is a red-black binary search tree over an arbitrary key type with a
// caller-supplied strict weak ordering, and it is the single structure behind
// the set, multiset, map and multimap containers in package ordered as well as
// the oak storage engine.
//
// Key Components:
//
//   - Tree: The container. A Tree is created with a LessFunc and a Policy.
//     Unique trees reject a key that is equivalent to one already stored,
//     Multi trees accept it and place it behind all existing equivalent keys,
//     so that every equivalence class is kept in insertion order.
//
//   - Cursor: A position inside a Tree, either an element or the end
//     sentinel. Cursors step in both directions; stepping past either end
//     yields End, and stepping from End wraps to the first (Next) or the last
//     (Prev) element.
//
//   - Lookup: Find, LowerBound, UpperBound, EqualRange and Count all run a
//     single O(log n) descent and return cursors, so a range query is simply
//     a walk from one cursor to another.
//
//   - Iteration: All, Backward, Ascend and Descend return iter.Seq2 values for
//     use with range-over-func loops.
//
//   - Validate: Checks every red-black and ordering invariant and reports the
//     first violation as an assertion error. It is meant for tests and
//     debugging, not for production paths.
//
// Complexity:
//   - Insert, Erase by cursor, Find, LowerBound, UpperBound: O(log n)
//   - EraseKey / Count on a class of size k: O(log n + k)
//   - Next / Prev: amortized O(1), worst case O(log n)
//   - Clear, Clone, Validate: O(n)
//
// Cursor stability:
//
// Every element lives in its own node and erasing an element relinks the tree
// structure around the removed node instead of moving payloads between nodes.
// Consequently inserting never invalidates any cursor, and erasing invalidates
// only cursors that denote the erased element. Pointers returned by
// Cursor.ValuePtr follow the same rule.
//
// Errors:
//
// Violating a precondition (dereferencing End, using a cursor whose element
// was erased, passing a cursor of another tree) is a programming error. The
// tree panics with a *PreconditionViolation in that case. A missing key is not
// an error: lookups return End and counting operations return 0.
//
// Thread-safety:
//
// A Tree is not safe for concurrent use. Read-only methods may run in
// parallel with each other, but any mutation requires exclusive access. The
// oak engine guards its trees with a sync.RWMutex.
package rbtree
