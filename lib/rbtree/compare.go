package rbtree

import (
	"cmp"
	"fmt"
)

// LessFunc reports whether a is ordered strictly before b.
//
// The function must be a strict weak ordering: irreflexive, transitive, and
// with transitive equivalence (two keys are equivalent when neither is less
// than the other). The tree does not verify this at runtime; a violating
// comparator leaves the tree in an unspecified order. Validate reports the
// inconsistencies it can observe.
type LessFunc[K any] func(a, b K) bool

// OrderedLess is the LessFunc for types with a natural order.
func OrderedLess[K cmp.Ordered](a, b K) bool {
	return cmp.Less(a, b)
}

// Policy decides how Insert treats a key equivalent to one already stored.
type Policy uint8

const (
	// Unique rejects equivalent keys.
	Unique Policy = iota
	// Multi accepts equivalent keys and appends them to their class.
	Multi
)

func (p Policy) String() string {
	switch p {
	case Unique:
		return "unique"
	case Multi:
		return "multi"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

// ----------------------------------------------------------------------------
// Precondition violations
// ----------------------------------------------------------------------------

// PreconditionViolation is the panic value used when a caller breaks the
// contract of a method, e.g. by dereferencing the end cursor.
type PreconditionViolation struct {
	Op     string
	Reason string
}

func (e *PreconditionViolation) Error() string {
	return fmt.Sprintf("rbtree: %s: %s", e.Op, e.Reason)
}

func violate(op, reason string) {
	panic(&PreconditionViolation{Op: op, Reason: reason})
}
