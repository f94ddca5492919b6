package internal

import (
	"github.com/ValentinKolb/rbKV/lib/rbtree"
)

// --------------------------------------------------------------------------
// Entry Type (value with metadata)
// --------------------------------------------------------------------------

// Slot is a handle to one deadline in an expiry schedule. The zero Slot is
// not scheduled.
type Slot = rbtree.Cursor[uint64, string]

// Entry stores a value with its metadata
type Entry struct {
	Value    []byte // Stored data (nil once expired)
	ExpireAt uint64 // Expiration index (0 = never)
	DeleteAt uint64 // Deletion index (0 = never)
	Index    uint64 // Write index when this entry was created/updated

	ExpireSlot Slot // position in the expire schedule, if scheduled
	DeleteSlot Slot // position in the delete schedule, if scheduled
}

// TTLInfo returns whether the entry is expired and whether the entry is deleted (at the given write index)
func (e *Entry) TTLInfo(writeIdx uint64) (isExpired, isDeleted bool) {
	isExpired = e.ExpireAt != 0 && writeIdx >= e.ExpireAt
	isDeleted = e.DeleteAt != 0 && writeIdx >= e.DeleteAt
	return isExpired || isDeleted, isDeleted
}

// Live reports whether the entry is visible to Get and ordered queries.
func (e *Entry) Live(writeIdx uint64) bool {
	isExpired, _ := e.TTLInfo(writeIdx)
	return !isExpired
}
