// Package oak implements an ordered key-value database (KVDB) on top of the
// red-black tree in lib/rbtree. It provides a complete implementation of the
// db.KVDB interface, including the ordered operations Range, Count, Seek and
// DeleteRange.
//
// The package focuses on:
//   - Ordered storage with O(log n) point operations and range scans that walk
//     the tree from a single lower-bound descent
//   - Time-based entry management with expiration and deletion capabilities
//   - Deadline-ordered garbage collection without full scans
//   - Persistent storage with an ordered binary encoding
//
// Key Components:
//
//   - oakImpl: The central database structure implementing db.KVDB. It owns
//     one Unique rbtree.Tree keyed by the entry key and guards it with a
//     sync.RWMutex, since the tree itself is single-writer. Readers (Get, Has,
//     Range, Count, Seek) share the read lock.
//     The write index is not generated by oakImpl; callers supply it so that
//     it can be derived from e.g. a raft log index.
//
//   - Entry: The stored value plus expiration index, deletion index and the
//     write index of the last update. An entry also holds two slots: cursors
//     into the expire and delete schedules. Because cursors of the tree stay
//     valid until their own element is erased, an update can unschedule the
//     previous deadlines in O(log n) without searching for them.
//
//   - Schedules: Two ordered.MultiMap[uint64, string] values ordered by
//     deadline. Several keys may share a deadline, which is why the multi
//     policy is used. The garbage collector pops due deadlines from the front.
//
// Internal Mechanisms:
//
//   - Write Index: A logical timestamp that orders operations. It only grows
//     (CompareAndSwap loop) and is used to reject stale writes (a write with a
//     lower index than the stored entry is ignored) and as the clock for
//     expiration and deletion.
//
//   - Visibility: Expired entries are hidden from Get, Range, Count and Seek
//     but still reported by Has. Deleted entries are hidden from everything.
//     Visibility is decided at read time, so results never depend on how far
//     the garbage collector has progressed.
//
//   - Garbage Collection: A single goroutine wakes up every GCInterval, pops all
//     deadlines that are due at the current write index, drops values of
//     expired entries and erases deleted entries from the tree.
//
//   - Persistence Format: little endian
//     1. Magic number "OAKDB\x00\x00\x00"
//     2. Version number (currently 1)
//     3. Number of entries
//     4. For each entry in ascending key order: key length, key, expiration
//     index, deletion index, write index, value length, value bytes
//     Load rejects snapshots whose keys are not strictly ascending with
//     ErrInvalidFormat.
//
//   - Metrics: GetInfo reports an estimated size based on a go-metrics
//     histogram of written value sizes, the tree height and black-height,
//     and the garbage collection backlog.
package oak
