// Package db provides a standardized interface for ordered key-value database implementations.
// It defines the KVDB interface that allows for consistent interaction with storage
// engines while abstracting implementation details.
//
// The package focuses on:
//   - A unified interface for point and ordered key-value operations
//   - Feature discovery through capability flags
//   - Standardized persistence operations
//   - Comprehensive metadata reporting
//
// Key Components:
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides methods for basic operations (Set, Get, Has, Delete),
//     time-based operations (SetE, Expire), specialized operations (SetEIfUnset),
//     ordered operations over key windows (Range, Count, Seek, DeleteRange),
//     metadata retrieval (GetInfo), and persistence operations (Save, Load).
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. This allows clients to
//     discover supported operations at runtime.
//
//   - Implementation Identifiers: The Implementation type provides string constants
//     for different database backends (currently "oak").
//
//   - Database Information: The DatabaseInfo structure provides standardized
//     reporting on database state, including size statistics, implementation type,
//     and implementation-specific metadata. Size statistics are estimated.
//
// Note on Key Windows:
//   - All ordered operations take a half-open window [start, end). Keys compare byte-wise.
//   - An empty end means "up to the largest key"; an empty start already covers the smallest key.
//   - A window with end <= start (and end != "") is empty.
//
// Note on Time-Based Operations:
//   - Write Operations and Time-Tracking: All write operations require a write-index parameter
//     that serves as a logical timestamp. This write-index is used to:
//     1. Record when an entry was created or modified
//     2. Calculate expiration and deletion times (by adding offsets to the current write-index)
//     3. Update the database's global logical clock
//   - Read Operations: Read methods do not accept a time-index parameter as they always operate
//     against the most recently set write-index.
//   - Manual Time Advancement: If the caller needs to advance the logical time without performing
//     a write operation, the SetWriteIdx() method should be used.
//   - Monotonicity Guarantee: All implementations must ensure that the write-index only increases
//     monotonically. Attempts to set a write-index lower than the current one must be ignored.
//
// Note on Garbage Collection:
//   - All implementations must ensure that deleted entries are eventually removed from
//     the database to prevent memory leaks.
//   - External Consistency: Implementations must maintain strong external consistency
//     regardless of their internal garbage collection state:
//   - Get() and Range() must never return an entry that has logically expired.
//   - Has() must never return true for an entry that has been logically deleted.
//   - Count() and Seek() follow the same visibility as Range().
//
// Related Packages:
//
// The engines/oak package (github.com/ValentinKolb/rbKV/lib/db/engines/oak) implements
// KVDB on top of the red-black tree in lib/rbtree, with an ordered expiry schedule
// driving its background garbage collection and a binary persistence format.
//
// The testing package (github.com/ValentinKolb/rbKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
