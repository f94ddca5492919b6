// Package store provides a high-level interface for ordered key-value storage
// with expiration, deletion scheduling, range queries and unified error handling.
// It is the abstraction layer over db.KVDB implementations that owns write index
// management and standardized error reporting.
//
// Key Components:
//
//   - IStore Interface: The operations every store offers: point writes (Set, SetE,
//     SetEIfUnset, Expire, Delete, DeleteRange), point reads (Get, Has), ordered
//     reads (Range, Count, Seek) and metadata (GetDBInfo). Errors returned by
//     implementations are *Error values carrying a RetCode.
//
//   - Error System: RetCode distinguishes internal failures, operations the
//     underlying database does not support, and invalid operations.
//
//   - DBFactory: Creates the db.KVDB instance used by a store, so that the engine
//     (and its options) can be chosen by the caller.
//
// Implementations:
//
//	- Local Store (lstore): Uses a db.KVDB directly and generates write indices with
//	  an atomic counter. Suitable for single-node use.
//	  Available in the "github.com/ValentinKolb/rbKV/lib/store/lstore" package.
//
//	- Distributed Store (dstore): Replicates every write through the Dragonboat RAFT
//	  library; the raft log index becomes the write index. Reads are linearizable.
//	  Available in the "github.com/ValentinKolb/rbKV/lib/store/dstore" package.
package store
