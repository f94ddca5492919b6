// Package internal holds the messages exchanged between a dstore client and its
// replicated state machine. It is not meant to be imported outside of dstore.
//
// Commands are writes. They are encoded with MarshalBinary, proposed to the raft
// shard, stored in the raft log and applied by every replica in log order, so the
// encoding is part of the on-disk format:
//
//	offset  size  field
//	0       1     command type (Set, SetE, SetIfUnset, Expire, Delete, DeleteRange)
//	1       8     expireIn  (uint64, big endian)
//	9       8     deleteIn  (uint64, big endian)
//	17      4     key length K (uint32, big endian)
//	21      4     end length E (uint32, big endian), only used by DeleteRange
//	25      K     key, or the window start of DeleteRange
//	25+K    E     window end of DeleteRange (empty = unbounded)
//	25+K+E  rest  value, only present for the Set variants
//
// Queries are reads. They are passed to Lookup as Go values and never leave the
// process, so they have no encoding. Range and Count read the window [Key, End),
// Seek reads the first entry at or after Key.
//
// Both command and query types map to the db.Feature they need, which lets the
// state machine reject operations that the underlying engine does not support
// before touching it.
package internal
