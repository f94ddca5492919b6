// Package lstore implements store.IStore on a single node. It wraps one db.KVDB
// (usually oak) and keeps nothing but a write index of its own, so data lives only
// as long as the process does.
//
// Every write takes the next value of an atomic counter as its write index. The
// index drives the database's stale-write rejection as well as its expiration and
// deletion deadlines, which means that expireIn and deleteIn count writes to this
// store, not wall-clock time.
//
// Each operation first checks db.KVDB.SupportsFeature and returns a *store.Error
// with RetCUnsupportedOperation instead of calling an operation the engine lacks.
//
// Example:
//
//	s := lstore.NewLocalStore(func() db.KVDB { return oak.NewOakDB(oak.DefaultOptions()) })
//
//	_ = s.SetE("session:123", data, 300, 0)
//	value, ok, err := s.Get("session:123")
//
//	// the first 10 sessions in key order
//	sessions, err := s.Range("session:", "session;", 10, false)
//
// For replicated shards use dstore, which implements the same interface on top of
// a raft state machine.
package lstore
