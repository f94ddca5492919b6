// Package dstore implements a replicated ordered key-value store on top of the
// Dragonboat RAFT library. It implements store.IStore with linearizable reads and
// writes across all replicas of a shard.
//
// Architecture:
//
//   - Store Client (store.go): Turns IStore calls into internal.Command values for
//     writes (proposed with SyncPropose) and internal.Query values for reads (served
//     with SyncRead, or StaleRead for GetDBInfo).
//
//   - State Machine (statemachine.go): A Dragonboat IConcurrentStateMachine that owns
//     a db.KVDB (normally oak) and applies committed commands to it. The raft log
//     index of an entry is used as the write index, so every replica orders writes,
//     expirations and deletions identically.
//
//   - Protocol (internal): Command has a compact binary encoding because it is stored
//     in the raft log; Query is passed in-process and never serialized.
//
// Write Operations:
//
//	Set, SetE, SetEIfUnset, Expire, Delete and DeleteRange are proposed to the shard.
//	Once committed, Update applies them on every replica. DeleteRange carries its
//	window as Key and End and returns the number of removed entries as 8 big endian
//	bytes in the result data.
//
// Read Operations:
//
//	Get, Has, Range, Count and Seek use SyncRead, which waits until the local
//	replica has applied every committed entry. Range results are therefore a
//	consistent snapshot of one key window at one log position.
//
// Errors and Retries:
//
//	ErrSystemBusy is retried a few times with a short pause. Any other failure is
//	returned as a *store.Error. Operations the underlying database does not
//	support fail with store.RetCUnsupportedOperation on the replica.
//
// Snapshots:
//
//	SaveSnapshot and RecoverFromSnapshot delegate to db.KVDB Save and Load. The
//	snapshot is fuzzy: writes keep running while it is taken, and the raft log
//	entries after it are replayed on recovery.
//
// Example:
//
//	nh, err := dragonboat.NewNodeHost(nodeHostConfig)
//	if err != nil { ... }
//
//	dbFactory := func() db.KVDB { return oak.NewOakDB(oak.DefaultOptions()) }
//	err = nh.StartConcurrentReplica(clusterMembers, false,
//	    dstore.CreateStateMachineFactory(dbFactory), shardConfig)
//	if err != nil { ... }
//
//	s := dstore.NewDistributedStore(nh, shardID, 5*time.Second)
//	users, err := s.Range("user:", "user;", 100, false)
package dstore
