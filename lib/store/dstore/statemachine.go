package dstore

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/lib/store/dstore/internal"
	"github.com/cockroachdb/errors"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

// --------------------------------------------------------------------------
// State Machine Implementation
// --------------------------------------------------------------------------

// KVStateMachine is a state machine implementation for Dragonboat RAFT
type KVStateMachine struct {
	replicaID uint64
	shardID   uint64
	database  db.KVDB // the actual dataStorage
}

// CreateStateMachineFactory returns a function that can be used by dragonboat to create a new state machine for a node host
// The factory pattern is used to enable the caller to pass an interchangeable dbFactory
func CreateStateMachineFactory(dbFactory store.DBFactory) func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
	return func(shardID uint64, replicaID uint64) sm.IConcurrentStateMachine {
		return &KVStateMachine{
			replicaID: replicaID,
			shardID:   shardID,
			database:  dbFactory(),
		}
	}
}

// Lookup handles read-only queries by mapping each Query operation to the corresponding KVDB method.
func (fsm *KVStateMachine) Lookup(itf interface{}) (interface{}, error) {

	// try to parse Query into Query struct
	q, ok := itf.(internal.Query)
	if !ok {
		return nil, store.NewError(store.RetCInternalError, fmt.Sprintf("invalid Query type: %T", itf))
	}

	if !fsm.database.SupportsFeature(q.Type.ToDBFeature()) {
		return nil, store.NewError(store.RetCUnsupportedOperation, fmt.Sprintf("%s operation is not supported", q.Type))
	}

	// Handle different Query types
	switch q.Type {
	case internal.QueryTGet:
		val, ok := fsm.database.Get(q.Key)
		return internal.QueryResult{
			Value: val,
			Ok:    ok,
		}, nil
	case internal.QueryTHas:
		return fsm.database.Has(q.Key), nil
	case internal.QueryTRange:
		return fsm.database.Range(q.Key, q.End, q.Limit, q.Reverse), nil
	case internal.QueryTCount:
		return fsm.database.Count(q.Key, q.End), nil
	case internal.QueryTSeek:
		entry, ok := fsm.database.Seek(q.Key)
		return internal.QueryResult{
			Ok:    ok,
			Key:   entry.Key,
			Value: entry.Value,
		}, nil
	case internal.QueryTGetDBInfo:
		return fsm.database.GetInfo(), nil
	default:
		return nil, store.NewError(store.RetCInvalidOperation, fmt.Sprintf("unknown Query operation: %d", q.Type))
	}
}

// Update handles write commands on the KVDB instance
// All write operations are serialized into []byte and are accessible via the entries struct
func (fsm *KVStateMachine) Update(entries []sm.Entry) ([]sm.Entry, error) {

	// Nothing to do
	if len(entries) == 0 {
		return entries, nil
	}

	// Stats
	start := time.Now()

	for idx, e := range entries {
		// Handle each entry
		if len(e.Cmd) == 0 {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInvalidOperation), Data: []byte("empty command ignored")}
			continue
		}
		// Deserialize the command
		cmd := internal.Command{}
		err := cmd.Deserialize(e.Cmd)
		if err != nil {
			entries[idx].Result = sm.Result{Value: uint64(store.RetCInternalError), Data: []byte(fmt.Sprintf("failed to deserialize command: %v", err))}
			continue
		}

		// Check if the db supports the operation
		feat, err := cmd.Type.ToDBFeature()
		if err != nil {
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
			continue
		}
		if !fsm.database.SupportsFeature(feat) {
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCUnsupportedOperation),
				Data:  []byte(fmt.Sprintf("%s operation is not supported", cmd.Type)),
			}
			continue
		}

		switch cmd.Type {
		case internal.CommandTSet:
			fsm.database.Set(cmd.Key, cmd.Value, e.Index)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  []byte(fmt.Sprintf("set: key=%s", cmd.Key)),
			}
		case internal.CommandTSetE:
			fsm.database.SetE(cmd.Key, cmd.Value, e.Index, cmd.ExpireIn, cmd.DeleteIn)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  []byte(fmt.Sprintf("set: key=%s", cmd.Key)),
			}
		case internal.CommandTSetIfUnset:
			fsm.database.SetEIfUnset(cmd.Key, cmd.Value, e.Index, cmd.ExpireIn, cmd.DeleteIn)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  []byte(fmt.Sprintf("setIfUnset: key=%s", cmd.Key)),
			}
		case internal.CommandTExpire:
			fsm.database.Expire(cmd.Key, e.Index)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  []byte(fmt.Sprintf("expired key=%s", cmd.Key)),
			}
		case internal.CommandTDelete:
			fsm.database.Delete(cmd.Key, e.Index)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  []byte(fmt.Sprintf("deleted key=%s", cmd.Key)),
			}
		case internal.CommandTDeleteRange:
			removed := fsm.database.DeleteRange(cmd.Key, cmd.End, e.Index)
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCSuccess),
				Data:  binary.BigEndian.AppendUint64(nil, removed),
			}
		default:
			entries[idx].Result = sm.Result{
				Value: uint64(store.RetCInvalidOperation),
				Data:  []byte(fmt.Sprintf("unknown Command operation: %s", cmd.Type)),
			}
		}
	}

	// Log if the update took long
	if elapsed := time.Since(start); elapsed > time.Millisecond {
		log.Infof("State machine took long to update. Batch updated %d entries, took %.2fms:", len(entries), float64(elapsed)/float64(time.Millisecond))
	}
	return entries, nil
}

// PrepareSnapshot is not used. We don't need to prepare anything since we use fuzzy snapshotting
func (fsm *KVStateMachine) PrepareSnapshot() (interface{}, error) {
	return nil, nil
}

// SaveSnapshot saves a fuzzy db snapshot to the writer
func (fsm *KVStateMachine) SaveSnapshot(_ interface{}, writer io.Writer, _ sm.ISnapshotFileCollection, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureSave) {
		return errors.New("the used KVDB implementation does not support Save() operations")
	}
	return fsm.database.Save(writer)
}

// RecoverFromSnapshot replaces the database content with the snapshot.
func (fsm *KVStateMachine) RecoverFromSnapshot(r io.Reader, _ []sm.SnapshotFile, _ <-chan struct{}) error {
	if !fsm.database.SupportsFeature(db.FeatureLoad) {
		return errors.New("the used KVDB implementation does not support Load() operations")
	}
	return fsm.database.Load(r)
}

// Close performs any necessary cleanup.
func (fsm *KVStateMachine) Close() error {
	return fsm.database.Close()
}
