package dstore

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/lib/store/dstore/internal"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
	sm "github.com/lni/dragonboat/v4/statemachine"
)

var (
	retries = 5
	log     = logger.GetLogger("store")
)

// storeImpl is the raft backed implementation of store.IStore.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type storeImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	timeout time.Duration
}

// NewDistributedStore creates a new distributed store instance which uses raft consensus to ensure strict linearizability
// across multiple nodes.
func NewDistributedStore(nh *dragonboat.NodeHost, shardID uint64, timeout time.Duration) store.IStore {
	return &storeImpl{
		nh:      nh,
		shardID: shardID,
		cs:      nh.GetNoOPSession(shardID),
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write serializes a Command and sends it via SyncPropose.
// It returns the state machine result on success or a *store.Error.
func (s *storeImpl) write(cmd internal.Command) (sm.Result, error) {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		res, err := s.nh.SyncPropose(ctx, s.cs, cmd.Serialize())
		cancel()

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(s.timeout / 10)
			continue
		}
		if err != nil {
			return sm.Result{}, store.NewError(store.RetCInternalError, err.Error())
		}
		if res.Value != uint64(store.RetCSuccess) {
			return sm.Result{}, store.NewError(store.RetCode(res.Value), string(res.Data))
		}
		return res, nil
	}
	return sm.Result{}, store.NewError(store.RetCInternalError, "timeout")
}

// read queries the state machine and converts the response into the expected type R.
//
// SyncRead is used by default. If linearizability is not required, stale can be set
// to use the faster StaleRead instead. System busy errors are retried.
func read[R any](r *storeImpl, q internal.Query, stale bool) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {
		var res interface{}
		var err error

		if stale {
			res, err = r.nh.StaleRead(r.shardID, q)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
			res, err = r.nh.SyncRead(ctx, r.shardID, q)
			cancel()
		}

		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(r.timeout / 10)
			continue
		}

		if err != nil {
			var se *store.Error
			if errors.As(err, &se) {
				return zero, se
			}
			return zero, store.NewError(store.RetCInternalError, err.Error())
		}

		casted, ok := res.(R)
		if !ok {
			return zero, store.NewError(store.RetCInternalError,
				fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
		}
		return casted, nil
	}
	return zero, store.NewError(store.RetCInternalError, "timeout")
}

// --------------------------------------------------------------------------
// Interface Methods (docs see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	_, err := s.write(internal.Command{
		Type:  internal.CommandTSet,
		Key:   key,
		Value: value,
	})
	return err
}

func (s *storeImpl) SetE(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := s.write(internal.Command{
		Type:     internal.CommandTSetE,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	})
	return err
}

func (s *storeImpl) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := s.write(internal.Command{
		Type:     internal.CommandTSetIfUnset,
		Key:      key,
		Value:    value,
		ExpireIn: expireIn,
		DeleteIn: deleteIn,
	})
	return err
}

func (s *storeImpl) Expire(key string) error {
	_, err := s.write(internal.Command{
		Type: internal.CommandTExpire,
		Key:  key,
	})
	return err
}

func (s *storeImpl) Delete(key string) error {
	_, err := s.write(internal.Command{
		Type: internal.CommandTDelete,
		Key:  key,
	})
	return err
}

func (s *storeImpl) DeleteRange(start, end string) (uint64, error) {
	res, err := s.write(internal.Command{
		Type: internal.CommandTDeleteRange,
		Key:  start,
		End:  end,
	})
	if err != nil {
		return 0, err
	}
	if len(res.Data) != 8 {
		return 0, store.NewError(store.RetCInternalError,
			fmt.Sprintf("unexpected DeleteRange result of %d bytes", len(res.Data)))
	}
	return binary.BigEndian.Uint64(res.Data), nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	res, err := read[internal.QueryResult](s, internal.Query{
		Type: internal.QueryTGet,
		Key:  key,
	}, false)
	if err != nil {
		return nil, false, err
	}
	return res.Value, res.Ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	return read[bool](s, internal.Query{
		Type: internal.QueryTHas,
		Key:  key,
	}, false)
}

func (s *storeImpl) Range(start, end string, limit int, reverse bool) ([]db.KVPair, error) {
	return read[[]db.KVPair](s, internal.Query{
		Type:    internal.QueryTRange,
		Key:     start,
		End:     end,
		Limit:   limit,
		Reverse: reverse,
	}, false)
}

func (s *storeImpl) Count(start, end string) (uint64, error) {
	return read[uint64](s, internal.Query{
		Type: internal.QueryTCount,
		Key:  start,
		End:  end,
	}, false)
}

func (s *storeImpl) Seek(key string) (db.KVPair, bool, error) {
	res, err := read[internal.QueryResult](s, internal.Query{
		Type: internal.QueryTSeek,
		Key:  key,
	}, false)
	if err != nil {
		return db.KVPair{}, false, err
	}
	return db.KVPair{Key: res.Key, Value: res.Value}, res.Ok, nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return read[db.DatabaseInfo](
		s,
		internal.Query{
			Type: internal.QueryTGetDBInfo,
		},
		true, // Note: allow for stale reads
	)
}
