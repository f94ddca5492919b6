package lstore

import (
	"sync/atomic"

	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/store"
)

type storeImpl struct {
	db    db.KVDB
	index atomic.Uint64
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// This works by using the database created by the factory directly (usually oak).
func NewLocalStore(factory store.DBFactory) store.IStore {
	return &storeImpl{db: factory()}
}

// nextIndex increments the index and returns the new value.
// Every write gets its own index, so the database never sees a stale write.
func (s *storeImpl) nextIndex() uint64 {
	return s.index.Add(1)
}

// supports returns a RetCUnsupportedOperation error if the database lacks f
func (s *storeImpl) supports(f db.Feature) error {
	if s.db.SupportsFeature(f) {
		return nil
	}
	return store.NewError(store.RetCUnsupportedOperation, f.String()+" operation is not supported")
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value []byte) error {
	if err := s.supports(db.FeatureSet); err != nil {
		return err
	}
	s.db.Set(key, value, s.nextIndex())
	return nil
}

func (s *storeImpl) SetE(key string, value []byte, expireIn, deleteIn uint64) error {
	if err := s.supports(db.FeatureSetE); err != nil {
		return err
	}
	s.db.SetE(key, value, s.nextIndex(), expireIn, deleteIn)
	return nil
}

func (s *storeImpl) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) error {
	if err := s.supports(db.FeatureSetEIfUnset); err != nil {
		return err
	}
	s.db.SetEIfUnset(key, value, s.nextIndex(), expireIn, deleteIn)
	return nil
}

func (s *storeImpl) Expire(key string) error {
	if err := s.supports(db.FeatureExpire); err != nil {
		return err
	}
	s.db.Expire(key, s.nextIndex())
	return nil
}

func (s *storeImpl) Delete(key string) error {
	if err := s.supports(db.FeatureDelete); err != nil {
		return err
	}
	s.db.Delete(key, s.nextIndex())
	return nil
}

func (s *storeImpl) DeleteRange(start, end string) (uint64, error) {
	if err := s.supports(db.FeatureDeleteRange); err != nil {
		return 0, err
	}
	return s.db.DeleteRange(start, end, s.nextIndex()), nil
}

func (s *storeImpl) Get(key string) ([]byte, bool, error) {
	if err := s.supports(db.FeatureGet); err != nil {
		return nil, false, err
	}
	val, ok := s.db.Get(key)
	return val, ok, nil
}

func (s *storeImpl) Has(key string) (bool, error) {
	if err := s.supports(db.FeatureHas); err != nil {
		return false, err
	}
	return s.db.Has(key), nil
}

func (s *storeImpl) Range(start, end string, limit int, reverse bool) ([]db.KVPair, error) {
	if err := s.supports(db.FeatureRange); err != nil {
		return nil, err
	}
	return s.db.Range(start, end, limit, reverse), nil
}

func (s *storeImpl) Count(start, end string) (uint64, error) {
	if err := s.supports(db.FeatureCount); err != nil {
		return 0, err
	}
	return s.db.Count(start, end), nil
}

func (s *storeImpl) Seek(key string) (db.KVPair, bool, error) {
	if err := s.supports(db.FeatureSeek); err != nil {
		return db.KVPair{}, false, err
	}
	entry, ok := s.db.Seek(key)
	return entry, ok, nil
}

func (s *storeImpl) GetDBInfo() (db.DatabaseInfo, error) {
	return s.db.GetInfo(), nil
}
