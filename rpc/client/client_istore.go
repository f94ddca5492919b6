package client

import (
	"github.com/ValentinKolb/rbKV/lib/db"
	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/ValentinKolb/rbKV/rpc/serializer"
	"github.com/ValentinKolb/rbKV/rpc/transport"
)

// NewRPCStore connects the transport and returns a store.IStore that sends every
// operation to the given shard of an rbKV server
func NewRPCStore(
	shardId uint64,
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (store.IStore, error) {
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		rpcClientAdapter{
			shardId:    shardId,
			config:     config,
			transport:  transport,
			serializer: serializer,
		},
	}, nil
}

type rpcStore struct {
	rpcClientAdapter
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the store package in interface.go)
// --------------------------------------------------------------------------

func (i *rpcStore) Set(key string, value []byte) error {
	_, err := i.invoke(common.NewSetRequest(key, value))
	return err
}

func (i *rpcStore) SetE(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := i.invoke(common.NewSetERequest(key, value, expireIn, deleteIn))
	return err
}

func (i *rpcStore) SetEIfUnset(key string, value []byte, expireIn, deleteIn uint64) error {
	_, err := i.invoke(common.NewSetEIfUnsetRequest(key, value, expireIn, deleteIn))
	return err
}

func (i *rpcStore) Expire(key string) error {
	_, err := i.invoke(common.NewExpireRequest(key))
	return err
}

func (i *rpcStore) Delete(key string) error {
	_, err := i.invoke(common.NewDeleteRequest(key))
	return err
}

func (i *rpcStore) DeleteRange(start, end string) (uint64, error) {
	resp, err := i.invoke(common.NewDeleteRangeRequest(start, end))
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (i *rpcStore) Get(key string) ([]byte, bool, error) {
	resp, err := i.invoke(common.NewGetRequest(key))
	if err != nil {
		return nil, false, err
	}
	return resp.Value, resp.Ok, nil
}

func (i *rpcStore) Has(key string) (bool, error) {
	resp, err := i.invoke(common.NewHasRequest(key))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (i *rpcStore) Range(start, end string, limit int, reverse bool) ([]db.KVPair, error) {
	resp, err := i.invoke(common.NewRangeRequest(start, end, limit, reverse))
	if err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (i *rpcStore) Count(start, end string) (uint64, error) {
	resp, err := i.invoke(common.NewCountRequest(start, end))
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (i *rpcStore) Seek(key string) (db.KVPair, bool, error) {
	resp, err := i.invoke(common.NewSeekRequest(key))
	if err != nil {
		return db.KVPair{}, false, err
	}
	if !resp.Ok {
		return db.KVPair{}, false, nil
	}
	return db.KVPair{Key: resp.Key, Value: resp.Value}, true, nil
}

// GetDBInfo is not available over rpc, the metadata of the engine is not serializable
func (i *rpcStore) GetDBInfo() (db.DatabaseInfo, error) {
	return db.DatabaseInfo{}, store.NewError(store.RetCUnsupportedOperation,
		"the GetDBInfo() method is not implemented in the rpc client adapter")
}
