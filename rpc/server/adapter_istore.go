package server

import (
	"fmt"

	"github.com/ValentinKolb/rbKV/lib/store"
	"github.com/ValentinKolb/rbKV/rpc/common"
)

func NewIStoreServerAdapter() IRPCServerAdapter {
	return &iStoreServerAdapterImpl{}
}

// iStoreServerAdapterImpl maps every IStore message type to the matching store.IStore call
type iStoreServerAdapterImpl struct{}

func (adapter *iStoreServerAdapterImpl) Handle(req *common.Message, s store.IStore) *common.Message {
	if s == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	switch req.MsgType {
	case common.MsgTKVSet:
		return common.NewSetResponse(s.Set(req.Key, req.Value))
	case common.MsgTKVSetE:
		return common.NewSetEResponse(s.SetE(req.Key, req.Value, req.ExpireIn, req.DeleteIn))
	case common.MsgTKVSetEIfUnset:
		return common.NewSetEIfUnsetResponse(s.SetEIfUnset(req.Key, req.Value, req.ExpireIn, req.DeleteIn))
	case common.MsgTKVExpire:
		return common.NewExpireResponse(s.Expire(req.Key))
	case common.MsgTKVDelete:
		return common.NewDeleteResponse(s.Delete(req.Key))
	case common.MsgTKVDeleteRange:
		removed, err := s.DeleteRange(req.Key, req.End)
		return common.NewDeleteRangeResponse(removed, err)
	case common.MsgTKVGet:
		val, ok, err := s.Get(req.Key)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTKVHas:
		ok, err := s.Has(req.Key)
		return common.NewHasResponse(ok, err)
	case common.MsgTKVRange:
		entries, err := s.Range(req.Key, req.End, req.Limit, req.Reverse)
		return common.NewRangeResponse(entries, err)
	case common.MsgTKVCount:
		count, err := s.Count(req.Key, req.End)
		return common.NewCountResponse(count, err)
	case common.MsgTKVSeek:
		entry, ok, err := s.Seek(req.Key)
		return common.NewSeekResponse(entry, ok, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC IStoreAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
