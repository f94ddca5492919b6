package client

import (
	"github.com/ValentinKolb/rbKV/rpc/common"
	"github.com/ValentinKolb/rbKV/rpc/serializer"
	"github.com/ValentinKolb/rbKV/rpc/transport"
	"github.com/cockroachdb/errors"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter stores everything an RPC client needs to reach one shard
type rpcClientAdapter struct {
	shardId    uint64
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invoke sends req to the shard and returns the response.
// Error responses and responses of an unexpected type are returned as errors.
func (a *rpcClientAdapter) invoke(req *common.Message) (*common.Message, error) {
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, errors.Wrapf(err, "serialize %s request", req.MsgType)
	}

	respBytes, err := a.transport.Send(a.shardId, reqBytes)
	if err != nil {
		return nil, errors.Wrapf(err, "send %s request to shard %d", req.MsgType, a.shardId)
	}

	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, errors.Wrapf(err, "deserialize %s response", req.MsgType)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, errors.Newf("RPC %s - Error: %s", req.MsgType, resp.Err)
	}
	if resp.MsgType != req.MsgType {
		return nil, errors.Newf("RPC %s - Unexpected message type: %s", req.MsgType, resp.MsgType)
	}
	return resp, nil
}
